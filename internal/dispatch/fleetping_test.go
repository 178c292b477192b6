package dispatch

import (
	"testing"
)

func targets(t *testing.T, d *Dispatcher, text string) []string {
	t.Helper()
	var out []string
	for _, r := range d.FleetPing(text) {
		if r.Target == nil {
			t.Fatalf("result without a target: %+v", r)
		}
		out = append(out, r.Target.Name)
	}
	return out
}

func TestFleetPing(t *testing.T) {
	d := testDispatcher(t, Options{FuzzyDenylist: []string{"then"}})

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"exact nullsec names", "Form up in PR-8CA, moving to 9-vo0q after", []string{"PR-8CA", "9-VO0Q"}},
		{"popular and hisec ignored", "Jita undock, Tama gate, Amarr", nil},
		{"far prefix match", "CTA\nstaging T5ZI then PR-8CA", []string{"T5ZI-S", "PR-8CA"}},
		{"repeats reported once", "PR-8CA PR-8CA pr-8ca!", []string{"PR-8CA"}},
		{"oh mixup", "bridge to JOVE-A", []string{"J0VE-A"}},
		{"short words skipped", "T5Z is not a system", nil},
		{"near prefix match silences the ping", "PR-8CA now, 1DQ1 later", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := targets(t, d, tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("FleetPing(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FleetPing(%q)[%d] = %s, want %s", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFleetPing_Denylist(t *testing.T) {
	d := testDispatcher(t, Options{FuzzyDenylist: []string{"T5ZI"}})
	if got := targets(t, d, "staging T5ZI"); len(got) != 0 {
		t.Errorf("deny-listed word matched %v", got)
	}
	if got := targets(t, d, "staging T5ZI-S"); len(got) != 1 {
		t.Errorf("exact names bypass the deny-list, got %v", got)
	}
}

func TestFleetPing_Distances(t *testing.T) {
	d := testDispatcher(t, Options{})
	res := d.FleetPing("PR-8CA")
	if len(res) != 1 {
		t.Fatalf("results = %d, want 1", len(res))
	}
	for _, r := range res[0].Routes {
		if r.Route == nil || r.Route.Jumps != 6 {
			t.Errorf("%s -> PR-8CA = %+v, want 6 jumps", r.From.Name, r.Route)
		}
	}
}

func TestNearPopular(t *testing.T) {
	near := testDispatcher(t, Options{}).nearPopular()
	want := map[string]int{"Jita": 0, "Ostingele": 1, "1DQ1-A": 3, "9-VO0Q": 4}
	for name, j := range want {
		if got, ok := near[name]; !ok || got != j {
			t.Errorf("near[%s] = %d, %v, want %d", name, got, ok, j)
		}
	}
	if _, ok := near["T5ZI-S"]; ok {
		t.Error("T5ZI-S is 5 jumps out and should not count as near")
	}

	// A tighter radius lets the same prefix through.
	if got := targets(t, testDispatcher(t, Options{}), "form up 9-VO0"); len(got) != 0 {
		t.Errorf("prefix 4 jumps from Jita reported %v", got)
	}
	if got := targets(t, testDispatcher(t, Options{FleetPingMinJumps: 2}), "form up 9-VO0"); len(got) != 1 || got[0] != "9-VO0Q" {
		t.Errorf("with a 2 jump radius got %v, want [9-VO0Q]", got)
	}
}
