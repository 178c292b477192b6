package resolve

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog []string

func (c fakeCatalog) Names() []string { return c }
func (c fakeCatalog) Has(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

var testNames = fakeCatalog{"Jita", "Taisy", "Tama", "Ostingele", "J0VE-A", "Amarr", "Amamake", "New Caldari", "UEJX-G"}

func TestFlatten(t *testing.T) {
	tests := map[string]string{
		"J0VE":      "jove",
		"jove":      "jove",
		"JITA":      "jita",
		"0stingele": "ostingele",
		"UEJX-G":    "uejx-g",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Flatten(in), in)
		assert.Equal(t, Flatten(in), Flatten(Flatten(in)), "idempotent for %q", in)
	}
	assert.Equal(t, Flatten("J1ta"), Flatten("j1ta"))
}

func TestResolve_Triage(t *testing.T) {
	r := New(testNames, nil)

	tests := []struct {
		token      string
		status     Status
		canonical  string
		candidates []string
		warnings   []WarningKind
	}{
		{"Jita", Exact, "Jita", nil, nil},
		{"jita", Corrected, "Jita", nil, nil},
		{"JITA", Corrected, "Jita", nil, nil},
		{"0stingele", Corrected, "Ostingele", nil, []WarningKind{WarnMixup}},
		{"jove-a", Corrected, "J0VE-A", nil, []WarningKind{WarnMixup}},
		{"ost", Guessed, "Ostingele", nil, nil},
		{"0st", Guessed, "Ostingele", nil, []WarningKind{WarnMixup}},
		{"uej", Guessed, "UEJX-G", nil, nil},
		{"new cal", Guessed, "New Caldari", nil, nil},
		{"ta", Ambiguous, "", []string{"Taisy", "Tama"}, []WarningKind{WarnAmbiguousSystem}},
		{"am", Ambiguous, "", []string{"Amarr", "Amamake"}, []WarningKind{WarnAmbiguousSystem}},
		{"J1ta", Unknown, "", nil, []WarningKind{WarnUnknownSystem}},
		{"x", Unknown, "", nil, []WarningKind{WarnUnknownSystem}},
		{"Zzz", Unknown, "", nil, []WarningKind{WarnUnknownSystem}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			res := r.Resolve(tt.token)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.canonical, res.Canonical)
			assert.Equal(t, tt.canonical != "", res.OK())
			assert.Equal(t, tt.candidates, res.Candidates)
			var kinds []WarningKind
			for _, w := range res.Warnings {
				kinds = append(kinds, w.Kind)
			}
			assert.Equal(t, tt.warnings, kinds)
		})
	}
}

func TestResolve_MixupWarningCarriesMergedToken(t *testing.T) {
	r := New(testNames, nil)
	res := r.Resolve("0st")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "0stingele", res.Warnings[0].Token)
	assert.Equal(t, "Ostingele", res.Warnings[0].Canonical)
}

func TestCandidates(t *testing.T) {
	r := New(testNames, nil)
	assert.Nil(t, r.Candidates("t"), "single characters never fuzzy match")
	assert.Equal(t, []string{"Taisy", "Tama"}, r.Candidates("TA"))
	assert.Equal(t, []string{"J0VE-A"}, r.Candidates("jo"))
	assert.Empty(t, r.Candidates("qq"))

	// cached copies must not leak mutations
	got := r.Candidates("ta")
	got[0] = "mutated"
	assert.Equal(t, []string{"Taisy", "Tama"}, r.Candidates("ta"))
}

func TestCanonical_MemoizesNegativeResults(t *testing.T) {
	r := New(testNames, nil)
	_, ok := r.Canonical("nope")
	assert.False(t, ok)
	_, ok = r.Canonical("nope")
	assert.False(t, ok)
	assert.False(t, r.Valid("nope"))
	assert.True(t, r.Valid("jita"))

	st := r.Cache().Stats()
	assert.Equal(t, 2, st.Canonical)
	assert.Equal(t, 2, st.Valid)
}

func TestNew_FlattenCollisionFirstWins(t *testing.T) {
	r := New(fakeCatalog{"O1", "01"}, nil)
	assert.Equal(t, 1, r.Collisions())
	name, ok := r.Canonical("o1")
	require.True(t, ok)
	assert.Equal(t, "O1", name)
	name, ok = r.Canonical("01")
	require.True(t, ok)
	assert.Equal(t, "01", name, "exact match beats the flattened index")
}

func TestMixup(t *testing.T) {
	assert.False(t, Mixup("jita", "Jita"))
	assert.True(t, Mixup("0stingele", "Ostingele"))
}

func TestComplete(t *testing.T) {
	r := New(testNames, nil)
	assert.Equal(t, []string{"Amarr", "Amamake", "Tama"}, r.Complete("am", 10))
	assert.Equal(t, []string{"Amarr"}, r.Complete("am", 1))
	assert.Equal(t, []string{}, r.Complete("", 10))
	assert.Equal(t, []string{}, r.Complete("qqq", 10))
}

func TestDedupWarnings(t *testing.T) {
	ws := []Warning{
		{Kind: WarnUnknownSystem, Token: "a"},
		{Kind: WarnAmbiguousSystem, Token: "ta", Candidates: []string{"Taisy", "Tama"}},
		{Kind: WarnUnknownSystem, Token: "a"},
		{Kind: WarnUnknownSystem, Token: "b"},
	}
	got := DedupWarnings(ws)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Token)
	assert.Equal(t, "ta", got[1].Token)
	assert.Equal(t, "b", got[2].Token)
	assert.Equal(t, []string{"ambiguous_system", "unknown_system"}, SortedKinds(ws))
}

func TestResolver_ConcurrentUse(t *testing.T) {
	r := New(testNames, nil)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, tok := range []string{"jita", "ta", "0st", "nope"} {
				r.Resolve(tok)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, "Jita", r.Resolve("jita").Canonical)
	assert.Equal(t, Ambiguous, r.Resolve("ta").Status)
}
