package sde

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

const (
	testStars = `solarSystemName,regionName,constellationName,security,edges
Jita,The Forge,Kimotoro,0.9,"['Perimeter', 'Niyabainen']"
Perimeter,The Forge,Kimotoro,1.0,['Jita']
Niyabainen,The Forge,Kimotoro,1.0,"[""Jita""]"
`
	testTruesec = `name,truesec
Jita,0.94592
Perimeter,0.95000
Niyabainen, 0.96000
`
	testHubs = `name,planet,moon,station
Jita,IV,4,Caldari Navy Assembly Plant
`
	testStations = `{
  "60003760": {"solar_system_id": 30000142},
  "60000001": {"solar_system_id": 30000142},
  "60000002": {"solar_system_id": "30000144"},
  "60000003": {"solar_system_id": 31000005},
  "60000004": {"solar_system_id": 99}
}`
	testSystemIDs = `regionID,constellationID,solarSystemID,solarSystemName
10000002,20000020,30000142,Jita
10000002,20000020,30000144,Perimeter
11000031,21000324,31000005,Thera
`
)

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		StarsFile:       testStars,
		TruesecFile:     testTruesec,
		TradeHubsFile:   testHubs,
		NPCStationsFile: testStations,
		SystemIDsFile:   testSystemIDs,
	})

	data, err := LoadCSV(dir)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if data.Source != SourceCSV {
		t.Errorf("Source = %q", data.Source)
	}
	if len(data.Systems) != 3 {
		t.Fatalf("systems = %d, want 3", len(data.Systems))
	}
	jita := data.Systems[0]
	if jita.Name != "Jita" || jita.Region != "The Forge" || jita.Constellation != "Kimotoro" || jita.TrueSec != "0.94592" {
		t.Errorf("Jita = %+v", jita)
	}
	if !reflect.DeepEqual(jita.Neighbors, []string{"Perimeter", "Niyabainen"}) {
		t.Errorf("Jita neighbors = %v", jita.Neighbors)
	}
	if data.Systems[2].TrueSec != "0.96000" {
		t.Errorf("truesec not trimmed: %q", data.Systems[2].TrueSec)
	}
	if len(data.TradeHubs) != 1 || data.TradeHubs[0].Station != "Caldari Navy Assembly Plant" {
		t.Errorf("TradeHubs = %+v", data.TradeHubs)
	}
	// Thera is not in stars.csv and id 99 is unknown.
	if want := map[string]int{"Jita": 2, "Perimeter": 1}; !reflect.DeepEqual(data.Stations, want) {
		t.Errorf("Stations = %v, want %v", data.Stations, want)
	}

	u, err := data.Universe()
	if err != nil {
		t.Fatalf("Universe: %v", err)
	}
	if u.Len() != 3 || u.GateCount() != 2 {
		t.Errorf("universe has %d systems and %d gates", u.Len(), u.GateCount())
	}
}

func TestLoadCSV_OptionalFilesMissing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{StarsFile: testStars, TruesecFile: testTruesec})

	data, err := LoadCSV(dir)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(data.TradeHubs) != 0 || len(data.Stations) != 0 {
		t.Errorf("expected no points of interest, got %v / %v", data.TradeHubs, data.Stations)
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{"no stars", map[string]string{TruesecFile: testTruesec}, os.ErrNotExist},
		{"no truesec", map[string]string{StarsFile: testStars}, os.ErrNotExist},
		{"star without truesec", map[string]string{
			StarsFile:   testStars,
			TruesecFile: "name,truesec\nJita,0.94592\n",
		}, ErrMissingTruesec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			_, err := LoadCSV(dir)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadCSV_BadNeighborList(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		StarsFile:   "h1,h2,h3,h4,h5\nJita,The Forge,Kimotoro,0.9,Perimeter\n",
		TruesecFile: testTruesec,
	})
	if _, err := LoadCSV(dir); err == nil {
		t.Fatal("expected error for a neighbor column that is not a list")
	}
}

func TestParseNameList(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "[]", want: nil},
		{in: "['Jita']", want: []string{"Jita"}},
		{in: "['Jita', 'Perimeter']", want: []string{"Jita", "Perimeter"}},
		{in: ` ["Ashab's Gate", 'J0VE-A'] `, want: []string{"Ashab's Gate", "J0VE-A"}},
		{in: `['It\'s']`, want: []string{"It's"}},
		{in: `['Jita', "Perimeter"]`, want: []string{"Jita", "Perimeter"}},
		{in: `["Say \"hi\"", 'New Caldari']`, want: []string{`Say "hi"`, "New Caldari"}},
		{in: "['Jita', Perimeter]", wantErr: true},
		{in: "Jita", wantErr: true},
		{in: "[Jita]", wantErr: true},
		{in: "['Jita", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNameList(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNameList(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNameList(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
