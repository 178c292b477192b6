package sde

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"jumpbot/internal/graph"
	"jumpbot/internal/logger"
)

// Files of the CSV data directory.
const (
	StarsFile       = "stars.csv"
	TruesecFile     = "truesec.csv"
	TradeHubsFile   = "itcs.csv"
	NPCStationsFile = "npc_stations.json"
	SystemIDsFile   = "mapSolarSystems.csv"
)

// ErrMissingTruesec is returned when a star has no entry in truesec.csv.
var ErrMissingTruesec = errors.New("star has no true-security entry")

type starRow struct {
	name, region, constellation string
	neighbors                   []string
}

// LoadCSV reads the data directory. stars.csv and truesec.csv are required;
// trade hubs and station counts are optional and only produce warnings when
// absent. The files are parsed concurrently.
func LoadCSV(dir string) (*Data, error) {
	var (
		stars    []starRow
		truesec  map[string]string
		hubs     []graph.TradeHub
		stations map[string]int
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		stars, err = readStars(filepath.Join(dir, StarsFile))
		return err
	})
	g.Go(func() (err error) {
		truesec, err = readTruesec(filepath.Join(dir, TruesecFile))
		return err
	})
	g.Go(func() (err error) {
		hubs, err = readTradeHubs(filepath.Join(dir, TradeHubsFile))
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Data", fmt.Sprintf("%s not found, trade hub search disabled", TradeHubsFile))
			return nil
		}
		return err
	})
	g.Go(func() (err error) {
		stations, err = readStationCounts(filepath.Join(dir, NPCStationsFile), filepath.Join(dir, SystemIDsFile))
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Data", fmt.Sprintf("%s or %s not found, station search disabled", NPCStationsFile, SystemIDsFile))
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &Data{Source: SourceCSV, TradeHubs: hubs, Systems: make([]graph.System, 0, len(stars))}
	for _, s := range stars {
		sec, ok := truesec[s.name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", s.name, ErrMissingTruesec)
		}
		data.Systems = append(data.Systems, graph.System{
			Name:          s.name,
			Region:        s.region,
			Constellation: s.constellation,
			TrueSec:       sec,
			Neighbors:     s.neighbors,
		})
	}
	data.Stations = filterStations(data.Systems, stations)
	return data, nil
}

// readRows opens a CSV file and returns its records without the header row.
func readRows(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%s header: %w", filepath.Base(path), err)
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if len(rec) < fields {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", filepath.Base(path), line, fields, len(rec))
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readStars(path string) ([]starRow, error) {
	rows, err := readRows(path, 5)
	if err != nil {
		return nil, err
	}
	out := make([]starRow, 0, len(rows))
	for _, rec := range rows {
		neighbors, err := parseNameList(rec[4])
		if err != nil {
			return nil, fmt.Errorf("%s neighbors of %s: %w", StarsFile, rec[0], err)
		}
		out = append(out, starRow{name: rec[0], region: rec[1], constellation: rec[2], neighbors: neighbors})
	}
	return out, nil
}

func readTruesec(path string) (map[string]string, error) {
	rows, err := readRows(path, 2)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, rec := range rows {
		out[rec[0]] = strings.TrimSpace(rec[1])
	}
	return out, nil
}

func readTradeHubs(path string) ([]graph.TradeHub, error) {
	rows, err := readRows(path, 4)
	if err != nil {
		return nil, err
	}
	out := make([]graph.TradeHub, 0, len(rows))
	for _, rec := range rows {
		out = append(out, graph.TradeHub{System: rec[0], Planet: rec[1], Moon: rec[2], Station: rec[3]})
	}
	return out, nil
}

// readStationCounts joins the NPC station dump (station id -> system id) with
// the system id table and counts stations per system name.
func readStationCounts(stationsPath, idsPath string) (map[string]int, error) {
	raw, err := os.ReadFile(stationsPath)
	if err != nil {
		return nil, err
	}
	var dump map[string]struct {
		SolarSystemID json.Number `json:"solar_system_id"`
	}
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("%s: %w", NPCStationsFile, err)
	}

	f, err := os.Open(idsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s header: %w", SystemIDsFile, err)
	}
	idCol, nameCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "solarSystemID":
			idCol = i
		case "solarSystemName":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("%s: missing solarSystemID or solarSystemName column", SystemIDsFile)
	}
	names := make(map[string]string)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", SystemIDsFile, err)
		}
		if idCol < len(rec) && nameCol < len(rec) {
			names[rec[idCol]] = rec[nameCol]
		}
	}

	counts := make(map[string]int)
	unknown := 0
	for _, st := range dump {
		name, ok := names[st.SolarSystemID.String()]
		if !ok {
			unknown++
			continue
		}
		counts[name]++
	}
	if unknown > 0 {
		logger.Warn("Data", fmt.Sprintf("%d stations reference unknown system ids", unknown))
	}
	return counts, nil
}

// parseNameList parses a list literal such as ['Jita', "Ashab's Gate"]. The
// literal is read as a YAML flow sequence of quoted names; backslash-escaped
// single quotes (['It\'s']) are not YAML and go through scanNameList.
func parseNameList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a list literal: %q", s)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err == nil && len(doc.Content) == 1 {
		if out, ok := quotedScalars(doc.Content[0]); ok {
			return out, nil
		}
	}
	return scanNameList(s)
}

// quotedScalars returns the items of a sequence node whose items are all
// quoted strings.
func quotedScalars(n *yaml.Node) ([]string, bool) {
	if n.Kind != yaml.SequenceNode {
		return nil, false
	}
	var out []string
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode || item.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) == 0 {
			return nil, false
		}
		out = append(out, item.Value)
	}
	return out, true
}

// scanNameList reads a bracketed list of quoted names, honouring backslash
// escapes in both quote styles.
func scanNameList(s string) ([]string, error) {
	body := s[1 : len(s)-1]
	var out []string
	i := 0
	for {
		for i < len(body) && (body[i] == ' ' || body[i] == ',') {
			i++
		}
		if i >= len(body) {
			return out, nil
		}
		quote := body[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("expected quoted name at offset %d in %q", i, s)
		}
		i++
		var b strings.Builder
		closed := false
		for i < len(body) {
			c := body[i]
			i++
			if c == '\\' && i < len(body) {
				b.WriteByte(body[i])
				i++
				continue
			}
			if c == quote {
				closed = true
				break
			}
			b.WriteByte(c)
		}
		if !closed {
			return nil, fmt.Errorf("unterminated name in %q", s)
		}
		out = append(out, b.String())
	}
}
