package sde

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"jumpbot/internal/graph"
	"jumpbot/internal/logger"
)

const sdeURL = "https://developers.eveonline.com/static-data/eve-online-static-data-latest-jsonl.zip"

type sdeSystem struct {
	id              int32
	name            string
	regionID        int32
	constellationID int32
	truesec         string
}

type gate struct{ from, to int32 }

// LoadSDE downloads (if needed) and parses CCP's static data export into
// dataDir/sde. Trade hubs come from itcs.csv in dataDir when present, since
// the export does not mark them.
func LoadSDE(dataDir string) (*Data, error) {
	zipPath := filepath.Join(dataDir, "sde.zip")
	extractDir := filepath.Join(dataDir, "sde")

	if _, err := os.Stat(extractDir); os.IsNotExist(err) {
		logger.Info("SDE", "Downloading data...")
		if err := downloadFile(zipPath, sdeURL); err != nil {
			return nil, fmt.Errorf("download SDE: %w", err)
		}
		logger.Info("SDE", "Extracting data...")
		if err := extractZip(zipPath, extractDir); err != nil {
			return nil, fmt.Errorf("extract SDE: %w", err)
		}
	}

	var (
		regions        map[int32]string
		constellations map[int32]string
		systems        []sdeSystem
		gates          []gate
		stationsBySys  map[int32]int
		hubs           []graph.TradeHub
	)

	logger.Info("SDE", "Loading map data...")
	var g errgroup.Group
	g.Go(func() (err error) {
		regions, err = loadNames(extractDir, "mapRegions")
		return err
	})
	g.Go(func() (err error) {
		constellations, err = loadNames(extractDir, "mapConstellations")
		return err
	})
	g.Go(func() (err error) {
		systems, err = loadSystems(extractDir)
		return err
	})
	g.Go(func() (err error) {
		gates, err = loadStargates(extractDir)
		return err
	})
	g.Go(func() (err error) {
		stationsBySys, err = loadStations(extractDir)
		return err
	})
	g.Go(func() (err error) {
		hubs, err = readTradeHubs(filepath.Join(dataDir, TradeHubsFile))
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("SDE", fmt.Sprintf("%s not found, trade hub search disabled", TradeHubsFile))
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(systems, regions, constellations, gates, stationsBySys, hubs), nil
}

// assemble joins the id-keyed export tables into a name-keyed catalog.
// Gates are added in both directions so a half-present pair still links.
func assemble(systems []sdeSystem, regions, constellations map[int32]string, gates []gate, stationsBySys map[int32]int, hubs []graph.TradeHub) *Data {
	names := make(map[int32]string, len(systems))
	for _, s := range systems {
		names[s.id] = s.name
	}
	adj := make(map[int32][]int32, len(systems))
	seen := make(map[gate]bool, len(gates)*2)
	addArc := func(a, b int32) {
		if seen[gate{a, b}] {
			return
		}
		seen[gate{a, b}] = true
		adj[a] = append(adj[a], b)
	}
	for _, gt := range gates {
		if _, ok := names[gt.from]; !ok {
			continue
		}
		if _, ok := names[gt.to]; !ok {
			continue
		}
		addArc(gt.from, gt.to)
		addArc(gt.to, gt.from)
	}

	data := &Data{
		Source:    SourceSDE,
		Systems:   make([]graph.System, 0, len(systems)),
		TradeHubs: hubs,
		Stations:  make(map[string]int),
	}
	for _, s := range systems {
		neighbors := make([]string, 0, len(adj[s.id]))
		for _, id := range adj[s.id] {
			neighbors = append(neighbors, names[id])
		}
		data.Systems = append(data.Systems, graph.System{
			Name:          s.name,
			Region:        regions[s.regionID],
			Constellation: constellations[s.constellationID],
			TrueSec:       s.truesec,
			Neighbors:     neighbors,
		})
	}
	for id, n := range stationsBySys {
		if name, ok := names[id]; ok {
			data.Stations[name] += n
		}
	}
	data.Stations = filterStations(data.Systems, data.Stations)
	return data
}

func loadNames(dir, baseName string) (map[int32]string, error) {
	out := make(map[int32]string)
	err := readJSONL(dir, baseName, func(raw json.RawMessage) error {
		var r struct {
			Key  int32             `json:"_key"`
			Name map[string]string `json:"name"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		if name := r.Name["en"]; name != "" {
			out[r.Key] = name
		}
		return nil
	})
	return out, err
}

func loadSystems(dir string) ([]sdeSystem, error) {
	var out []sdeSystem
	err := readJSONL(dir, "mapSolarSystems", func(raw json.RawMessage) error {
		var s struct {
			Key             int32             `json:"_key"`
			Name            map[string]string `json:"name"`
			RegionID        int32             `json:"regionID"`
			ConstellationID int32             `json:"constellationID"`
			SecurityStatus  json.Number       `json:"securityStatus"`
			Security        json.Number       `json:"security"` // older export field name
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		name := s.Name["en"]
		if name == "" {
			return nil
		}
		sec := s.SecurityStatus
		if sec == "" {
			sec = s.Security
		}
		if sec == "" {
			return fmt.Errorf("system %s has no security", name)
		}
		out = append(out, sdeSystem{
			id: s.Key, name: name, regionID: s.RegionID, constellationID: s.ConstellationID,
			truesec: securityText(sec),
		})
		return nil
	})
	return out, err
}

// securityText keeps the exported decimal text so truncation sees the real
// digits. Exponent forms such as 4.5e-05 are expanded to plain decimals.
func securityText(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, "eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func loadStations(dir string) (map[int32]int, error) {
	out := make(map[int32]int)
	err := readJSONL(dir, "npcStations", func(raw json.RawMessage) error {
		var s struct {
			SolarSystemID int32 `json:"solarSystemID"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s.SolarSystemID != 0 {
			out[s.SolarSystemID]++
		}
		return nil
	})
	return out, err
}

func loadStargates(dir string) ([]gate, error) {
	var out []gate
	err := readJSONL(dir, "mapStargates", func(raw json.RawMessage) error {
		var g struct {
			SolarSystemID int32 `json:"solarSystemID"`
			Destination   struct {
				SolarSystemID int32 `json:"solarSystemID"`
			} `json:"destination"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		if g.SolarSystemID != 0 && g.Destination.SolarSystemID != 0 {
			out = append(out, gate{g.SolarSystemID, g.Destination.SolarSystemID})
		}
		return nil
	})
	return out, err
}

// readJSONL finds and reads a .jsonl file by base name from the extracted SDE directory.
func readJSONL(dir, baseName string, fn func(json.RawMessage) error) error {
	// Search for the file recursively
	var filePath string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(info.Name(), ".jsonl")
		if strings.EqualFold(name, baseName) {
			filePath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return err
	}
	if filePath == "" {
		logger.Warn("SDE", fmt.Sprintf("File %s.jsonl not found, skipping", baseName))
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(json.RawMessage(line)); err != nil {
			skipped++
			continue // skip malformed lines
		}
	}
	if skipped > 0 {
		logger.Debug("SDE", fmt.Sprintf("%s: skipped %d malformed lines", baseName, skipped))
	}
	return scanner.Err()
}

func downloadFile(dst, url string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	// Resolve destination to an absolute path for zip slip prevention
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve extract dir: %w", err)
	}

	for _, f := range r.File {
		fpath := filepath.Join(dstAbs, f.Name)

		// Zip slip guard: ensure the resolved path stays within dst
		if rel, err := filepath.Rel(dstAbs, fpath); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("illegal zip entry path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, 0755)
			continue
		}
		os.MkdirAll(filepath.Dir(fpath), 0755)
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(fpath)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
