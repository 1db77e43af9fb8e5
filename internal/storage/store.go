package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/scan"
)

const (
	KindRun  = "run"
	KindScan = "scan"

	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	resultFile   = "result.json"
	scanFile     = "scan.json"
)

var ErrNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunMetadata describes a stored run. Parameter and Values are set only
// for scans.
type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Model     string             `json:"model"`
	Source    string             `json:"source,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Config    dynamo.Config      `json:"config"`
	Species   []string           `json:"species"`
	Samples   int                `json:"samples"`
	Parameter string             `json:"parameter,omitempty"`
	Values    []float64          `json:"values,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a single simulation as metadata.json, states.csv and
// result.json under a new run directory and returns the run id.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	meta.Kind = KindRun
	meta.Samples = result.Len()
	return s.writeRun(&meta, func(runDir string) error {
		if err := writeJSONFile(filepath.Join(runDir, resultFile), result); err != nil {
			return err
		}
		return writeStates(filepath.Join(runDir, statesFile), meta.Species, result)
	})
}

// SaveScan writes a scan as metadata.json and scan.json.
func (s *Store) SaveScan(meta RunMetadata, results []scan.Result) (string, error) {
	meta.Kind = KindScan
	meta.Values = make([]float64, len(results))
	for i, r := range results {
		meta.Values[i] = r.ParameterValue
	}
	if len(results) > 0 && results[0].Results != nil {
		meta.Samples = results[0].Results.Len()
	}
	return s.writeRun(&meta, func(runDir string) error {
		return writeJSONFile(filepath.Join(runDir, scanFile), results)
	})
}

// writeRun creates the run directory, writes the payload and then the
// metadata. A failed write removes the directory so List never sees a
// partial run.
func (s *Store) writeRun(meta *RunMetadata, payload func(runDir string) error) (string, error) {
	runDir, err := s.newRun(meta)
	if err != nil {
		return "", err
	}

	err = payload(runDir)
	if err == nil {
		err = writeJSONFile(filepath.Join(runDir, metadataFile), meta)
	}
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

func (s *Store) newRun(meta *RunMetadata) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s", meta.Model, uuid.NewString())
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	return runDir, nil
}

func writeJSONFile(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, species []string, result *dynamo.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)

	header := []string{"time"}
	for i := 0; i < result.NumSpecies; i++ {
		if i < len(species) {
			header = append(header, species[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Time {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, val := range result.Values[i*result.NumSpecies : (i+1)*result.NumSpecies] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := s.readJSON(runID, metadataFile, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResult reads the full-precision trajectory of a single run.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	var result dynamo.Result
	if err := s.readJSON(runID, resultFile, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) LoadScan(runID string) ([]scan.Result, error) {
	var results []scan.Result
	if err := s.readJSON(runID, scanFile, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) readJSON(runID, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s of run %s: %w", name, runID, err)
	}
	return nil
}

// LoadStates rebuilds a trajectory from states.csv, taking species names
// from the header.
func (s *Store) LoadStates(runID string) (*dynamo.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("states of run %s: missing header", runID)
	}

	species := records[0][1:]
	result := dynamo.NewResult(len(records)-1, len(species))
	result.SpeciesNames = species

	row := make(dynamo.State, len(species))
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("states of run %s: row %d: %w", runID, i+1, err)
		}
		for j := range row {
			row[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("states of run %s: row %d: %w", runID, i+1, err)
			}
		}
		result.Append(t, row)
	}
	return result, nil
}
