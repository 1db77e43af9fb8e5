package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/scan"
)

func testResult() *dynamo.Result {
	r := dynamo.NewResult(2, 2)
	r.SpeciesNames = []string{"Prey", "Predator"}
	r.Append(0, dynamo.State{10, 5})
	r.Append(0.1, dynamo.State{10.123456789, 4.9})
	return r
}

func testMeta() RunMetadata {
	return RunMetadata{
		Model:   "lotka_volterra",
		Config:  dynamo.Config{TimeEnd: 0.1, TimeStep: 0.1, Method: "rk4"},
		Species: []string{"prey", "predator"},
		Metrics: map[string]float64{"total_drift": 0.5},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "lotka_volterra_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Kind != KindRun {
		t.Errorf("expected kind %q, got %q", KindRun, meta.Kind)
	}
	if meta.Samples != 2 {
		t.Errorf("expected 2 samples, got %d", meta.Samples)
	}
	if meta.Metrics["total_drift"] != 0.5 {
		t.Errorf("expected total_drift 0.5, got %v", meta.Metrics["total_drift"])
	}
	if meta.Config.Method != "rk4" {
		t.Errorf("expected method rk4, got %q", meta.Config.Method)
	}

	result, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if result.NumSpecies != 2 || len(result.Values) != 4 {
		t.Errorf("unexpected result layout: %+v", result)
	}
	if result.Values[2] != 10.123456789 {
		t.Errorf("precision lost: %v", result.Values[2])
	}

	states, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if states.Len() != 2 {
		t.Errorf("expected 2 samples, got %d", states.Len())
	}
	if states.SpeciesNames[0] != "prey" || states.SpeciesNames[1] != "predator" {
		t.Errorf("unexpected header %v", states.SpeciesNames)
	}
	if states.Values[2] != 10.123456789 {
		t.Errorf("csv precision lost: %v", states.Values[2])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	older := testMeta()
	older.Timestamp = time.Now().Add(-time.Hour)
	if _, err := st.Save(older, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	newest, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != newest {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "states.csv", "result.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "time,prey,predator\n") {
		t.Errorf("unexpected csv header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestStoreScan(t *testing.T) {
	st := New(t.TempDir())

	meta := testMeta()
	meta.Parameter = "predation_rate"
	results := []scan.Result{
		{ParameterValue: 0.1, Results: testResult()},
		{ParameterValue: 0.2, Results: testResult()},
	}

	runID, err := st.SaveScan(meta, results)
	if err != nil {
		t.Fatalf("save scan failed: %v", err)
	}

	loadedMeta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loadedMeta.Kind != KindScan || loadedMeta.Parameter != "predation_rate" {
		t.Errorf("unexpected metadata %+v", loadedMeta)
	}
	if len(loadedMeta.Values) != 2 || loadedMeta.Values[1] != 0.2 {
		t.Errorf("unexpected values %v", loadedMeta.Values)
	}

	loaded, err := st.LoadScan(runID)
	if err != nil {
		t.Fatalf("load scan failed: %v", err)
	}
	if len(loaded) != 2 || loaded[1].ParameterValue != 0.2 || loaded[1].Results.Len() != 2 {
		t.Errorf("unexpected scan %+v", loaded)
	}

	if _, err := st.LoadResult(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for scan result.json, got %v", err)
	}
}

func TestStoreFailedSaveLeavesNoRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	diverged := testResult()
	diverged.Values[3] = math.NaN()
	if _, err := st.Save(testMeta(), diverged); err == nil {
		t.Fatal("expected save of a non-finite result to fail")
	}

	bad := []scan.Result{{ParameterValue: 0.1, Results: diverged}}
	if _, err := st.SaveScan(testMeta(), bad); err == nil {
		t.Fatal("expected scan save of a non-finite result to fail")
	}

	entries, err := os.ReadDir(st.Dir())
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directories after failed saves, found %d", len(entries))
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadStates("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testResult()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"time", "values", "num_species"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if decoded["num_species"].(float64) != 2 {
		t.Errorf("unexpected num_species %v", decoded["num_species"])
	}
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var result dynamo.Result
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if !result.Consistent() {
		t.Error("exported result is inconsistent")
	}
}
