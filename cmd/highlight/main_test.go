package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipe-highlighter/internal/pkg/common"
)

const datasetDir = "testdata/datasets"

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "eval:\n" +
		"  dataset_dir: " + datasetDir + "\n" +
		"  workers: 2\n" +
		"  history_db: " + filepath.Join(dir, "history.db") + "\n" +
		"cache:\n" +
		"  enabled: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	prev := common.Logger
	t.Cleanup(func() { common.SetLogger(prev) })

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestMapCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "map", filepath.Join(datasetDir, "01-potatoes.json"))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	requireContains(t, out, "potatoes: Buttery new potatoes")
	requireContains(t, out, "step-0")
	requireContains(t, out, "400g Maris Piper potatoes, peeled")
}

func TestMapCommandJSON(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "--json", "map", "--learned", filepath.Join(datasetDir, "01-potatoes.json"))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	var resp struct {
		Mapping map[string][]string `json:"mapping"`
		Scorer  string              `json:"scorer"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.Scorer != "learned" {
		t.Errorf("scorer = %q", resp.Scorer)
	}
	for _, id := range []string{"step-0", "step-1", "step-2"} {
		if len(resp.Mapping[id]) == 0 {
			t.Errorf("%s has no ingredients; every step should be highlighted", id)
		}
	}
}

func TestMapCommandStrictFuzzy(t *testing.T) {
	cfg := writeTestConfig(t)
	path := filepath.Join(t.TempDir(), "rice.json")
	content := `{"id":"rice","ingredients":[{"items":["1 cup rice"]}],"instructions":[{"steps":["Crush the ice."]}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"edit distance one", []string{"--json", "map", path}, 1},
		{"strict", []string{"--json", "map", "--strict-fuzzy", path}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, cfg, tt.args...)
			if err != nil {
				t.Fatalf("map: %v", err)
			}
			var resp struct {
				Mapping map[string][]string `json:"mapping"`
			}
			if err := json.Unmarshal([]byte(out), &resp); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if got := len(resp.Mapping["step-0"]); got != tt.want {
				t.Errorf("step-0 = %v, want %d ingredients", resp.Mapping["step-0"], tt.want)
			}
		})
	}
}

func TestMapCommandErrors(t *testing.T) {
	cfg := writeTestConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"map", filepath.Join(datasetDir, "missing.json")}},
		{"confidence out of range", []string{"map", "--min-confidence", "1.5", filepath.Join(datasetDir, "01-potatoes.json")}},
		{"no arguments", []string{"map"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, cfg, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNormalizeCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "normalize", filepath.Join(datasetDir, "03-unlabeled.json"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var ds common.Dataset
	if err := json.Unmarshal([]byte(out), &ds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ds.ID != "unlabeled" || common.CountSteps(ds.Instructions) != 2 || ds.ExpectedMatches != nil {
		t.Errorf("normalized dataset = %+v", ds)
	}
}

func TestEvalAndHistoryCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "eval", "--record", "--verbose")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	requireContains(t, out, "potatoes")
	requireContains(t, out, "skipped")
	requireContains(t, out, "micro")
	requireContains(t, out, "1 evaluated, 1 skipped, 0 errors")
	requireContains(t, out, "recorded run ")

	out, _, err = runCLI(t, cfg, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "cli")
	requireContains(t, out, "heuristic")

	out, _, err = runCLI(t, cfg, "--json", "history", "--recipe", "potatoes")
	if err != nil {
		t.Fatalf("history --recipe: %v", err)
	}
	var scores []struct {
		RecipeID string `json:"recipe_id"`
		Metrics  struct {
			F1 float64 `json:"f1"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &scores); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(scores) != 1 || scores[0].RecipeID != "potatoes" {
		t.Fatalf("scores = %+v", scores)
	}
	if f1 := scores[0].Metrics.F1; f1 < 0.66 || f1 > 0.67 {
		t.Errorf("potatoes f1 = %v, want 2/3", f1)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No recorded runs")
}

func TestEvalCommandJSON(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "--json", "eval", "--workers", "1", datasetDir)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	var report struct {
		Evaluated int    `json:"evaluated"`
		Skipped   int    `json:"skipped"`
		RunID     string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Evaluated != 1 || report.Skipped != 1 || report.RunID != "" {
		t.Errorf("report = %+v", report)
	}
}

func TestConvertCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, _, err := runCLI(t, cfg, "convert", "1 cup milk", "1 stick butter")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", out)
	}
	if lines[0] != "1 cup milk (≈240 ml)\t[rule]" {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "1 stick butter" {
		t.Errorf("second line = %q", lines[1])
	}

	if _, _, err := runCLI(t, cfg, "convert", "--provider", "1 stick butter"); err == nil {
		t.Error("--provider without an enabled provider should fail")
	}
}
