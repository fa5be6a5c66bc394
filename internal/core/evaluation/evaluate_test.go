package evaluation

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/pkg/common"
)

const datasetDir = "testdata/datasets"

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCountsScore(t *testing.T) {
	tests := []struct {
		name string
		c    Counts
		want Metrics
	}{
		{"perfect", Counts{TP: 3}, Metrics{Precision: 1, Recall: 1, F1: 1}},
		{"nothing predicted or expected", Counts{}, Metrics{Precision: 1, Recall: 1, F1: 1}},
		{"only false positives", Counts{FP: 2}, Metrics{Precision: 0, Recall: 1, F1: 0}},
		{"only misses", Counts{FN: 2}, Metrics{Precision: 1, Recall: 0, F1: 0}},
		{"mixed", Counts{TP: 2, FP: 1, FN: 1}, Metrics{Precision: 2.0 / 3, Recall: 2.0 / 3, F1: 2.0 / 3}},
		{"all wrong", Counts{FP: 1, FN: 1}, Metrics{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Score()
			if !almostEqual(got.Precision, tt.want.Precision) ||
				!almostEqual(got.Recall, tt.want.Recall) ||
				!almostEqual(got.F1, tt.want.F1) {
				t.Errorf("Score() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCompareStep(t *testing.T) {
	got := compareStep("step-2", []string{"0-1", "0-2", "0-2"}, []string{"0-2", "0-3", "0-3"})
	if got.TP != 1 || got.FP != 1 || got.FN != 1 {
		t.Errorf("counts = %+v, want TP=1 FP=1 FN=1", got.Counts)
	}
	if !reflect.DeepEqual(got.Missed, []string{"0-1"}) || !reflect.DeepEqual(got.Extra, []string{"0-3"}) {
		t.Errorf("missed=%v extra=%v", got.Missed, got.Extra)
	}

	empty := compareStep("step-0", nil, nil)
	if empty.Expected == nil || empty.Predicted == nil {
		t.Error("expected and predicted should never be nil")
	}
}

func TestSortedStepIDs(t *testing.T) {
	got := sortedStepIDs(map[string][]string{
		"step-10": nil, "step-2": nil, "step-0": nil, "intro": nil,
	})
	want := []string{"step-0", "step-2", "step-10", "intro"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sortedStepIDs = %v, want %v", got, want)
	}
}

func TestEvaluateHighlightDir(t *testing.T) {
	report, err := EvaluateHighlightDir(context.Background(), datasetDir, nil)
	if err != nil {
		t.Fatalf("EvaluateHighlightDir: %v", err)
	}

	if report.Evaluated != 2 || report.Skipped != 1 {
		t.Errorf("evaluated=%d skipped=%d, want 2 and 1", report.Evaluated, report.Skipped)
	}
	if len(report.Errors) != 1 || report.Errors[0].File != "04-broken.json" {
		t.Errorf("errors = %+v, want one for 04-broken.json", report.Errors)
	}

	var ids []string
	for _, r := range report.Recipes {
		ids = append(ids, r.ID)
	}
	if want := []string{"potatoes", "carrots", "unlabeled"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("recipe order = %v, want %v", ids, want)
	}

	potatoes := report.Recipes[0]
	if potatoes.Counts != (Counts{TP: 2, FP: 1, FN: 1}) {
		t.Errorf("potatoes counts = %+v, want TP=2 FP=1 FN=1", potatoes.Counts)
	}
	if !almostEqual(potatoes.Metrics.Precision, 2.0/3) || !almostEqual(potatoes.Metrics.F1, 2.0/3) {
		t.Errorf("potatoes metrics = %+v", potatoes.Metrics)
	}
	if potatoes.File != "01-potatoes.json" || len(potatoes.Steps) != 3 {
		t.Errorf("unexpected potatoes result: %+v", potatoes)
	}

	carrots := report.Recipes[1]
	if carrots.Counts != (Counts{TP: 1}) {
		t.Errorf("carrots counts = %+v, want TP=1", carrots.Counts)
	}

	if report.Totals != (Counts{TP: 3, FP: 1, FN: 1}) {
		t.Errorf("totals = %+v", report.Totals)
	}
	macro := (2.0/3 + 1) / 2
	if !almostEqual(report.Macro.Precision, macro) || !almostEqual(report.Macro.Recall, macro) || !almostEqual(report.Macro.F1, macro) {
		t.Errorf("macro = %+v, want all %v", report.Macro, macro)
	}
	if !almostEqual(report.Micro.Precision, 0.75) || !almostEqual(report.Micro.Recall, 0.75) || !almostEqual(report.Micro.F1, 0.75) {
		t.Errorf("micro = %+v, want all 0.75", report.Micro)
	}
	if report.Scorer != "heuristic" || report.MinConfidence != highlight.DefaultMinConfidence {
		t.Errorf("scorer=%q min=%v", report.Scorer, report.MinConfidence)
	}
}

func TestEvaluateDirWorkerCountsAgree(t *testing.T) {
	var first *Report
	for _, workers := range []int{1, 2, 8} {
		ev := NewEvaluator(highlight.DefaultOptions(), workers)
		report, err := ev.EvaluateDir(context.Background(), datasetDir)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if st := ev.Status(); st.ProcessedCount != 4 || st.QueuedCount != 4 {
			t.Errorf("workers=%d: status = %+v, want 4 processed", workers, st)
		}
		report.Duration = 0
		if first == nil {
			first = report
			continue
		}
		if !reflect.DeepEqual(first, report) {
			t.Errorf("workers=%d produced a different report", workers)
		}
	}
}

func TestEvaluateDirMissing(t *testing.T) {
	_, err := EvaluateHighlightDir(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestEvaluateDirEmpty(t *testing.T) {
	report, err := EvaluateHighlightDir(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Evaluated != 0 || report.Macro != (Metrics{}) || report.Micro != (Metrics{}) {
		t.Errorf("empty dir report = %+v", report)
	}
}

func TestEvaluateRecipesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recipes := make([]common.Dataset, 50)
	for i := range recipes {
		recipes[i] = common.Dataset{ID: "r"}
	}
	_, err := NewEvaluator(highlight.DefaultOptions(), 1).EvaluateRecipes(ctx, recipes)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEvaluateRecipeLearnedScorer(t *testing.T) {
	ds, err := common.ReadDatasetFile(filepath.Join(datasetDir, "02-carrots.json"))
	if err != nil {
		t.Fatal(err)
	}
	opts := highlight.Options{MinConfidence: highlight.DefaultMinConfidence, UseLearnedModel: true}
	res := EvaluateRecipe(ds, &opts)
	if res.Skipped || res.Counts.TP != 1 {
		t.Errorf("learned scorer result = %+v", res)
	}
}
