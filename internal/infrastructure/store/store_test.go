package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"recipe-highlighter/internal/core/evaluation"
)

func mustOpen(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(microF1 float64) *evaluation.Report {
	return &evaluation.Report{
		Scorer:        "heuristic",
		MinConfidence: 0.35,
		Recipes: []evaluation.RecipeResult{
			{ID: "potatoes", Counts: evaluation.Counts{TP: 2, FP: 1, FN: 1}, Metrics: evaluation.Metrics{Precision: 2.0 / 3, Recall: 2.0 / 3, F1: 2.0 / 3}},
			{ID: "unlabeled", Skipped: true},
		},
		Evaluated: 1,
		Skipped:   1,
		Totals:    evaluation.Counts{TP: 2, FP: 1, FN: 1},
		Macro:     evaluation.Metrics{Precision: 2.0 / 3, Recall: 2.0 / 3, F1: 2.0 / 3},
		Micro:     evaluation.Metrics{Precision: 2.0 / 3, Recall: 2.0 / 3, F1: microF1},
		Errors:    []evaluation.FileError{{File: "broken.json", Error: "unexpected EOF"}},
		Duration:  1500 * time.Millisecond,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	ctx := context.Background()
	s := mustOpen(t, filepath.Join(t.TempDir(), "history", "eval.db"))

	firstID, err := s.RecordRun(ctx, sampleReport(0.5), "datasets")
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	secondID, err := s.RecordRun(ctx, sampleReport(0.75), "api")
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != secondID || runs[1].ID != firstID {
		t.Fatalf("runs = %+v, want newest first", runs)
	}

	got := runs[0]
	if got.Source != "api" || got.Scorer != "heuristic" || got.MicroF1 != 0.75 {
		t.Errorf("run = %+v", got)
	}
	if got.Evaluated != 1 || got.Skipped != 1 || got.FileErrors != 1 {
		t.Errorf("counts = evaluated %d skipped %d errors %d", got.Evaluated, got.Skipped, got.FileErrors)
	}
	if got.Totals != (evaluation.Counts{TP: 2, FP: 1, FN: 1}) || got.Duration != 1500*time.Millisecond {
		t.Errorf("totals=%+v duration=%v", got.Totals, got.Duration)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}

	limited, err := s.ListRuns(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("ListRuns(limit 1) = %d runs, %v", len(limited), err)
	}
}

func TestGetRunAndReport(t *testing.T) {
	ctx := context.Background()
	s := mustOpen(t, filepath.Join(t.TempDir(), "eval.db"))

	id, err := s.RecordRun(ctx, sampleReport(0.5), "datasets")
	if err != nil {
		t.Fatal(err)
	}

	run, err := s.GetRun(ctx, id)
	if err != nil || run.ID != id {
		t.Fatalf("GetRun = %+v, %v", run, err)
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if len(report.Recipes) != 2 || report.Recipes[0].ID != "potatoes" || !report.Recipes[1].Skipped {
		t.Errorf("recipes = %+v", report.Recipes)
	}
	if report.Duration != 1500*time.Millisecond || len(report.Errors) != 1 {
		t.Errorf("report = %+v", report)
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(missing) err = %v", err)
	}
	if _, err := s.GetReport(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetReport(missing) err = %v", err)
	}
}

func TestRecipeHistory(t *testing.T) {
	ctx := context.Background()
	s := mustOpen(t, filepath.Join(t.TempDir(), "eval.db"))

	for i := 0; i < 3; i++ {
		if _, err := s.RecordRun(ctx, sampleReport(0.5), "datasets"); err != nil {
			t.Fatal(err)
		}
	}

	scores, err := s.RecipeHistory(ctx, "potatoes", 2)
	if err != nil {
		t.Fatalf("RecipeHistory: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	if scores[0].Skipped || scores[0].Metrics.F1 != 2.0/3 {
		t.Errorf("score = %+v", scores[0])
	}

	skipped, err := s.RecipeHistory(ctx, "unlabeled", 0)
	if err != nil || len(skipped) != 3 || !skipped[0].Skipped {
		t.Errorf("unlabeled history = %+v, %v", skipped, err)
	}

	none, err := s.RecipeHistory(ctx, "nope", 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("unknown recipe history = %+v, %v", none, err)
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "eval.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRun(ctx, sampleReport(0.5), "datasets"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	reopened := mustOpen(t, path)
	runs, err := reopened.ListRuns(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Errorf("after reopen: %d runs, %v", len(runs), err)
	}
}

func TestRecordRunNilReport(t *testing.T) {
	s := mustOpen(t, filepath.Join(t.TempDir(), "eval.db"))
	if _, err := s.RecordRun(context.Background(), nil, "x"); err == nil {
		t.Error("expected error for nil report")
	}
}
