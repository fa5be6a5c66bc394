package evaluation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeResult 單一食譜的評估結果
type RecipeResult struct {
	ID      string       `json:"id"`
	Title   string       `json:"title,omitempty"`
	File    string       `json:"file,omitempty"`
	Skipped bool         `json:"skipped"`
	Counts  Counts       `json:"counts"`
	Metrics Metrics      `json:"metrics"`
	Steps   []StepResult `json:"steps,omitempty"`
}

// FileError 單一檔案的讀取或解析錯誤，不中斷整批評估
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Report 整批評估報告
// 未標註的食譜只計入 Skipped，不參與 Macro/Micro
type Report struct {
	Scorer        string         `json:"scorer"`
	MinConfidence float64        `json:"minConfidence"`
	Recipes       []RecipeResult `json:"recipes"`
	Evaluated     int            `json:"evaluated"`
	Skipped       int            `json:"skipped"`
	Totals        Counts         `json:"totals"`
	Macro         Metrics        `json:"macro"`
	Micro         Metrics        `json:"micro"`
	Errors        []FileError    `json:"errors,omitempty"`
	Duration      time.Duration  `json:"duration_ns"`
}

// Evaluator 以固定選項評估多個食譜
type Evaluator struct {
	opts highlight.Options
	pool *pool
}

// NewEvaluator 創建評估器；workers <= 0 時使用 DefaultWorkers
func NewEvaluator(opts highlight.Options, workers int) *Evaluator {
	return &Evaluator{opts: opts, pool: newPool(workers)}
}

// Status 獲取工作池狀態
func (e *Evaluator) Status() PoolStatus {
	return e.pool.status()
}

// EvaluateHighlightDir 以預設並行數評估目錄中的所有 .json 資料集
func EvaluateHighlightDir(ctx context.Context, dir string, opts *highlight.Options) (*Report, error) {
	o := highlight.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	return NewEvaluator(o, DefaultWorkers).EvaluateDir(ctx, dir)
}

// EvaluateDir 評估目錄中的所有 .json 資料集（依檔名排序，不遞迴）
// 個別檔案錯誤記錄在 Report.Errors；目錄無法讀取時返回錯誤
func (e *Evaluator) EvaluateDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir %s: %w", dir, err)
	}

	var jobs []job
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		jobs = append(jobs, job{
			file: entry.Name(),
			load: func() (*common.Dataset, error) { return common.ReadDatasetFile(path) },
		})
	}

	common.LogInfo("開始評估資料集目錄",
		zap.String("dir", dir),
		zap.Int("files", len(jobs)),
		zap.Int("workers", e.pool.workers),
	)
	return e.evaluate(ctx, jobs)
}

// EvaluateRecipes 評估已載入的資料集，結果順序與輸入一致
func (e *Evaluator) EvaluateRecipes(ctx context.Context, recipes []common.Dataset) (*Report, error) {
	jobs := make([]job, 0, len(recipes))
	for i := range recipes {
		ds := &recipes[i]
		jobs = append(jobs, job{load: func() (*common.Dataset, error) { return ds, nil }})
	}
	return e.evaluate(ctx, jobs)
}

func (e *Evaluator) evaluate(ctx context.Context, jobs []job) (*Report, error) {
	start := time.Now()

	outcomes, err := e.pool.run(ctx, jobs, e.process)
	if err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}

	report := buildReport(outcomes)
	report.Scorer = e.opts.ScorerName()
	report.MinConfidence = e.opts.MinConfidence
	report.Duration = time.Since(start)

	common.LogInfo("評估完成",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)),
		zap.Float64("macro_f1", report.Macro.F1),
		zap.Float64("micro_f1", report.Micro.F1),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (e *Evaluator) process(j job) outcome {
	ds, err := j.load()
	if err != nil {
		common.LogWarn("資料集載入失敗", zap.String("file", j.file), zap.Error(err))
		return outcome{err: &FileError{File: j.file, Error: err.Error()}}
	}
	res := EvaluateRecipe(ds, &e.opts)
	res.File = j.file
	return outcome{result: &res}
}

// EvaluateRecipe 評估單一食譜；只比較有標註的步驟
func EvaluateRecipe(ds *common.Dataset, opts *highlight.Options) RecipeResult {
	res := RecipeResult{ID: ds.ID, Title: ds.TitleText()}
	if !ds.HasLabels() {
		res.Skipped = true
		return res
	}

	mapping := highlight.MapIngredientsToSteps(ds.Ingredients, ds.Instructions, opts)
	for _, stepID := range sortedStepIDs(ds.ExpectedMatches) {
		step := compareStep(stepID, ds.ExpectedMatches[stepID], mapping[stepID])
		res.Steps = append(res.Steps, step)
		res.Counts = res.Counts.Add(step.Counts)
	}
	res.Metrics = res.Counts.Score()
	return res
}

func buildReport(outcomes []outcome) *Report {
	report := &Report{Recipes: []RecipeResult{}}
	var perRecipe []Metrics
	for _, o := range outcomes {
		if o.err != nil {
			report.Errors = append(report.Errors, *o.err)
			continue
		}
		if o.result == nil {
			continue
		}
		r := *o.result
		report.Recipes = append(report.Recipes, r)
		if r.Skipped {
			report.Skipped++
			continue
		}
		report.Evaluated++
		report.Totals = report.Totals.Add(r.Counts)
		perRecipe = append(perRecipe, r.Metrics)
	}

	report.Macro = macroAverage(perRecipe)
	if report.Evaluated > 0 {
		report.Micro = report.Totals.Score()
	}
	return report
}
