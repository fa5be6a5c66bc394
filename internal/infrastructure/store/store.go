package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipe-highlighter/internal/core/evaluation"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	defaultListLimit = 20

	// 固定寬度，字串排序即時間排序
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrRunNotFound 找不到指定的評估紀錄
var ErrRunNotFound = errors.New("evaluation run not found")

// Store 以 SQLite 保存評估歷史
type Store struct {
	db   *sql.DB
	path string
}

// Run 單次評估的摘要
type Run struct {
	ID             string            `json:"id"`
	Source         string            `json:"source"`
	Scorer         string            `json:"scorer"`
	MinConfidence  float64           `json:"min_confidence"`
	Evaluated      int               `json:"evaluated"`
	Skipped        int               `json:"skipped"`
	FileErrors     int               `json:"file_errors"`
	Totals         evaluation.Counts `json:"totals"`
	MacroF1        float64           `json:"macro_f1"`
	MicroPrecision float64           `json:"micro_precision"`
	MicroRecall    float64           `json:"micro_recall"`
	MicroF1        float64           `json:"micro_f1"`
	Duration       time.Duration     `json:"duration_ns"`
	CreatedAt      time.Time         `json:"created_at"`
}

// RecipeScore 單一食譜在某次評估中的分數
type RecipeScore struct {
	RunID     string             `json:"run_id"`
	RecipeID  string             `json:"recipe_id"`
	Skipped   bool               `json:"skipped"`
	Metrics   evaluation.Metrics `json:"metrics"`
	CreatedAt time.Time          `json:"created_at"`
}

// Open 開啟或建立評估歷史資料庫並套用遷移
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	common.LogDebug("評估歷史資料庫已開啟", zap.String("path", path))
	return s, nil
}

// Close 關閉資料庫連接
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path 資料庫檔案路徑
func (s *Store) Path() string {
	return s.path
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordRun 保存一次評估報告，返回紀錄 ID
func (s *Store) RecordRun(ctx context.Context, report *evaluation.Report, source string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("record run: nil report")
	}
	reportJSON, err := common.ToJSON(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	id := common.GenerateUUID()
	createdAt := time.Now().UTC().Format(timeLayout)

	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO eval_runs (
                id, source, scorer, min_confidence, evaluated, skipped, file_errors,
                tp, fp, fn, macro_f1, micro_precision, micro_recall, micro_f1,
                duration_ms, report_json, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, source, report.Scorer, report.MinConfidence,
			report.Evaluated, report.Skipped, len(report.Errors),
			report.Totals.TP, report.Totals.FP, report.Totals.FN,
			report.Macro.F1, report.Micro.Precision, report.Micro.Recall, report.Micro.F1,
			report.Duration.Milliseconds(), reportJSON, createdAt,
		); err != nil {
			return err
		}

		for i, r := range report.Recipes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO eval_recipes (
                    run_id, position, recipe_id, skipped, precision_score, recall_score, f1_score
                ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, i, r.ID, boolToInt(r.Skipped), r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	common.LogInfo("評估紀錄已保存",
		zap.String("run_id", id),
		zap.String("source", source),
		zap.Float64("micro_f1", report.Micro.F1),
	)
	return id, nil
}

const runColumns = "id, source, scorer, min_confidence, evaluated, skipped, file_errors, tp, fp, fn, macro_f1, micro_precision, micro_recall, micro_f1, duration_ms, created_at"

// ListRuns 依時間倒序列出最近的評估紀錄；limit <= 0 時使用預設值
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM eval_runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun 讀取單次評估摘要
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM eval_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// GetReport 讀取單次評估的完整報告
func (s *Store) GetReport(ctx context.Context, id string) (*evaluation.Report, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT report_json FROM eval_runs WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report evaluation.Report
	if err := common.ParseJSON(raw, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// RecipeHistory 列出單一食譜在最近評估中的分數，新的在前
func (s *Store) RecipeHistory(ctx context.Context, recipeID string, limit int) ([]RecipeScore, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.run_id, r.recipe_id, r.skipped, r.precision_score, r.recall_score, r.f1_score, e.created_at
         FROM eval_recipes r JOIN eval_runs e ON e.id = r.run_id
         WHERE r.recipe_id = ?
         ORDER BY e.created_at DESC, e.rowid DESC LIMIT ?`, recipeID, limit)
	if err != nil {
		return nil, fmt.Errorf("recipe history: %w", err)
	}
	defer rows.Close()

	scores := []RecipeScore{}
	for rows.Next() {
		var (
			score      RecipeScore
			skipped    int
			createdRaw string
		)
		if err := rows.Scan(&score.RunID, &score.RecipeID, &skipped,
			&score.Metrics.Precision, &score.Metrics.Recall, &score.Metrics.F1, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan recipe score: %w", err)
		}
		score.Skipped = skipped != 0
		score.CreatedAt = parseTime(createdRaw)
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe scores: %w", err)
	}
	return scores, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		durationMS int64
		createdRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&run.Scorer,
		&run.MinConfidence,
		&run.Evaluated,
		&run.Skipped,
		&run.FileErrors,
		&run.Totals.TP,
		&run.Totals.FP,
		&run.Totals.FN,
		&run.MacroF1,
		&run.MicroPrecision,
		&run.MicroRecall,
		&run.MicroF1,
		&durationMS,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.CreatedAt = parseTime(createdRaw)
	return &run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy 資料庫忙碌時以指數退避重試
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
