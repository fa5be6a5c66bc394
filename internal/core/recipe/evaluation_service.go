package recipe

import (
	"context"
	"fmt"

	"recipe-highlighter/internal/core/evaluation"
	"recipe-highlighter/internal/pkg/common"

	"go.uber.org/zap"
)

// MaxEvaluateRecipes 單次評估請求的食譜上限
const MaxEvaluateRecipes = 500

// RunRecorder 保存評估結果的儲存庫
type RunRecorder interface {
	RecordRun(ctx context.Context, report *evaluation.Report, source string) (string, error)
}

// EvaluationService 批次評估服務
type EvaluationService struct {
	*Service
	workers  int
	recorder RunRecorder
}

// NewEvaluationService 創建新的評估服務；recorder 可為 nil
func NewEvaluationService(base *Service, workers int, recorder RunRecorder) *EvaluationService {
	return &EvaluationService{
		Service:  base,
		workers:  workers,
		recorder: recorder,
	}
}

// Evaluate 以標註資料評估比對結果
func (s *EvaluationService) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	if req == nil || len(req.Recipes) == 0 {
		return nil, common.ErrInvalidRequest.Wrap(common.NewValidationError("recipes must not be empty"))
	}
	if len(req.Recipes) > MaxEvaluateRecipes {
		return nil, common.ErrInvalidRequest.Wrap(common.NewValidationError(
			fmt.Sprintf("at most %d recipes per request, got %d", MaxEvaluateRecipes, len(req.Recipes))))
	}
	if req.Record && s.recorder == nil {
		return nil, common.ErrServiceUnavailable.Wrap(fmt.Errorf("evaluation history is not configured"))
	}

	opts, err := s.resolveOptions(req.Options)
	if err != nil {
		return nil, err
	}

	report, err := evaluation.NewEvaluator(opts, s.workers).EvaluateRecipes(ctx, req.Recipes)
	if err != nil {
		return nil, fmt.Errorf("evaluate recipes: %w", err)
	}

	resp := &EvaluateResponse{Report: report}
	if req.Record {
		id, err := s.recorder.RecordRun(ctx, report, "api")
		if err != nil {
			common.LogError("評估紀錄保存失敗", zap.Error(err))
			return nil, common.ErrInternalError.Wrap(err)
		}
		resp.RunID = id
	}
	return resp, nil
}
