package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-highlighter/internal/core/convert"
	"recipe-highlighter/internal/pkg/common"
)

// MaxConvertLines 單次換算請求的行數上限
const MaxConvertLines = 100

// ConvertService 單位換算服務
type ConvertService struct {
	converter *convert.Converter
}

// NewConvertService 創建新的單位換算服務
func NewConvertService(converter *convert.Converter) *ConvertService {
	return &ConvertService{converter: converter}
}

// Convert 逐行附加公制換算；任一行的外部換算失敗即返回錯誤
func (s *ConvertService) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResponse, error) {
	if req == nil {
		return nil, common.ErrInvalidRequest
	}

	lines := make([]string, 0, len(req.Lines)+1)
	for _, line := range append([]string{req.Line}, req.Lines...) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, common.ErrInvalidRequest.Wrap(common.NewValidationError("line must not be empty"))
	}
	if len(lines) > MaxConvertLines {
		return nil, common.ErrInvalidRequest.Wrap(common.NewValidationError(
			fmt.Sprintf("at most %d lines per request, got %d", MaxConvertLines, len(lines))))
	}

	resp := &ConvertResponse{Results: make([]convert.Result, 0, len(lines))}
	for _, line := range lines {
		res, err := s.converter.Annotate(ctx, line)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, res)
	}
	return resp, nil
}
