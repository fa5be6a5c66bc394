package highlight

import (
	"net/http"

	"recipe-highlighter/internal/api/handlers"
	recipeService "recipe-highlighter/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// Handler 食材標示處理程序
type Handler struct {
	highlightService  *recipeService.HighlightService
	evaluationService *recipeService.EvaluationService
	debug             bool
}

// NewHandler 創建新的食材標示處理程序
func NewHandler(highlightService *recipeService.HighlightService, evaluationService *recipeService.EvaluationService, debug bool) *Handler {
	return &Handler{
		highlightService:  highlightService,
		evaluationService: evaluationService,
		debug:             debug,
	}
}

// HandleHighlight 計算每個步驟提到的食材
func (h *Handler) HandleHighlight(c *gin.Context) {
	var req recipeService.HighlightRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	resp, err := h.highlightService.Highlight(c.Request.Context(), &req)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleNormalize 只清理食材與步驟分組
func (h *Handler) HandleNormalize(c *gin.Context) {
	var req recipeService.NormalizeRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	resp, err := h.highlightService.Normalize(&req)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleEvaluate 以請求內的標註資料評估比對品質
func (h *Handler) HandleEvaluate(c *gin.Context) {
	var req recipeService.EvaluateRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	resp, err := h.evaluationService.Evaluate(c.Request.Context(), &req)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}
