package convert

import (
	"net/http"

	"recipe-highlighter/internal/api/handlers"
	recipeService "recipe-highlighter/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// Handler 單位換算處理程序
type Handler struct {
	convertService *recipeService.ConvertService
	debug          bool
}

// NewHandler 創建新的單位換算處理程序
func NewHandler(convertService *recipeService.ConvertService, debug bool) *Handler {
	return &Handler{convertService: convertService, debug: debug}
}

// HandleConvert 為食材行附加公制換算
func (h *Handler) HandleConvert(c *gin.Context) {
	var req recipeService.ConvertRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	resp, err := h.convertService.Convert(c.Request.Context(), &req)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, resp)
}
