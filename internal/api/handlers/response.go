package handlers

import (
	"errors"
	"net/http"

	"recipe-highlighter/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BindJSON 解析 JSON 請求體（禁止未知欄位）；失敗時寫出錯誤響應並返回 false
func BindJSON(c *gin.Context, v interface{}, debug bool) bool {
	if c.Request.Body == nil {
		RespondError(c, common.ErrInvalidRequest.Wrap(errors.New("empty request body")), debug)
		return false
	}
	if err := common.DecodeJSONStrict(c.Request.Body, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, common.ErrBodyTooLarge.Wrap(err), debug)
			return false
		}
		RespondError(c, common.ErrInvalidRequest.Wrap(err), debug)
		return false
	}
	return true
}

// RespondError 將錯誤轉為統一的 JSON 錯誤響應
func RespondError(c *gin.Context, err error, debug bool) {
	status, resp := common.ToResponse(err, debug)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", resp.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無效", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
