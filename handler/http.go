package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/TIANLI0/MaskBlur/model"
	"github.com/TIANLI0/MaskBlur/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPHandler 无法保持 WebSocket 的客户端使用的 HTTP 入口
type HTTPHandler struct {
	server    *EventServer
	bodyLimit int64
}

func NewHTTPHandler(server *EventServer, maxPayloadSize int64) *HTTPHandler {
	return &HTTPHandler{
		server:    server,
		bodyLimit: maxPayloadSize + envelopeHeadroom,
	}
}

// Emit POST /api/v1/events/:event，请求体即事件数据
func (h *HTTPHandler) Emit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit)
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
				Success: false,
				Kind:    model.PayloadTooLarge.String(),
				Message: "请求体过大",
				Error:   err.Error(),
			})
			return
		}
		utils.Logger.Warn("failed to read request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Kind:    model.InvalidPayload.String(),
			Message: "读取请求体失败",
			Error:   err.Error(),
		})
		return
	}

	resp := h.server.Dispatch(c.Request.Context(), c.Param("event"), c.Query("id"), data)
	c.JSON(statusFor(resp), resp)
}

func statusFor(env *model.Envelope) int {
	if env.Event != model.EventError {
		return http.StatusOK
	}
	errResp, ok := env.Data.(model.ErrorResponse)
	if !ok {
		return http.StatusInternalServerError
	}
	switch errResp.Kind {
	case model.InvalidPayload.String():
		return http.StatusBadRequest
	case model.PayloadTooLarge.String():
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
