package handler

import (
	"context"
	"encoding/json"

	"github.com/TIANLI0/MaskBlur/model"
	"github.com/TIANLI0/MaskBlur/service"
	"github.com/TIANLI0/MaskBlur/utils"
	"go.uber.org/zap"
)

type MaskHandler struct {
	maskService *service.MaskService
}

func NewMaskHandler(maskService *service.MaskService) *MaskHandler {
	return &MaskHandler{maskService: maskService}
}

// Register 注册 mask_preview / mask_export / ping
func (h *MaskHandler) Register(s *EventServer) {
	s.On(model.EventMaskPreview, h.Preview)
	s.On(model.EventMaskExport, h.Export)
	s.On(model.EventPing, h.Ping)
}

// Preview 预览模糊结果，错误直接交给传输层
func (h *MaskHandler) Preview(ctx context.Context, data json.RawMessage) (string, any, error) {
	var req model.BlurRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", nil, model.NewError(model.InvalidPayload, "请求格式错误", err)
	}

	resp, err := h.maskService.Preview(ctx, &req)
	if err != nil {
		return "", nil, err
	}
	return model.EventMaskPreviewResponse, resp, nil
}

// Export 导出模糊掩码和原图，所有错误都以 success:false 返回
func (h *MaskHandler) Export(ctx context.Context, data json.RawMessage) (string, any, error) {
	var req model.BlurRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return model.EventMaskExportResponse, exportFailure(model.NewError(model.InvalidPayload, "请求格式错误", err)), nil
	}

	resp, err := h.maskService.Export(ctx, &req)
	if err != nil {
		utils.Logger.Error("failed to export mask",
			zap.String("mode", req.Mode),
			zap.String("timestamp", req.Timestamp),
			zap.Error(err))
		return model.EventMaskExportResponse, exportFailure(err), nil
	}
	return model.EventMaskExportResponse, resp, nil
}

func (h *MaskHandler) Ping(context.Context, json.RawMessage) (string, any, error) {
	return model.EventPong, nil, nil
}

func exportFailure(err error) *model.ExportResponse {
	return &model.ExportResponse{
		Success:   false,
		Error:     err.Error(),
		ErrorKind: model.KindOf(err).String(),
	}
}
