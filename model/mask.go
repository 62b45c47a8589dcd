package model

// 事件名称
const (
	EventMaskPreview         = "mask_preview"
	EventMaskPreviewResponse = "mask_preview_response"
	EventMaskExport          = "mask_export"
	EventMaskExportResponse  = "mask_export_response"
	EventPing                = "ping"
	EventPong                = "pong"
	EventError               = "error"
)

// Envelope 客户端与服务端之间传递的事件
type Envelope struct {
	Event string `json:"event"`
	ID    string `json:"id,omitempty"` // 原样回传，用于确认
	Data  any    `json:"data,omitempty"`
}

// BlurRequest 掩码模糊请求
type BlurRequest struct {
	Mask        string `json:"mask"`
	SourceImage string `json:"sourceImage,omitempty"`
	Mode        string `json:"mode"`
	BlurRadius  *int   `json:"blurRadius,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Radius 返回模糊半径，未设置时使用 def
func (r *BlurRequest) Radius(def int) int {
	if r.BlurRadius == nil {
		return def
	}
	return *r.BlurRadius
}

// PreviewResponse 预览响应
type PreviewResponse struct {
	BlurredMask string `json:"blurred_mask"`
	Mode        string `json:"mode"`
}

// ExportResponse 导出响应
type ExportResponse struct {
	Success        bool   `json:"success"`
	MaskFilename   string `json:"mask_filename,omitempty"`
	SourceFilename string `json:"source_filename,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Error          string `json:"error,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
