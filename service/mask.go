package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TIANLI0/MaskBlur/config"
	"github.com/TIANLI0/MaskBlur/model"
	"github.com/TIANLI0/MaskBlur/utils"
	"go.uber.org/zap"
)

// MaskService 处理掩码预览与导出
type MaskService struct {
	blur          *BlurService
	cache         PreviewCache
	defaultRadius int
	maxSize       int64
	maskDir       string
	sourceDir     string
}

// NewMaskService cache 可以为 nil
func NewMaskService(cfg *config.Config, blur *BlurService, cache PreviewCache) *MaskService {
	return &MaskService{
		blur:          blur,
		cache:         cache,
		defaultRadius: cfg.Blur.DefaultRadius,
		maxSize:       cfg.Limits.MaxPayloadSize,
		maskDir:       cfg.Output.MaskDir,
		sourceDir:     cfg.Output.SourceDir,
	}
}

// MaskFilename 导出的模糊掩码文件名
func MaskFilename(mode, timestamp string, radius int) string {
	return fmt.Sprintf("mask_%s_%s_%dpx.png", mode, timestamp, radius)
}

// SourceFilename 导出的原图文件名
func SourceFilename(mode, timestamp string) string {
	return fmt.Sprintf("source_%s_%s.png", mode, timestamp)
}

// Preview 模糊掩码并以 data URI 返回，不做成功/失败封装
func (s *MaskService) Preview(ctx context.Context, req *model.BlurRequest) (*model.PreviewResponse, error) {
	if req.Mask == "" {
		return nil, model.NewError(model.InvalidPayload, "缺少 mask 字段", nil)
	}
	radius := req.Radius(s.defaultRadius)

	var cacheKey string
	if s.cache != nil {
		cacheKey = PreviewKey(utils.StringMD5(req.Mask), radius)
		cached, ok, err := s.cache.GetPreview(ctx, cacheKey)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.Error(err))
		}
		if ok {
			utils.Logger.Debug("cache hit", zap.String("cache_key", cacheKey))
			return &model.PreviewResponse{BlurredMask: cached, Mode: req.Mode}, nil
		}
	}

	mask, err := utils.DecodeDataURI(req.Mask)
	if err != nil {
		return nil, model.NewError(model.InvalidPayload, "mask 格式错误", err)
	}

	blurred, err := s.blur.Blur(ctx, mask, radius)
	if err != nil {
		return nil, err
	}

	uri := utils.EncodeDataURI("image/png", blurred)
	if s.cache != nil {
		if err := s.cache.SetPreview(ctx, cacheKey, uri); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	return &model.PreviewResponse{BlurredMask: uri, Mode: req.Mode}, nil
}

// Export 模糊掩码并将掩码和原图写入输出目录，同名文件直接覆盖
func (s *MaskService) Export(ctx context.Context, req *model.BlurRequest) (*model.ExportResponse, error) {
	total := int64(len(req.Mask)) + int64(len(req.SourceImage))
	if s.maxSize > 0 && total > s.maxSize {
		return nil, model.NewError(model.PayloadTooLarge,
			fmt.Sprintf("请求大小 %d 字节超过限制 (%d 字节)", total, s.maxSize), nil)
	}

	if req.Mask == "" {
		return nil, model.NewError(model.InvalidPayload, "缺少 mask 字段", nil)
	}
	if req.SourceImage == "" {
		return nil, model.NewError(model.InvalidPayload, "缺少 sourceImage 字段", nil)
	}
	if err := checkNamePart("mode", req.Mode); err != nil {
		return nil, err
	}
	if err := checkNamePart("timestamp", req.Timestamp); err != nil {
		return nil, err
	}

	mask, err := utils.DecodeDataURI(req.Mask)
	if err != nil {
		return nil, model.NewError(model.InvalidPayload, "mask 格式错误", err)
	}
	source, err := utils.DecodeDataURI(req.SourceImage)
	if err != nil {
		return nil, model.NewError(model.InvalidPayload, "sourceImage 格式错误", err)
	}

	radius := req.Radius(s.defaultRadius)
	blurred, err := s.blur.Blur(ctx, mask, radius)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{s.maskDir, s.sourceDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, model.NewError(model.WriteFailure, "创建输出目录失败", err)
		}
	}

	maskName := MaskFilename(req.Mode, req.Timestamp, radius)
	sourceName := SourceFilename(req.Mode, req.Timestamp)

	if err := os.WriteFile(filepath.Join(s.maskDir, maskName), blurred, 0644); err != nil {
		return nil, model.NewError(model.WriteFailure, "保存掩码失败", err)
	}
	if err := os.WriteFile(filepath.Join(s.sourceDir, sourceName), source, 0644); err != nil {
		return nil, model.NewError(model.WriteFailure, "保存原图失败", err)
	}

	utils.Logger.Info("mask exported",
		zap.String("mode", req.Mode),
		zap.String("mask_file", maskName),
		zap.String("source_file", sourceName),
		zap.Int("radius", radius))

	return &model.ExportResponse{
		Success:        true,
		MaskFilename:   maskName,
		SourceFilename: sourceName,
		Mode:           req.Mode,
	}, nil
}

// 文件名片段不允许跳出输出目录
func checkNamePart(field, value string) error {
	if strings.ContainsAny(value, `/\`) || strings.Contains(value, "..") {
		return model.NewError(model.InvalidPayload, fmt.Sprintf("%s 包含非法字符", field), nil)
	}
	return nil
}
