package service

import (
	"context"
	"time"

	"github.com/TIANLI0/MaskBlur/config"
	"github.com/TIANLI0/MaskBlur/model"
	"github.com/TIANLI0/MaskBlur/utils"
	"go.uber.org/zap"
)

// BlurService 负责掩码模糊，限制同时进行的模糊数量
type BlurService struct {
	filter       Filter
	semaphore    chan struct{}
	queueTimeout time.Duration
}

func NewBlurService(cfg *config.BlurConfig, filter Filter) *BlurService {
	s := &BlurService{
		filter:       filter,
		queueTimeout: time.Duration(cfg.QueueTimeout) * time.Second,
	}
	if cfg.MaxConcurrent > 0 {
		s.semaphore = make(chan struct{}, cfg.MaxConcurrent)
	}
	return s
}

// Blur 对图片字节做高斯模糊，返回 PNG 字节
func (s *BlurService) Blur(ctx context.Context, src []byte, radius int) ([]byte, error) {
	if s.semaphore != nil {
		waitCtx := ctx
		if s.queueTimeout > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, s.queueTimeout)
			defer cancel()
		}

		select {
		case s.semaphore <- struct{}{}:
			defer func() { <-s.semaphore }()
		case <-waitCtx.Done():
			return nil, model.NewError(model.FilterFailure, "处理队列已满，请稍后重试", waitCtx.Err())
		}
	}

	start := time.Now()
	out, err := s.filter.Blur(src, radius)
	if err != nil {
		return nil, model.NewError(model.FilterFailure, "图片模糊失败", err)
	}

	utils.Logger.Debug("mask blurred",
		zap.Int("radius", radius),
		zap.Int("input_bytes", len(src)),
		zap.Int("output_bytes", len(out)),
		zap.Duration("cost", time.Since(start)))

	return out, nil
}
