package service

import (
	"context"
	"fmt"
	"time"

	"github.com/TIANLI0/MaskBlur/config"
	"github.com/redis/go-redis/v9"
)

// PreviewCache 预览结果缓存
type PreviewCache interface {
	GetPreview(ctx context.Context, key string) (string, bool, error)
	SetPreview(ctx context.Context, key, blurredMask string) error
}

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// PreviewKey 预览缓存键：掩码MD5 + 半径
func PreviewKey(maskMD5 string, radius int) string {
	return fmt.Sprintf("preview:%s:%d", maskMD5, radius)
}

// GetPreview 从缓存获取模糊后的 data URI
func (s *RedisService) GetPreview(ctx context.Context, key string) (string, bool, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil // 缓存未命中
		}
		return "", false, err
	}
	return data, true, nil
}

// SetPreview 写入预览缓存
func (s *RedisService) SetPreview(ctx context.Context, key, blurredMask string) error {
	return s.client.Set(ctx, key, blurredMask, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
