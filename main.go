package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/TIANLI0/MaskBlur/config"
	"github.com/TIANLI0/MaskBlur/handler"
	"github.com/TIANLI0/MaskBlur/middleware"
	"github.com/TIANLI0/MaskBlur/service"
	"github.com/TIANLI0/MaskBlur/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting MaskBlur server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch),
		zap.String("blur_backend", cfg.Blur.Backend),
		zap.Int64("max_payload_size", cfg.Limits.MaxPayloadSize))

	filter, err := service.NewFilter(cfg.Blur.Backend)
	if err != nil {
		utils.Logger.Fatal("failed to create blur filter", zap.Error(err))
	}
	blurService := service.NewBlurService(&cfg.Blur, filter)

	// Redis 预览缓存，连接失败时不启用
	var cache service.PreviewCache
	if cfg.Redis.Enabled {
		redisService := service.NewRedisService(&cfg.Redis)
		if err := redisService.Ping(context.Background()); err != nil {
			utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
		} else {
			utils.Logger.Info("redis connected successfully")
			cache = redisService
		}
		defer redisService.Close()
	}

	maskService := service.NewMaskService(cfg, blurService, cache)

	// 事件映射只在启动时构建一次
	events := handler.NewEventServer()
	handler.NewMaskHandler(maskService).Register(events)

	socketHandler := handler.NewSocketHandler(events, cfg.Limits.MaxPayloadSize, cfg.Server.PingInterval, cfg.Server.OriginPatterns)
	httpHandler := handler.NewHTTPHandler(events, cfg.Limits.MaxPayloadSize)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	r := newRouter(socketHandler, httpHandler, "./static")

	// 只限制请求头读取时间，劫持后的 WebSocket 连接不受影响
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
}

// newRouter 注册中间件、静态页面、健康检查和事件路由
func newRouter(socketHandler *handler.SocketHandler, httpHandler *handler.HTTPHandler, staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 静态文件服务
	r.Static("/static", staticDir)
	r.StaticFile("/", filepath.Join(staticDir, "index.html"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"build_id":   BuildID,
			"git_commit": GitCommit,
			"git_branch": GitBranch,
		})
	})

	r.GET("/ws", socketHandler.Serve)

	api := r.Group("/api/v1")
	{
		api.POST("/events/:event", httpHandler.Emit)
	}

	return r
}
