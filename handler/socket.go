package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/TIANLI0/MaskBlur/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// envelopeHeadroom 事件外层 JSON 的额外空间
const envelopeHeadroom = 1 << 20

type clientMsg struct {
	Event string          `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SocketHandler WebSocket 传输层，同一连接上的事件按顺序同步处理
type SocketHandler struct {
	server         *EventServer
	readLimit      int64
	pingInterval   time.Duration
	originPatterns []string
}

func NewSocketHandler(server *EventServer, maxPayloadSize int64, pingInterval time.Duration, originPatterns []string) *SocketHandler {
	return &SocketHandler{
		server:         server,
		readLimit:      maxPayloadSize + envelopeHeadroom,
		pingInterval:   pingInterval,
		originPatterns: originPatterns,
	}
}

func (h *SocketHandler) acceptOptions() *websocket.AcceptOptions {
	if len(h.originPatterns) == 0 {
		return nil
	}
	return &websocket.AcceptOptions{OriginPatterns: h.originPatterns}
}

// Serve 升级为 WebSocket 并循环读取事件
func (h *SocketHandler) Serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, h.acceptOptions())
	if err != nil {
		utils.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(h.readLimit)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := utils.Logger.With(zap.String("conn_id", utils.GenerateID()))
	log.Info("client connected", zap.String("ip", c.ClientIP()))

	if h.pingInterval > 0 {
		go h.keepAlive(ctx, conn, log)
	}

	for {
		var msg clientMsg
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Info("client disconnected")
			default:
				if errors.Is(err, context.Canceled) {
					log.Info("client disconnected")
				} else {
					log.Warn("read failed, closing connection", zap.Error(err))
				}
			}
			return
		}

		start := time.Now()
		resp := h.server.Dispatch(ctx, msg.Event, msg.ID, msg.Data)
		log.Info("event",
			zap.String("event", msg.Event),
			zap.String("response", resp.Event),
			zap.Int("bytes", len(msg.Data)),
			zap.Duration("cost", time.Since(start)))

		if err := wsjson.Write(ctx, conn, resp); err != nil {
			log.Warn("write failed, closing connection", zap.Error(err))
			return
		}
	}
}

func (h *SocketHandler) keepAlive(ctx context.Context, conn *websocket.Conn, log *zap.Logger) {
	t := time.NewTicker(h.pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.pingInterval)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("client ping failed", zap.Error(err))
					_ = conn.Close(websocket.StatusGoingAway, "client ping failed")
				}
				return
			}
		}
	}
}
