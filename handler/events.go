package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/TIANLI0/MaskBlur/model"
	"github.com/TIANLI0/MaskBlur/utils"
	"go.uber.org/zap"
)

// EventFunc 处理一个事件，返回响应事件名和数据
type EventFunc func(ctx context.Context, data json.RawMessage) (string, any, error)

// EventServer 持有事件到处理函数的映射，启动时构建一次
type EventServer struct {
	handlers map[string]EventFunc
}

func NewEventServer() *EventServer {
	return &EventServer{handlers: make(map[string]EventFunc)}
}

// On 注册事件处理函数，重复注册会覆盖
func (s *EventServer) On(event string, fn EventFunc) {
	s.handlers[event] = fn
}

// Events 已注册的事件数
func (s *EventServer) Events() int {
	return len(s.handlers)
}

// Dispatch 调用事件对应的处理函数，处理函数返回的错误转为 error 事件
func (s *EventServer) Dispatch(ctx context.Context, event, id string, data json.RawMessage) *model.Envelope {
	fn, ok := s.handlers[event]
	if !ok {
		err := model.NewError(model.InvalidPayload, "未知事件: "+event, nil)
		return errorEnvelope(id, err)
	}

	respEvent, resp, err := fn(ctx, data)
	if err != nil {
		utils.Logger.Error("event handler failed",
			zap.String("event", event),
			zap.String("kind", model.KindOf(err).String()),
			zap.Error(err))
		return errorEnvelope(id, err)
	}

	return &model.Envelope{Event: respEvent, ID: id, Data: resp}
}

func errorEnvelope(id string, err error) *model.Envelope {
	resp := model.ErrorResponse{
		Success: false,
		Kind:    model.KindOf(err).String(),
		Message: err.Error(),
	}
	var me *model.MaskError
	if errors.As(err, &me) {
		resp.Message = me.Message
		if me.Err != nil {
			resp.Error = me.Err.Error()
		}
	}
	return &model.Envelope{Event: model.EventError, ID: id, Data: resp}
}
