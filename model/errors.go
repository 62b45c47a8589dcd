package model

import "errors"

// ErrorKind 错误类别
type ErrorKind int

const (
	InvalidPayload ErrorKind = iota + 1
	PayloadTooLarge
	FilterFailure
	WriteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidPayload:
		return "invalid_payload"
	case PayloadTooLarge:
		return "payload_too_large"
	case FilterFailure:
		return "filter_failure"
	case WriteFailure:
		return "write_failure"
	default:
		return "unknown"
	}
}

// MaskError 带类别的处理错误
type MaskError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, message string, err error) *MaskError {
	return &MaskError{Kind: kind, Message: message, Err: err}
}

func (e *MaskError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *MaskError) Unwrap() error {
	return e.Err
}

// KindOf 提取错误类别，非 MaskError 视为 FilterFailure
func KindOf(err error) ErrorKind {
	var me *MaskError
	if errors.As(err, &me) {
		return me.Kind
	}
	return FilterFailure
}
