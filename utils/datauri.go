package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingSeparator = errors.New("data uri must contain exactly one ','")

// DecodeDataURI 拆分 "data:image/png;base64,<b64>" 并解码正文
func DecodeDataURI(uri string) ([]byte, error) {
	if strings.Count(uri, ",") != 1 {
		return nil, ErrMissingSeparator
	}
	_, body, _ := strings.Cut(uri, ",")

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 body: %w", err)
	}
	return data, nil
}

// EncodeDataURI 生成指定 MIME 类型的 data URI
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
