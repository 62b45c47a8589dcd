package utils

import "github.com/google/uuid"

// GenerateID 生成连接ID
func GenerateID() string {
	return uuid.NewString()
}
