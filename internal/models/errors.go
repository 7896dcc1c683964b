package models

import "errors"

var (
	// ErrExtractionNotFound 提取记录不存在错误
	ErrExtractionNotFound = errors.New("extraction not found")
)
