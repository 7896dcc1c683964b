package pickup

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingContent 缺少plainText或formattedText
	ErrMissingContent = errors.New("missing document content")

	// ErrExtractionFailed 提取过程失败
	ErrExtractionFailed = errors.New("extraction failed")
)

// ExtractionError 提取失败的详细信息
type ExtractionError struct {
	Detail string // 可读的错误描述
}

// Error 实现error接口
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExtractionFailed.Error(), e.Detail)
}

// Is 使errors.Is(err, ErrExtractionFailed)成立
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// NewExtractionError 创建提取错误
func NewExtractionError(format string, args ...interface{}) *ExtractionError {
	return &ExtractionError{Detail: fmt.Sprintf(format, args...)}
}
