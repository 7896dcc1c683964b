package document

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/fyerfyer/pickup-extractor/internal/pickup"
)

// ErrUnsupportedType 不支持的文档类型
var ErrUnsupportedType = errors.New("unsupported document type")

// Parser 文档解析器接口
// 负责将上传的脚本文件转换为提取器的输入：纯文本和格式化片段
type Parser interface {
	// ParseReader 从Reader解析文档，filename作为文档名
	ParseReader(r io.Reader, filename string) (pickup.Document, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ParserFactory 解析器工厂函数，根据文件类型创建对应的解析器
func ParserFactory(filename string) (Parser, error) {
	switch DetectContentType(filename) {
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}

// DetectContentType 根据文件扩展名检测内容类型
func DetectContentType(filename string) ContentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return Markdown
	case ".txt", ".text":
		return PlainText
	default:
		return Unknown
	}
}

// unitLen 返回字符串的UTF-16码元数，与片段偏移的单位一致
func unitLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
