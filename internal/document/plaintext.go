package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/pickup-extractor/internal/pickup"
)

// PlainTextParser 纯文本解析器
// 纯文本没有格式信息，只能提取方括号标注
type PlainTextParser struct{}

// NewPlainTextParser 创建一个新的纯文本解析器
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// ParseReader 从Reader读取纯文本
func (p *PlainTextParser) ParseReader(r io.Reader, filename string) (pickup.Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return pickup.Document{}, fmt.Errorf("failed to read text file: %w", err)
	}

	// 统一换行符
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	return pickup.Document{
		DocumentName:  filename,
		PlainText:     text,
		FormattedText: []pickup.Segment{},
	}, nil
}
