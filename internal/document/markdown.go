package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// HighlightColor <mark>标记对应的背景色
const HighlightColor = "#ffff00"

// MarkdownParser Markdown文档解析器
// 将Markdown渲染为纯文本，并把 **加粗**、<u>下划线</u>、<mark>高亮</mark> 记录为格式化片段
type MarkdownParser struct{}

// NewMarkdownParser 创建新的Markdown解析器
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// ParseReader 从Reader解析Markdown内容
func (p *MarkdownParser) ParseReader(r io.Reader, filename string) (pickup.Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return pickup.Document{}, fmt.Errorf("failed to read markdown content: %w", err)
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse(content)

	b := newTextBuilder()
	ast.WalkFunc(doc, b.visit)

	return pickup.Document{
		DocumentName:  filename,
		PlainText:     strings.TrimRight(b.buf.String(), "\n"),
		FormattedText: b.segments,
	}, nil
}

// span 尚未闭合的格式区间
type span struct {
	depth int // 嵌套层数，只有最外层生成片段
	start int // 起始UTF-16偏移
	from  int // 起始字节偏移
}

// textBuilder 遍历AST时累积纯文本和片段
type textBuilder struct {
	buf      strings.Builder
	units    int
	segments []pickup.Segment

	bold      span
	underline span
	highlight span
}

func newTextBuilder() *textBuilder {
	return &textBuilder{segments: []pickup.Segment{}}
}

func (b *textBuilder) write(s string) {
	b.buf.WriteString(s)
	b.units += unitLen(s)
}

// endBlock 块级元素结束时换行
func (b *textBuilder) endBlock() {
	if b.buf.Len() > 0 && !strings.HasSuffix(b.buf.String(), "\n") {
		b.write("\n")
	}
}

func (b *textBuilder) open(s *span) {
	if s.depth == 0 {
		s.start = b.units
		s.from = b.buf.Len()
	}
	s.depth++
}

// close 闭合区间，最外层闭合时返回区间文本
func (b *textBuilder) close(s *span) (pickup.Segment, bool) {
	if s.depth == 0 {
		return pickup.Segment{}, false
	}
	s.depth--
	if s.depth > 0 {
		return pickup.Segment{}, false
	}
	text := b.buf.String()[s.from:]
	if strings.TrimSpace(text) == "" {
		return pickup.Segment{}, false
	}
	return pickup.Segment{Text: text, StartIndex: s.start, EndIndex: b.units}, true
}

func (b *textBuilder) visit(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Text:
		if entering {
			b.write(string(n.Literal))
		}
	case *ast.Code:
		if entering {
			b.write(string(n.Literal))
		}
	case *ast.CodeBlock:
		if entering {
			b.write(string(n.Literal))
			b.endBlock()
		}
	case *ast.Softbreak, *ast.Hardbreak:
		if entering {
			b.write("\n")
		}
	case *ast.Strong:
		if entering {
			b.open(&b.bold)
		} else if seg, ok := b.close(&b.bold); ok {
			seg.IsBold = true
			b.segments = append(b.segments, seg)
		}
	case *ast.HTMLSpan:
		if entering {
			b.htmlTag(strings.ToLower(strings.TrimSpace(string(n.Literal))))
		}
	case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.BlockQuote, *ast.TableRow:
		if !entering {
			b.endBlock()
		}
	case *ast.TableCell:
		if !entering {
			b.write("\t")
		}
	case *ast.HTMLBlock:
		return ast.SkipChildren
	}
	return ast.GoToNext
}

// htmlTag 处理行内HTML标签，只识别 <u> 和 <mark>
func (b *textBuilder) htmlTag(tag string) {
	switch {
	case tag == "<u>":
		b.open(&b.underline)
	case tag == "</u>":
		if seg, ok := b.close(&b.underline); ok {
			seg.IsUnderline = true
			b.segments = append(b.segments, seg)
		}
	case tag == "<mark>" || strings.HasPrefix(tag, "<mark "):
		b.open(&b.highlight)
	case tag == "</mark>":
		if seg, ok := b.close(&b.highlight); ok {
			color := HighlightColor
			seg.BackgroundColor = &color
			b.segments = append(b.segments, seg)
		}
	}
}
