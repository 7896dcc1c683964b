package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/jung-kurt/gofpdf"
)

// Format 标注清单输出格式
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// ErrUnknownFormat 不支持的输出格式
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat 解析输出格式，空字符串视为markdown
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// ContentType 返回格式对应的MIME类型
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension 返回格式对应的文件扩展名
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatPDF:
		return ".pdf"
	default:
		return ".md"
	}
}

// Renderer 标注清单渲染器
type Renderer struct {
	title  string // 标题
	author string // PDF作者信息
}

// Option 渲染器配置选项
type Option func(*Renderer)

// WithTitle 设置标题
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithAuthor 设置作者
func WithAuthor(author string) Option {
	return func(r *Renderer) {
		r.author = author
	}
}

// NewRenderer 创建渲染器
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		title: "Pickup Sheet",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render 按指定格式将标注清单写入w
func (r *Renderer) Render(w io.Writer, result *pickup.Result, format Format) error {
	switch format {
	case FormatMarkdown:
		_, err := w.Write(r.Markdown(result))
		return err
	case FormatHTML:
		_, err := w.Write(r.HTML(result))
		return err
	case FormatPDF:
		return r.PDF(result, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Markdown 生成Markdown格式的标注清单
func (r *Renderer) Markdown(result *pickup.Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", escape(r.title))
	for _, line := range r.header(result) {
		fmt.Fprintf(&buf, "- **%s:** %s\n", line[0], escape(line[1]))
	}
	buf.WriteString("\n")

	if result == nil || len(result.Pickups) == 0 {
		buf.WriteString("_No pickups found._\n")
		return buf.Bytes()
	}

	for i, p := range result.Pickups {
		fmt.Fprintf(&buf, "## %d. %s\n\n", i+1, escape(p.HighlightedText))
		fmt.Fprintf(&buf, "*%s / %s*\n\n", p.AnnotationType, p.AnnotationSubtype)
		if p.Context != "" {
			for _, line := range strings.Split(p.Context, "\n") {
				fmt.Fprintf(&buf, "> %s\n", escape(line))
			}
			buf.WriteString("\n")
		}
	}
	return buf.Bytes()
}

// HTML 生成完整的HTML页面
func (r *Renderer) HTML(result *pickup.Result) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(r.Markdown(result), p, renderer)
}

// PDF 生成A4格式的PDF标注清单
func (r *Renderer) PDF(result *pickup.Result, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(r.title, true)
	if r.author != "" {
		pdf.SetAuthor(r.author, true)
	}
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 10, tr(r.title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range r.header(result) {
		pdf.MultiCell(0, 6, tr(line[0]+": "+line[1]), "", "L", false)
	}
	pdf.Ln(4)

	if result == nil || len(result.Pickups) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, "No pickups found.", "", "L", false)
	} else {
		for i, p := range result.Pickups {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, p.HighlightedText)), "", "L", false)

			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s / %s", p.AnnotationType, p.AnnotationSubtype)), "", "L", false)

			if p.Context != "" {
				pdf.SetFont("Helvetica", "", 10)
				pdf.SetTextColor(90, 90, 90)
				pdf.MultiCell(0, 5, tr(p.Context), "L", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Ln(3)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// header 返回清单头部的字段
func (r *Renderer) header(result *pickup.Result) [][2]string {
	var docName, talent string
	count := 0
	if result != nil {
		docName = result.DocumentName
		talent = result.TalentName
		count = len(result.Pickups)
	}
	if docName == "" {
		docName = "-"
	}
	if talent == "" {
		talent = "-"
	}
	return [][2]string{
		{"Document", docName},
		{"Talent", talent},
		{"Pickups", fmt.Sprintf("%d", count)},
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
)

// escape 转义Markdown特殊字符
func escape(s string) string {
	return markdownEscaper.Replace(s)
}
