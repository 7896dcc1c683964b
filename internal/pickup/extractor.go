package pickup

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Extractor 标注提取器
// 构造后不再修改，可被多个请求并发使用；每次调用的状态都在调用内部创建
type Extractor struct {
	now      func() time.Time    // 时钟
	radius   int                 // 上下文窗口单侧长度
	rules    []Rule              // 片段分类规则
	validate *validator.Validate // 输入校验器
	logger   *logrus.Logger      // 日志记录器
}

// Option 提取器配置选项
type Option func(*Extractor)

// WithClock 设置时间来源
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithContextRadius 设置上下文窗口单侧长度
func WithContextRadius(radius int) Option {
	return func(e *Extractor) {
		if radius >= 0 {
			e.radius = radius
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor 创建提取器
func NewExtractor(opts ...Option) *Extractor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Extractor{
		now:      func() time.Time { return time.Now().UTC() },
		radius:   DefaultContextRadius,
		rules:    Rules,
		validate: validator.New(),
		logger:   discard,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Validate 检查文档是否包含必需的内容
func (e *Extractor) Validate(doc Document) error {
	if err := e.validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingContent, verrs[0].Field())
		}
		return fmt.Errorf("%w: %v", ErrMissingContent, err)
	}
	return nil
}

// Extract 从文档中提取标注
// 先扫描方括号，再分类格式化片段，最后合并去重
func (e *Extractor) Extract(doc Document) (result *Result, err error) {
	if err := e.Validate(doc); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"document_name": doc.DocumentName,
				"panic":         r,
			}).Error("Pickup extraction panicked")
			result = nil
			err = NewExtractionError("%v", r)
		}
	}()

	text := newPlainText(doc.PlainText)

	brackets := scanBrackets(text, e.radius, e.now)
	formatted, skipped := classifySegments(text, doc.FormattedText, e.rules, e.radius, e.now)
	pickups, dropped := Merge(brackets, formatted)

	if skipped > 0 {
		e.logger.WithFields(logrus.Fields{
			"document_name": doc.DocumentName,
			"skipped":       skipped,
		}).Warn("Skipped malformed formatted segments")
	}

	return &Result{
		DocumentName: doc.DocumentName,
		TalentName:   doc.TalentName,
		Pickups:      pickups,
		Stats: Stats{
			BracketCount:    len(brackets),
			FormattedCount:  len(formatted),
			DuplicateCount:  dropped,
			SkippedSegments: skipped,
		},
	}, nil
}
