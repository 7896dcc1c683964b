package pickup

import "time"

// AnnotationType 标注类型
type AnnotationType string

const (
	TypeBracket   AnnotationType = "bracket"   // 方括号标注
	TypeBold      AnnotationType = "bold"      // 加粗文本
	TypeUnderline AnnotationType = "underline" // 下划线文本
	TypeHighlight AnnotationType = "highlight" // 背景色高亮
)

// AnnotationSubtype 标注子类型
type AnnotationSubtype string

const (
	SubtypeSquareBrackets  AnnotationSubtype = "square-brackets"
	SubtypeBoldText        AnnotationSubtype = "bold-text"
	SubtypeUnderlineText   AnnotationSubtype = "underline-text"
	SubtypeBackgroundColor AnnotationSubtype = "background-color"
)

// DefaultContextRadius 上下文窗口单侧默认长度（UTF-16码元）
const DefaultContextRadius = 100

// Segment 调用方提供的格式化片段
// 偏移量以UTF-16码元计，与上游脚本的字符串索引保持一致
type Segment struct {
	Text            string  `json:"text"`                      // 片段文本
	StartIndex      int     `json:"startIndex"`                // 起始偏移
	EndIndex        int     `json:"endIndex"`                  // 结束偏移
	IsBold          bool    `json:"isBold,omitempty"`          // 是否加粗
	IsUnderline     bool    `json:"isUnderline,omitempty"`     // 是否带下划线
	BackgroundColor *string `json:"backgroundColor,omitempty"` // 背景色，存在即视为高亮

	// Malformed 解码时有字段类型不符，提取时跳过
	Malformed bool `json:"malformed,omitempty"`
}

// HasBackground 片段是否带有非空背景色
func (s Segment) HasBackground() bool {
	return s.BackgroundColor != nil && *s.BackgroundColor != ""
}

// Normalize 将偏移量收敛到[0, length]区间
// 起止颠倒时把区间收缩到起点
func (s Segment) Normalize(length int) Segment {
	s.StartIndex = clamp(s.StartIndex, 0, length)
	s.EndIndex = clamp(s.EndIndex, 0, length)
	if s.EndIndex < s.StartIndex {
		s.EndIndex = s.StartIndex
	}
	return s
}

// Annotation 提取出的标注记录（pickup）
type Annotation struct {
	ID                int               `json:"id"`                // 批次内序号，从1开始
	HighlightedText   string            `json:"highlightedText"`   // 提取的文本，已去除首尾空白
	Context           string            `json:"context"`           // 前后文
	AnnotationType    AnnotationType    `json:"annotationType"`    // 标注类型
	AnnotationSubtype AnnotationSubtype `json:"annotationSubtype"` // 标注子类型
	Timestamp         time.Time         `json:"timestamp"`         // 提取时间，仅供参考
}

// Document 一次提取请求的输入
type Document struct {
	DocumentName  string    `json:"documentName,omitempty"`
	TalentName    string    `json:"talentName,omitempty"`
	PlainText     string    `json:"plainText" validate:"required"`
	FormattedText []Segment `json:"formattedText" validate:"required"`
}

// Stats 提取统计
type Stats struct {
	BracketCount    int `json:"bracketCount"`    // 方括号标注数
	FormattedCount  int `json:"formattedCount"`  // 格式化标注数
	DuplicateCount  int `json:"duplicateCount"`  // 去重丢弃数
	SkippedSegments int `json:"skippedSegments"` // 被跳过的异常片段数
}

// Result 一次提取的输出
type Result struct {
	DocumentName string       `json:"documentName,omitempty"`
	TalentName   string       `json:"talentName,omitempty"`
	Pickups      []Annotation `json:"pickups"`
	Stats        Stats        `json:"stats"`
}

// CountByType 按标注类型统计结果
func (r *Result) CountByType() map[AnnotationType]int {
	counts := make(map[AnnotationType]int)
	for _, p := range r.Pickups {
		counts[p.AnnotationType]++
	}
	return counts
}
