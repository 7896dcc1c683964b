package pickup

import "time"

// Rule 格式化片段的分类规则
type Rule struct {
	Name    string             // 规则名称，用于日志
	Match   func(Segment) bool // 判定条件
	Type    AnnotationType     // 命中后的类型
	Subtype AnnotationSubtype  // 命中后的子类型
}

// Rules 按优先级排列的分类规则，先命中者生效
// 同时加粗和高亮的片段归为加粗
var Rules = []Rule{
	{
		Name:    "bold",
		Match:   func(s Segment) bool { return s.IsBold },
		Type:    TypeBold,
		Subtype: SubtypeBoldText,
	},
	{
		Name:    "underline",
		Match:   func(s Segment) bool { return s.IsUnderline },
		Type:    TypeUnderline,
		Subtype: SubtypeUnderlineText,
	},
	{
		Name:    "highlight",
		Match:   Segment.HasBackground,
		Type:    TypeHighlight,
		Subtype: SubtypeBackgroundColor,
	},
}

// Classify 返回片段命中的第一条规则
func Classify(seg Segment) (Rule, bool) {
	return classifyWith(Rules, seg)
}

func classifyWith(rules []Rule, seg Segment) (Rule, bool) {
	for _, rule := range rules {
		if rule.Match(seg) {
			return rule, true
		}
	}
	return Rule{}, false
}

// ClassifySegments 按输入顺序把格式化片段转换为标注
// 未命中任何规则的片段直接忽略；解码异常或文本为空的片段计入第二个返回值
func ClassifySegments(text string, segments []Segment, now func() time.Time) ([]Annotation, int) {
	return classifySegments(newPlainText(text), segments, Rules, DefaultContextRadius, now)
}

func classifySegments(text *plainText, segments []Segment, rules []Rule, radius int, now func() time.Time) ([]Annotation, int) {
	pickups := make([]Annotation, 0, len(segments))
	skipped := 0

	for _, seg := range segments {
		if seg.Malformed {
			skipped++
			continue
		}

		rule, ok := classifyWith(rules, seg)
		if !ok {
			continue
		}

		highlighted := trimText(seg.Text)
		if highlighted == "" {
			skipped++
			continue
		}

		seg = seg.Normalize(text.Len())
		pickups = append(pickups, Annotation{
			ID:                len(pickups) + 1,
			HighlightedText:   highlighted,
			Context:           text.window(seg.StartIndex, seg.EndIndex, radius),
			AnnotationType:    rule.Type,
			AnnotationSubtype: rule.Subtype,
			Timestamp:         now(),
		})
	}

	return pickups, skipped
}
