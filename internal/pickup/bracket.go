package pickup

import (
	"regexp"
	"time"
)

// bracketPattern 非贪婪匹配方括号内的内容，不跨越任何行结束符
var bracketPattern = regexp.MustCompile(`\[([^\n\r\x{2028}\x{2029}]*?)\]`)

// ScanBrackets 扫描纯文本中的方括号标注
// 按从左到右的顺序返回，序号从1开始且连续，空白内容不占用序号
func ScanBrackets(text string, now func() time.Time) []Annotation {
	return scanBrackets(newPlainText(text), DefaultContextRadius, now)
}

func scanBrackets(text *plainText, radius int, now func() time.Time) []Annotation {
	matches := bracketPattern.FindAllStringSubmatchIndex(text.raw, -1)
	pickups := make([]Annotation, 0, len(matches))

	id := 0
	for _, m := range matches {
		// m[0],m[1]为整体匹配，m[2],m[3]为括号内的分组
		inner := trimText(text.raw[m[2]:m[3]])
		if inner == "" {
			continue
		}

		start := text.unitOffset(m[0])
		end := text.unitOffset(m[1])

		id++
		pickups = append(pickups, Annotation{
			ID:                id,
			HighlightedText:   inner,
			Context:           text.window(start, end, radius),
			AnnotationType:    TypeBracket,
			AnnotationSubtype: SubtypeSquareBrackets,
			Timestamp:         now(),
		})
	}

	return pickups
}
