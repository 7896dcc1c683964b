package pickup

// Merge 合并方括号标注和格式化标注并按文本去重
// 方括号标注总在前面；相同highlightedText只保留第一次出现的记录，不重新编号
// 第二个返回值为被丢弃的重复记录数
func Merge(brackets, formatted []Annotation) ([]Annotation, int) {
	merged := make([]Annotation, 0, len(brackets)+len(formatted))
	seen := make(map[string]struct{}, len(brackets)+len(formatted))
	dropped := 0

	for _, group := range [][]Annotation{brackets, formatted} {
		for _, p := range group {
			if _, ok := seen[p.HighlightedText]; ok {
				dropped++
				continue
			}
			seen[p.HighlightedText] = struct{}{}
			merged = append(merged, p)
		}
	}

	return merged, dropped
}
