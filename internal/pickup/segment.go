package pickup

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// rawSegment 片段的原始JSON字段，类型在解码后再判断
type rawSegment struct {
	Text            json.RawMessage `json:"text"`
	StartIndex      json.RawMessage `json:"startIndex"`
	EndIndex        json.RawMessage `json:"endIndex"`
	IsBold          json.RawMessage `json:"isBold"`
	IsUnderline     json.RawMessage `json:"isUnderline"`
	BackgroundColor json.RawMessage `json:"backgroundColor"`
}

// UnmarshalJSON 宽松解码片段，字段类型不符时不返回错误，只把片段标记为异常
// 格式标记按真值解释：非零数字、非空字符串、对象和数组都视为true
func (s *Segment) UnmarshalJSON(data []byte) error {
	*s = Segment{}

	var raw rawSegment
	if err := json.Unmarshal(data, &raw); err != nil || isNull(data) {
		s.Malformed = true
		return nil
	}

	text, ok := decodeText(raw.Text)
	s.Text = text
	if start, valid := decodeOffset(raw.StartIndex); valid {
		s.StartIndex = start
	} else {
		ok = false
	}
	if end, valid := decodeOffset(raw.EndIndex); valid {
		s.EndIndex = end
	} else {
		ok = false
	}
	s.IsBold = truthy(raw.IsBold)
	s.IsUnderline = truthy(raw.IsUnderline)
	s.BackgroundColor = decodeColor(raw.BackgroundColor)
	s.Malformed = !ok

	return nil
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// decodeText 缺失或null时为空字符串，其他非字符串类型视为异常
func decodeText(v json.RawMessage) (string, bool) {
	if isNull(v) {
		return "", true
	}
	var text string
	if err := json.Unmarshal(v, &text); err != nil {
		return "", false
	}
	return text, true
}

// decodeOffset 缺失或null时为0；小数向零取整；非数字视为异常
func decodeOffset(v json.RawMessage) (int, bool) {
	if isNull(v) {
		return 0, true
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	f = math.Max(math.Min(math.Trunc(f), math.MaxInt32), math.MinInt32)
	return int(f), true
}

func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if isNull(v) {
		return false
	}
	switch v[0] {
	case 't':
		return true
	case 'f':
		return false
	case '"':
		return len(v) > 2
	case '{', '[':
		return true
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && f != 0
	}
}

// decodeColor 字符串原样保留；其他为真的值保留其JSON文本，仍视为高亮
func decodeColor(v json.RawMessage) *string {
	if !truthy(v) {
		return nil
	}
	var color string
	if err := json.Unmarshal(v, &color); err != nil {
		color = string(bytes.TrimSpace(v))
	}
	return &color
}
