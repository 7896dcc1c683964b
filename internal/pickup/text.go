package pickup

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// plainText 以UTF-16码元为单位索引的纯文本
type plainText struct {
	raw   string
	units []uint16

	// 字节偏移到UTF-16偏移换算的游标，按递增顺序查询时避免重复扫描
	cursorByte int
	cursorUnit int
}

func newPlainText(s string) *plainText {
	return &plainText{
		raw:   s,
		units: utf16.Encode([]rune(s)),
	}
}

// Len 文本长度（UTF-16码元）
func (t *plainText) Len() int {
	return len(t.units)
}

// unitOffset 将字节偏移换算为UTF-16偏移
func (t *plainText) unitOffset(byteIdx int) int {
	if byteIdx < t.cursorByte {
		t.cursorByte, t.cursorUnit = 0, 0
	}
	for _, r := range t.raw[t.cursorByte:byteIdx] {
		t.cursorUnit += utf16.RuneLen(r)
	}
	t.cursorByte = byteIdx
	return t.cursorUnit
}

// window 返回[start-radius, end+radius]范围内的文本，已裁剪并去除首尾空白
func (t *plainText) window(start, end, radius int) string {
	from := clamp(start-radius, 0, t.Len())
	to := clamp(end+radius, 0, t.Len())
	if to <= from {
		return ""
	}
	return trimText(string(utf16.Decode(t.units[from:to])))
}

// trimText 去除首尾空白，空白字符集与浏览器脚本的trim一致：
// 包含BOM和行分隔符，不包含U+0085
func trimText(s string) string {
	return strings.TrimFunc(s, isTrimSpace)
}

func isTrimSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
