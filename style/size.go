package style

import (
	"unicode/utf8"

	"github.com/ByLCY/captioncard/card"
)

// BaseFontSize 按整段文本的字符数估算基础字号（像素）。
// 以 rune 计数，多字节字符与 ASCII 一样各算一个。
func BaseFontSize(text string, width float64) float64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n < 20:
		return width * 0.08
	case n < 50:
		return width * 0.06
	case n < 100:
		return width * 0.05
	default:
		return width * 0.04
	}
}

// SizeMultiplier returns the factor for id, 1.0 for unknown ids.
func SizeMultiplier(id card.TextSize) float64 {
	if m, ok := id.Multiplier(); ok {
		return m
	}
	return 1.0
}
