package layout

import (
	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/style"
)

// 该文件定义布局结果，供渲染与调试 JSON 共用。坐标单位均为像素，原点在左上角。

// MaxWidthRatio 是文本可用宽度占画布宽度的比例。
const MaxWidthRatio = 0.85

// Result 保存一次排版的全部几何信息。
type Result struct {
	Width         float64            `json:"width"`
	Height        float64            `json:"height"`
	MaxWidth      float64            `json:"maxWidth"`
	BaseFontSize  float64            `json:"baseFontSize"`
	LineHeight    float64            `json:"lineHeight"`
	TotalHeight   float64            `json:"totalHeight"`
	StartY        float64            `json:"startY"`
	Align         card.Align         `json:"align"`
	VerticalAlign card.VerticalAlign `json:"verticalAlign"`
	Lines         []RenderLine       `json:"lines"`
}

// RenderLine 表示折行后的一条物理行，携带所属段落的最终样式。
type RenderLine struct {
	Paragraph int            `json:"paragraph"`
	Content   string         `json:"content"`
	Width     float64        `json:"width"`
	Baseline  float64        `json:"baseline"`
	Style     style.Resolved `json:"style"`
}

// AnchorX 按对齐方式返回水平锚点。
func (r *Result) AnchorX() float64 {
	margin := (r.Width - r.MaxWidth) / 2
	switch r.Align {
	case card.AlignLeft:
		return margin
	case card.AlignRight:
		return r.Width - margin
	default:
		return r.Width / 2
	}
}

// Extent 返回宽度为 w 的文本相对锚点的左右边界。
func (r *Result) Extent(w float64) (left, right float64) {
	anchor := r.AnchorX()
	switch r.Align {
	case card.AlignLeft:
		return anchor, anchor + w
	case card.AlignRight:
		return anchor - w, anchor
	default:
		return anchor - w/2, anchor + w/2
	}
}
