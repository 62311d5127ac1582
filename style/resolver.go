package style

import (
	"github.com/rs/zerolog"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/catalog"
	"github.com/ByLCY/captioncard/errors"
)

// Presets is the slice of the preset catalog the resolver needs.
type Presets interface {
	Font(id string) (catalog.Font, bool)
	DefaultFontDescriptor() catalog.Font
	Color(id string) (card.Color, bool)
}

var _ Presets = (*catalog.Catalog)(nil)

// Resolved 是某一段落合并覆盖项之后的最终样式。
type Resolved struct {
	Font      catalog.Font  `json:"font"`
	Color     card.Color    `json:"color"`
	TextSize  card.TextSize `json:"textSize"`
	FontSize  float64       `json:"fontSize"`
	Bold      bool          `json:"bold"`
	Italic    bool          `json:"italic"`
	Underline bool          `json:"underline"`
	Stroke    bool          `json:"stroke"`
}

// Resolver 对每个段落执行 override → 全局 → 硬默认值 的逐字段回退。
type Resolver struct {
	presets   Presets
	overrides map[int]card.LineOverride
	base      float64
	global    Resolved
	logger    zerolog.Logger
}

// NewResolver 解析请求的全局样式。req 应已经过 Normalize。
func NewResolver(req card.Request, presets Presets, logger zerolog.Logger) *Resolver {
	r := &Resolver{
		presets:   presets,
		overrides: req.LineOverrides,
		base:      BaseFontSize(req.Text, float64(req.Width)),
		logger:    logger,
	}

	// 全局值的回退目标是硬默认值
	font := presets.DefaultFontDescriptor()
	if req.FontID != "" {
		font = r.lookupFont(req.FontID, font)
	}
	size := req.TextSize
	if _, ok := size.Multiplier(); !ok {
		size = card.SizeMD
	}
	r.global = Resolved{
		Font:      font,
		Color:     r.Color(req.TextColor, card.White),
		TextSize:  size,
		FontSize:  r.base * SizeMultiplier(size),
		Bold:      req.Bold,
		Italic:    req.Italic,
		Underline: req.Underline,
		Stroke:    req.Stroke,
	}
	return r
}

// BaseFontSize returns the request-wide base size before the per-line multiplier.
func (r *Resolver) BaseFontSize() float64 { return r.base }

// Global returns the request-wide resolved style.
func (r *Resolver) Global() Resolved { return r.global }

// Resolve 返回第 paragraph 段的样式；未知的字体或颜色 ID 回退到全局值。
func (r *Resolver) Resolve(paragraph int) Resolved {
	out := r.global
	o, ok := r.overrides[paragraph]
	if !ok {
		return out
	}
	if o.FontID != nil {
		out.Font = r.lookupFont(*o.FontID, r.global.Font)
	}
	if o.Color != nil {
		out.Color = r.Color(*o.Color, r.global.Color)
	}
	if o.TextSize != nil {
		if _, known := o.TextSize.Multiplier(); known {
			out.TextSize = *o.TextSize
		} else {
			r.unknown("textSize", string(*o.TextSize))
		}
	}
	if o.Bold != nil {
		out.Bold = *o.Bold
	}
	if o.Italic != nil {
		out.Italic = *o.Italic
	}
	if o.Underline != nil {
		out.Underline = *o.Underline
	}
	if o.Stroke != nil {
		out.Stroke = *o.Stroke
	}
	out.FontSize = r.base * SizeMultiplier(out.TextSize)
	return out
}

// Color 解析 #hex 字面量或色板 ID；空值、格式错误与未知 ID 都返回 fallback。
func (r *Resolver) Color(value string, fallback card.Color) card.Color {
	if value == "" {
		return fallback
	}
	if card.IsHexColor(value) {
		c, err := card.ParseHex(value)
		if err != nil {
			r.unknown("color", value)
			return fallback
		}
		return c
	}
	if c, ok := r.presets.Color(value); ok {
		return c
	}
	r.unknown("color", value)
	return fallback
}

func (r *Resolver) lookupFont(id string, fallback catalog.Font) catalog.Font {
	if f, ok := r.presets.Font(id); ok {
		return f
	}
	r.unknown("font", id)
	return fallback
}

// unknown 记录降级；UNKNOWN_STYLE_ID 从不返回给调用方。
func (r *Resolver) unknown(kind, id string) {
	r.logger.Debug().
		Str("code", string(errors.ErrUnknownStyleID)).
		Str("kind", kind).
		Str("id", id).
		Msg("unknown style id, using fallback")
}
