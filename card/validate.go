package card

import (
	"unicode/utf8"

	"github.com/ByLCY/captioncard/errors"
)

// Validate 在绘制前检查致命的输入错误，返回 INVALID_INPUT。
func (r Request) Validate() error {
	if !utf8.ValidString(r.Text) {
		return errors.New(errors.ErrInvalidInput, "文本不是有效的 UTF-8 字符串")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return errors.Newf(errors.ErrInvalidInput, "画布尺寸必须为正数: %dx%d", r.Width, r.Height).
			WithDetail("width", r.Width).
			WithDetail("height", r.Height)
	}
	return r.Background.Validate()
}

// Validate checks the background on its own.
func (b Background) Validate() error {
	switch b.Kind {
	case "", BackgroundSolid:
		return validateLiteral("background.color", b.Color)
	case BackgroundGradient:
		if len(b.Colors) < 2 {
			return errors.Newf(errors.ErrInvalidInput, "渐变背景至少需要 2 种颜色，实际 %d", len(b.Colors))
		}
		for _, c := range b.Colors {
			if err := validateLiteral("background.colors", c); err != nil {
				return err
			}
		}
		return nil
	case BackgroundImage:
		return validateLiteral("background.overlayColor", b.OverlayColor)
	default:
		return errors.Newf(errors.ErrInvalidInput, "未知背景类型 %q", b.Kind)
	}
}

// validateLiteral 只校验 #hex 字面量；色板 ID 留给样式解析阶段降级处理。
func validateLiteral(field, value string) error {
	if !IsHexColor(value) {
		return nil
	}
	if _, err := ParseHex(value); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "%s 颜色格式错误", field)
	}
	return nil
}

// Normalize 为零值的可选字段填入默认值，并把未知枚举值归为默认值。
func (r Request) Normalize() Request {
	out := r
	if _, ok := out.TextSize.Multiplier(); !ok {
		out.TextSize = SizeMD
	}
	if out.LineSpacing <= 0 {
		out.LineSpacing = DefaultLineSpacing
	}
	switch out.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		out.Align = AlignCenter
	}
	switch out.VerticalAlign {
	case VAlignTop, VAlignCenter, VAlignBottom:
	default:
		out.VerticalAlign = VAlignCenter
	}
	switch out.Shapes {
	case ShapesCircles, ShapesSquares, ShapesLines:
	default:
		out.Shapes = ShapesNone
	}
	if out.Background.Kind == "" {
		out.Background.Kind = BackgroundSolid
	}
	if out.Background.Scale <= 0 {
		out.Background.Scale = 1
	}
	if out.StrokeWidth < 0 {
		out.StrokeWidth = 0
	}
	return out
}
