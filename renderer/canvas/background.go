package canvasrenderer

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/errors"
)

// GradientAxis 返回渐变轴的两个端点（屏幕坐标，y 向下）：
// 经过画布中心，方向为 angle 度，端点为 center ± (cos θ·W/2, sin θ·H/2)。
func GradientAxis(angle, w, h float64) (x0, y0, x1, y1 float64) {
	rad := angle * math.Pi / 180
	cx, cy := w/2, h/2
	dx, dy := math.Cos(rad)*w/2, math.Sin(rad)*h/2
	return cx - dx, cy - dy, cx + dx, cy + dy
}

// drawBackground 绘制底层。只有图片解码会挂起；解码失败时退回不透明黑色，不中断管线。
func (r *Renderer) drawBackground(ctx context.Context, s *surface, bg card.Background) error {
	switch bg.Kind {
	case card.BackgroundGradient:
		s.fillGradient(bg.Angle, s.colors(bg.Colors))
	case card.BackgroundImage:
		img, err := r.decoder.Decode(ctx, bg.Image)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// 解码失败：整张画布填充不透明黑色，继续绘制文字
			r.logger.Warn().
				Err(err).
				Str("code", string(errors.ErrAssetDecodeFailed)).
				Str("src", bg.ImageSrc).
				Msg("background image decode failed, using black")
			s.fill(card.Black)
			return nil
		}
		s.drawImage(composeImage(img, s.width, s.height, bg))
		if bg.OverlayOpacity > 0 {
			overlay := s.color(bg.OverlayColor, card.Black)
			s.fill(overlay.WithAlpha(clampPercent(bg.OverlayOpacity) / 100))
		}
	default:
		s.fill(s.color(bg.Color, defaultBackground))
	}
	return nil
}

var defaultBackground = card.Color{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF}

// composeImage 将背景图按 cover 缩放后再乘以 scale，按 position 百分比定位，
// 以 opacity 透明度叠加在不透明黑底上，返回与画布同尺寸的位图。
func composeImage(src image.Image, width, height float64, bg card.Background) *image.RGBA {
	w, h := int(math.Round(width)), int(math.Round(height))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)

	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}
	scale := bg.Scale
	if scale <= 0 {
		scale = 1
	}
	cover := math.Max(width/float64(sb.Dx()), height/float64(sb.Dy())) * scale
	iw, ih := float64(sb.Dx())*cover, float64(sb.Dy())*cover
	x := (width - iw) * bg.PositionX / 100
	y := (height - ih) * bg.PositionY / 100
	dr := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+iw)), int(math.Round(y+ih)),
	)

	opts := &xdraw.Options{}
	if alpha := clampPercent(bg.Opacity) / 100; alpha < 1 {
		opts.DstMask = image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	}
	xdraw.CatmullRom.Scale(dst, dr, src, sb, xdraw.Over, opts)
	return dst
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// fill 用单色覆盖整张画布。
func (s *surface) fill(c card.Color) {
	s.ctx.SetFillColor(toRGBA(c))
	s.ctx.SetStrokeColor(canvas.Transparent)
	s.ctx.DrawPath(0, 0, canvas.Rectangle(s.width, s.height))
}

// fillGradient 以线性渐变覆盖整张画布，色标均匀分布。
// 矩形从原点绘制，渐变坐标与画布坐标一致。
func (s *surface) fillGradient(angle float64, stops []card.Color) {
	x0, y0, x1, y1 := GradientAxis(angle, s.width, s.height)
	g := canvas.NewLinearGradient(
		canvas.Point{X: x0, Y: s.flipY(y0)},
		canvas.Point{X: x1, Y: s.flipY(y1)},
	)
	n := len(stops)
	for i, c := range stops {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		g.Add(t, toRGBA(c))
	}
	s.ctx.SetFill(g)
	s.ctx.SetStrokeColor(canvas.Transparent)
	s.ctx.DrawPath(0, 0, canvas.Rectangle(s.width, s.height))
}

// drawImage 把整幅位图按 1px = 1mm 铺满画布。
func (s *surface) drawImage(img image.Image) {
	s.ctx.DrawImage(0, 0, img, canvas.DPMM(1.0))
}
