package canvasrenderer

import (
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/layout"
)

// 下划线位置与粗细相对字号的比例。
const (
	underlineOffset    = 0.15
	underlineThickness = 0.05
	underlineMin       = 2.0
)

// glyphRun 是一行文字的轮廓路径及其绘制宽度（均为像素）。
type glyphRun struct {
	path  *canvas.Path
	width float64
}

// shapeLine 生成一行文字的轮廓。字间距非零时逐字排布，每个字后追加间距。
func (s *surface) shapeLine(face *canvas.FontFace, content string) (glyphRun, error) {
	if content == "" {
		return glyphRun{path: &canvas.Path{}}, nil
	}
	if s.letterSpacing == 0 {
		p, _, err := face.ToPath(content)
		if err != nil {
			return glyphRun{}, err
		}
		return glyphRun{path: p, width: face.TextWidth(content)}, nil
	}
	out := &canvas.Path{}
	x := 0.0
	for _, ch := range content {
		g := string(ch)
		p, _, err := face.ToPath(g)
		if err != nil {
			return glyphRun{}, err
		}
		out = out.Append(p.Translate(x, 0))
		x += face.TextWidth(g) + s.letterSpacing
	}
	return glyphRun{path: out, width: x}, nil
}

// drawLine 绘制一条 RenderLine：描边（可选）→ 填充 → 下划线（可选）。
// 字间距是作用域内的绘制状态，函数返回时恢复。
func (r *Renderer) drawLine(s *surface, res *layout.Result, ln layout.RenderLine, stroke strokeStyle, letterSpacing float64) error {
	restore := s.push(letterSpacing)
	defer restore()

	st := ln.Style
	face, err := r.fonts.face(layout.FaceOf(st), toRGBA(st.Color))
	if err != nil {
		return err
	}
	run, err := s.shapeLine(face, ln.Content)
	if err != nil {
		return err
	}
	left, _ := res.Extent(run.width)
	baseline := s.flipY(ln.Baseline)

	if st.Stroke && stroke.width > 0 && !run.path.Empty() {
		s.ctx.SetFillColor(canvas.Transparent)
		s.ctx.SetStrokeColor(toRGBA(stroke.color))
		s.ctx.SetStrokeWidth(stroke.width)
		s.ctx.DrawPath(left, baseline, run.path)
	}

	s.ctx.SetFillColor(toRGBA(st.Color))
	s.ctx.SetStrokeColor(canvas.Transparent)
	if !run.path.Empty() {
		s.ctx.DrawPath(left, baseline, run.path)
	}

	if st.Underline && run.width > 0 {
		thickness := math.Max(underlineMin, underlineThickness*st.FontSize)
		top := ln.Baseline + underlineOffset*st.FontSize
		s.ctx.DrawPath(left, s.flipY(top+thickness), canvas.Rectangle(run.width, thickness))
	}
	return nil
}

type strokeStyle struct {
	color card.Color
	width float64
}
