package canvasrenderer

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/captioncard/card"
)

// Rand 是装饰图形的随机源，测试中可注入固定序列。
type Rand interface {
	Float64() float64
}

// lockedRand 让 Options.Rand 可被并发的渲染调用共享。
type lockedRand struct {
	mu  sync.Mutex
	src Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// 装饰图形数量与线宽。
const (
	circleCount   = 8
	squareCount   = 6
	lineCount     = 10
	lineWidth     = 2.0
	shapeOpacity  = 0.1
	defaultSeedLo = 0x9E3779B97F4A7C15
)

// newRand 为单次生成创建确定性的随机源。
func newRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, defaultSeedLo))
}

// drawShapes 绘制纯装饰图形，不影响排版。
func (s *surface) drawShapes(kind card.ShapeKind, col card.Color, rnd Rand) {
	if kind == card.ShapesNone || kind == "" {
		return
	}
	c := toRGBA(col)
	minSide := math.Min(s.width, s.height)
	switch kind {
	case card.ShapesCircles:
		s.ctx.SetFillColor(c)
		s.ctx.SetStrokeColor(canvas.Transparent)
		for i := 0; i < circleCount; i++ {
			cx := rnd.Float64() * s.width
			cy := rnd.Float64() * s.height
			radius := minSide * (0.03 + rnd.Float64()*0.12)
			s.ctx.DrawPath(cx, s.flipY(cy), canvas.Circle(radius))
		}
	case card.ShapesSquares:
		s.ctx.SetFillColor(c)
		s.ctx.SetStrokeColor(canvas.Transparent)
		for i := 0; i < squareCount; i++ {
			size := minSide * (0.05 + rnd.Float64()*0.15)
			x := rnd.Float64() * (s.width - size)
			y := rnd.Float64() * (s.height - size)
			// 屏幕坐标左上角 → 画布坐标左下角
			s.ctx.DrawPath(x, s.flipY(y+size), canvas.Rectangle(size, size))
		}
	case card.ShapesLines:
		// 10 条等距 45° 斜线，覆盖整张画布
		s.ctx.SetFillColor(canvas.Transparent)
		s.ctx.SetStrokeColor(c)
		s.ctx.SetStrokeWidth(lineWidth)
		span := s.width + s.height
		for i := 0; i < lineCount; i++ {
			x0 := (float64(i)+0.5)*span/lineCount - s.height
			p := &canvas.Path{}
			p.MoveTo(x0, 0)
			p.LineTo(x0+s.height, s.height)
			s.ctx.DrawPath(0, 0, p)
		}
	}
}

// shapeColor 默认白色；不透明的颜色统一降为 10% 不透明度，带 alpha 的 #rrggbbaa 保持原样。
func (s *surface) shapeColor(value string) card.Color {
	c := s.color(value, card.White)
	if c.A == 0xFF {
		c = c.WithAlpha(shapeOpacity)
	}
	return c
}
