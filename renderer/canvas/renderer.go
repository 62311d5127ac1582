package canvasrenderer

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/catalog"
	"github.com/ByLCY/captioncard/errors"
	"github.com/ByLCY/captioncard/layout"
	"github.com/ByLCY/captioncard/renderer"
	"github.com/ByLCY/captioncard/style"
)

// Presets 是渲染器需要的预设目录视图，*catalog.Catalog 满足该接口。
type Presets interface {
	style.Presets
	Background(id string) (card.Background, bool)
	Shape(id string) (card.ShapeKind, bool)
}

var (
	_ Presets           = (*catalog.Catalog)(nil)
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Logger  zerolog.Logger
	Presets Presets // nil 时使用内置目录

	// Rand 非空时所有调用共享该随机源；否则每次调用以 Seed 新建，相同请求输出相同字节。
	Rand Rand
	Seed uint64

	Format     Format
	Quality    int
	ShapeColor string // #hex 或色板 ID；为空时为 10% 不透明度的白色

	Decoder      ImageDecoder
	FontCacheTTL time.Duration
}

// rasterMu 串行化栅格化：canvas 的描边求交使用包级状态，不能并发执行。
var rasterMu sync.Mutex

// Renderer draws caption cards via github.com/tdewolff/canvas.
type Renderer struct {
	opts    Options
	logger  zerolog.Logger
	presets Presets
	decoder ImageDecoder
	fonts   *fontCache
}

// New creates a renderer. The zero Options renders JPEG with the built-in catalog.
func New(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatJPEG
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	r := &Renderer{
		opts:    opts,
		logger:  opts.Logger,
		presets: opts.Presets,
		decoder: opts.Decoder,
		fonts:   newFontCache(opts.FontCacheTTL, opts.Logger),
	}
	if r.presets == nil {
		r.presets = catalog.Default()
	}
	if r.decoder == nil {
		r.decoder = StdDecoder{}
	}
	if r.opts.Rand != nil {
		r.opts.Rand = &lockedRand{src: r.opts.Rand}
	}
	return r
}

// Frame 是一次渲染的栅格结果与对应的排版信息。
type Frame struct {
	Image  *image.RGBA
	Layout *layout.Result
}

// Generate 执行完整管线并编码输出。
func (r *Renderer) Generate(ctx context.Context, req card.Request) ([]byte, error) {
	frame, err := r.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return Encode(frame.Image, r.opts.Format, r.opts.Quality)
}

// Render 校验请求并绘制：背景 → 装饰图形 → 排版 → 文字，最后栅格化。
// 每次调用使用新的画布。
func (r *Renderer) Render(ctx context.Context, req card.Request) (*Frame, error) {
	req = r.resolvePresets(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Normalize()

	w, h := float64(req.Width), float64(req.Height)
	c := canvas.New(w, h)
	s := &surface{
		ctx:      canvas.NewContext(c),
		width:    w,
		height:   h,
		resolver: style.NewResolver(req, r.presets, r.logger),
	}

	if err := r.drawBackground(ctx, s, req.Background); err != nil {
		return nil, err
	}

	rnd := r.opts.Rand
	if rnd == nil {
		rnd = newRand(r.opts.Seed)
	}
	s.drawShapes(req.Shapes, s.shapeColor(r.opts.ShapeColor), rnd)

	res, err := layout.Build(req, layout.BuildOptions{
		Typesetter: r,
		Presets:    r.presets,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, err
	}

	stroke := strokeStyle{
		color: s.color(req.StrokeColor, card.Black),
		width: req.StrokeWidth,
	}
	for _, ln := range res.Lines {
		if err := r.drawLine(s, res, ln, stroke, req.LetterSpacing); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "绘制第 %d 段文字失败", ln.Paragraph)
		}
	}

	img := rasterize(c)
	r.logger.Debug().
		Int("width", req.Width).
		Int("height", req.Height).
		Int("lines", len(res.Lines)).
		Msg("card rendered")
	return &Frame{Image: img, Layout: res}, nil
}

func rasterize(c *canvas.Canvas) *image.RGBA {
	rasterMu.Lock()
	defer rasterMu.Unlock()
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
}

// TextWidth 实现 layout.Typesetter：返回文本在给定字体下的宽度（像素，不含字间距）。
func (r *Renderer) TextWidth(content string, face layout.FaceSpec) (float64, error) {
	f, err := r.fonts.face(face, color.Black)
	if err != nil {
		return 0, err
	}
	return f.TextWidth(content), nil
}

// resolvePresets 展开背景与装饰图形的预设 ID；未知 ID 保持请求原值。
func (r *Renderer) resolvePresets(req card.Request) card.Request {
	if req.BackgroundID != "" {
		if bg, ok := r.presets.Background(req.BackgroundID); ok {
			req.Background.Kind = bg.Kind
			req.Background.Color = bg.Color
			req.Background.Colors = bg.Colors
			req.Background.Angle = bg.Angle
		} else {
			r.unknownID("background", req.BackgroundID)
		}
	}
	switch req.Shapes {
	case "", card.ShapesNone, card.ShapesCircles, card.ShapesSquares, card.ShapesLines:
	default:
		if kind, ok := r.presets.Shape(string(req.Shapes)); ok {
			req.Shapes = kind
		} else {
			r.unknownID("shapes", string(req.Shapes))
			req.Shapes = card.ShapesNone
		}
	}
	return req
}

func (r *Renderer) unknownID(kind, id string) {
	r.logger.Debug().
		Str("code", string(errors.ErrUnknownStyleID)).
		Str("kind", kind).
		Str("id", id).
		Msg("unknown preset id, using request value")
}

// surface 是单次调用独占的绘制状态。画布坐标 y 向上，布局坐标 y 向下，经 flipY 转换。
type surface struct {
	ctx           *canvas.Context
	width, height float64
	letterSpacing float64
	resolver      *style.Resolver
}

func (s *surface) flipY(y float64) float64 { return s.height - y }

// push 保存绘制状态并设置字间距，返回的函数恢复两者。
func (s *surface) push(letterSpacing float64) func() {
	s.ctx.Push()
	prev := s.letterSpacing
	s.letterSpacing = letterSpacing
	return func() {
		s.letterSpacing = prev
		s.ctx.Pop()
	}
}

func (s *surface) color(value string, fallback card.Color) card.Color {
	return s.resolver.Color(value, fallback)
}

func (s *surface) colors(values []string) []card.Color {
	out := make([]card.Color, 0, len(values))
	for _, v := range values {
		out = append(out, s.color(v, card.Black))
	}
	return out
}

// toRGBA 转为 canvas 使用的预乘 RGBA。
func toRGBA(c card.Color) color.RGBA {
	return canvas.RGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}
