package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/captioncard/assets"
	"github.com/ByLCY/captioncard/binding"
	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/config"
	"github.com/ByLCY/captioncard/dsl"
	"github.com/ByLCY/captioncard/errors"
	"github.com/ByLCY/captioncard/logging"
)

// requestFlags 汇总描述单张卡片的命令行参数。只有显式设置过的参数才会覆盖请求文件中的值。
type requestFlags struct {
	requestFile string
	dataFile    string
	strict      bool

	text          string
	font          string
	textColor     string
	size          string
	align         string
	valign        string
	shapes        string
	bold          bool
	italic        bool
	underline     bool
	stroke        bool
	strokeWidth   float64
	strokeColor   string
	letterSpacing float64
	lineSpacing   float64
	lines         []string

	background string
	bgColor    string
	gradient   []string
	angle      float64
	image      string
	overlay    string
	overlayPct float64
}

func (f *requestFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.requestFile, "request", "r", "", "YAML/JSON request file")
	fs.StringVar(&f.dataFile, "data", "", "YAML/JSON data bound into ${...} placeholders")
	fs.BoolVar(&f.strict, "strict", false, "fail when a placeholder has no data")

	fs.StringVarP(&f.text, "text", "t", "", "caption text (\\n separates paragraphs)")
	fs.StringVar(&f.font, "font", "", "font id from the catalog")
	fs.StringVar(&f.textColor, "color", "", "text color (swatch id or #hex)")
	fs.StringVar(&f.size, "size", "", "text size: xs, sm, md, lg, xl")
	fs.StringVar(&f.align, "align", "", "horizontal alignment: left, center, right")
	fs.StringVar(&f.valign, "valign", "", "vertical alignment: top, center, bottom")
	fs.StringVar(&f.shapes, "shapes", "", "decoration: none, circles, squares, lines or a preset id")
	fs.BoolVar(&f.bold, "bold", false, "bold text")
	fs.BoolVar(&f.italic, "italic", false, "italic text")
	fs.BoolVar(&f.underline, "underline", false, "underline text")
	fs.BoolVar(&f.stroke, "stroke", false, "outline text")
	fs.Float64Var(&f.strokeWidth, "stroke-width", 0, "outline width in px")
	fs.StringVar(&f.strokeColor, "stroke-color", "", "outline color")
	fs.Float64Var(&f.letterSpacing, "letter-spacing", 0, "extra px between glyphs")
	fs.Float64Var(&f.lineSpacing, "line-spacing", 0, "line height multiplier")
	fs.StringArrayVar(&f.lines, "line", nil, "per-line overrides, e.g. '0: bold size=lg; 2: font=go-mono'")

	fs.StringVar(&f.background, "bg", "", "background preset id")
	fs.StringVar(&f.bgColor, "bg-color", "", "solid background color")
	fs.StringSliceVar(&f.gradient, "gradient", nil, "gradient colors, comma separated")
	fs.Float64Var(&f.angle, "angle", 0, "gradient angle in degrees")
	fs.StringVar(&f.image, "image", "", "background image path or http(s) URL")
	fs.StringVar(&f.overlay, "overlay", "", "overlay color drawn over a background image")
	fs.Float64Var(&f.overlayPct, "overlay-opacity", 0, "overlay opacity 0-100")
}

// baseRequest 返回以配置为起点的默认请求。
func baseRequest(cfg *config.Config) card.Request {
	req := card.DefaultRequest()
	req.Width = cfg.Render.Width
	req.Height = cfg.Render.Height
	return req
}

// build 依次应用：请求文件 → 命令行参数 → --line 覆盖 → 数据绑定。
func (f *requestFlags) build(fs *pflag.FlagSet, base card.Request) (card.Request, error) {
	req := base
	if f.requestFile != "" {
		data, err := os.ReadFile(f.requestFile)
		if err != nil {
			return req, errors.Wrapf(err, errors.ErrInvalidInput, "读取请求文件 %s 失败", f.requestFile)
		}
		fileReq, err := card.DecodeBytes(data)
		if err != nil {
			return req, errors.Wrapf(err, errors.ErrInvalidInput, "请求文件 %s 不合法", f.requestFile)
		}
		// 请求文件未写尺寸时沿用配置
		if !yamlHasKey(data, "width") {
			fileReq.Width = base.Width
		}
		if !yamlHasKey(data, "height") {
			fileReq.Height = base.Height
		}
		req = fileReq
	}

	f.applyFlags(fs, &req)

	for _, script := range f.lines {
		overrides, err := dsl.Overrides(script)
		if err != nil {
			return req, err
		}
		if req.LineOverrides == nil {
			req.LineOverrides = map[int]card.LineOverride{}
		}
		for i, o := range overrides {
			req.LineOverrides[i] = req.LineOverrides[i].Merge(o)
		}
	}

	if f.dataFile != "" {
		data, err := readData(f.dataFile)
		if err != nil {
			return req, err
		}
		return binding.Binder{Data: data, Strict: f.strict}.ApplyRequest(req)
	}
	if f.strict {
		return binding.Binder{Strict: true}.ApplyRequest(req)
	}
	return req, nil
}

func (f *requestFlags) applyFlags(fs *pflag.FlagSet, req *card.Request) {
	set := fs.Changed
	if set("text") {
		req.Text = strings.ReplaceAll(f.text, `\n`, "\n")
	}
	if set("font") {
		req.FontID = f.font
	}
	if set("color") {
		req.TextColor = f.textColor
	}
	if set("size") {
		req.TextSize = card.TextSize(f.size)
	}
	if set("align") {
		req.Align = card.Align(f.align)
	}
	if set("valign") {
		req.VerticalAlign = card.VerticalAlign(f.valign)
	}
	if set("shapes") {
		req.Shapes = card.ShapeKind(f.shapes)
	}
	if set("bold") {
		req.Bold = f.bold
	}
	if set("italic") {
		req.Italic = f.italic
	}
	if set("underline") {
		req.Underline = f.underline
	}
	if set("stroke") {
		req.Stroke = f.stroke
	}
	if set("stroke-width") {
		req.StrokeWidth = f.strokeWidth
	}
	if set("stroke-color") {
		req.StrokeColor = f.strokeColor
	}
	if set("letter-spacing") {
		req.LetterSpacing = f.letterSpacing
	}
	if set("line-spacing") {
		req.LineSpacing = f.lineSpacing
	}

	if set("bg") {
		req.BackgroundID = f.background
	}
	if set("bg-color") {
		req.BackgroundID = ""
		req.Background.Kind = card.BackgroundSolid
		req.Background.Color = f.bgColor
	}
	if set("gradient") {
		req.BackgroundID = ""
		req.Background.Kind = card.BackgroundGradient
		req.Background.Colors = f.gradient
	}
	if set("angle") {
		req.Background.Angle = f.angle
	}
	if set("image") {
		req.BackgroundID = ""
		req.Background.Kind = card.BackgroundImage
		req.Background.ImageSrc = f.image
		req.Background.Image = nil
	}
	if set("overlay") {
		req.Background.OverlayColor = f.overlay
	}
	if set("overlay-opacity") {
		req.Background.OverlayOpacity = f.overlayPct
	}
}

// readData 读取绑定数据。YAML 是 JSON 的超集，两种格式共用一个解码器。
func readData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "读取数据文件 %s 失败", path)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "解析数据文件 %s 失败", path)
	}
	return data, nil
}

func yamlHasKey(data []byte, key string) bool {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return false
	}
	_, ok := top[key]
	return ok
}

// prepareAssets 加载背景图。失败只记录日志，渲染阶段会退回黑色背景。
func prepareAssets(ctx context.Context, cfg *config.Config, baseDir string, req card.Request) card.Request {
	if cfg.Assets.BaseDir != "" {
		baseDir = cfg.Assets.BaseDir
	}
	loader := assets.NewLoader(cfg.Assets.HTTPTimeout, baseDir)
	out, err := loader.Prepare(ctx, req)
	if err != nil {
		logger := logging.GetLogger("cli.assets")
		logger.Warn().
			Err(err).
			Str("code", string(errors.GetErrorCode(err))).
			Str("src", req.Background.ImageSrc).
			Msg("背景图加载失败，使用黑色背景")
	}
	return out
}

// dirOf 返回请求文件所在目录，用作相对资源路径的根。
func dirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}
