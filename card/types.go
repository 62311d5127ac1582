package card

// 该文件定义生成请求及其枚举，供样式解析、排版与渲染共用。

// Default canvas size and line spacing.
const (
	DefaultWidth       = 1080
	DefaultHeight      = 1080
	DefaultLineSpacing = 1.3
)

// Align 文本水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// VerticalAlign 文本块整体的垂直位置。
type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignCenter VerticalAlign = "center"
	VAlignBottom VerticalAlign = "bottom"
)

// ShapeKind 装饰图形种类。
type ShapeKind string

const (
	ShapesNone    ShapeKind = "none"
	ShapesCircles ShapeKind = "circles"
	ShapesSquares ShapeKind = "squares"
	ShapesLines   ShapeKind = "lines"
)

// TextSize 字号档位，对应固定倍率。
type TextSize string

const (
	SizeXS TextSize = "xs"
	SizeSM TextSize = "sm"
	SizeMD TextSize = "md"
	SizeLG TextSize = "lg"
	SizeXL TextSize = "xl"
)

var sizeMultipliers = map[TextSize]float64{
	SizeXS: 0.6,
	SizeSM: 0.8,
	SizeMD: 1.0,
	SizeLG: 1.3,
	SizeXL: 1.6,
}

// Multiplier returns the fixed factor for s; ok is false for unknown ids.
func (s TextSize) Multiplier() (float64, bool) {
	m, ok := sizeMultipliers[s]
	return m, ok
}

// BackgroundKind 背景类型。
type BackgroundKind string

const (
	BackgroundSolid    BackgroundKind = "solid"
	BackgroundGradient BackgroundKind = "gradient"
	BackgroundImage    BackgroundKind = "image"
)

// Background 描述底图。颜色字段既可以是色板 ID，也可以是 #hex。
// 百分比字段（Position*/Opacity/OverlayOpacity）取值 0-100。
type Background struct {
	Kind   BackgroundKind `json:"kind" yaml:"kind"`
	Color  string         `json:"color,omitempty" yaml:"color,omitempty"`
	Colors []string       `json:"colors,omitempty" yaml:"colors,omitempty"`
	Angle  float64        `json:"angle,omitempty" yaml:"angle,omitempty"`

	Image          []byte  `json:"-" yaml:"-"`
	ImageSrc       string  `json:"imageSrc,omitempty" yaml:"imageSrc,omitempty"` // 本地路径或 http(s) URL，由 assets 包加载为 Image
	Scale          float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	PositionX      float64 `json:"positionX" yaml:"positionX"`
	PositionY      float64 `json:"positionY" yaml:"positionY"`
	Opacity        float64 `json:"opacity" yaml:"opacity"`
	OverlayColor   string  `json:"overlayColor,omitempty" yaml:"overlayColor,omitempty"`
	OverlayOpacity float64 `json:"overlayOpacity,omitempty" yaml:"overlayOpacity,omitempty"`
}

// LineOverride 是某一段落的局部样式，nil 字段表示沿用全局值。
type LineOverride struct {
	FontID    *string   `json:"fontId,omitempty" yaml:"fontId,omitempty"`
	Color     *string   `json:"color,omitempty" yaml:"color,omitempty"`
	TextSize  *TextSize `json:"textSize,omitempty" yaml:"textSize,omitempty"`
	Bold      *bool     `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    *bool     `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline *bool     `json:"underline,omitempty" yaml:"underline,omitempty"`
	Stroke    *bool     `json:"stroke,omitempty" yaml:"stroke,omitempty"`
}

// IsEmpty reports whether no field is set.
func (o LineOverride) IsEmpty() bool {
	return o.FontID == nil && o.Color == nil && o.TextSize == nil &&
		o.Bold == nil && o.Italic == nil && o.Underline == nil && o.Stroke == nil
}

// Merge 返回 o 与 other 合并后的覆盖项，other 中已设置的字段优先。
func (o LineOverride) Merge(other LineOverride) LineOverride {
	out := o
	if other.FontID != nil {
		out.FontID = other.FontID
	}
	if other.Color != nil {
		out.Color = other.Color
	}
	if other.TextSize != nil {
		out.TextSize = other.TextSize
	}
	if other.Bold != nil {
		out.Bold = other.Bold
	}
	if other.Italic != nil {
		out.Italic = other.Italic
	}
	if other.Underline != nil {
		out.Underline = other.Underline
	}
	if other.Stroke != nil {
		out.Stroke = other.Stroke
	}
	return out
}

// Request 是一次生成调用的全部输入。
type Request struct {
	Text         string     `json:"text" yaml:"text"`
	Background   Background `json:"background" yaml:"background"`
	BackgroundID string     `json:"backgroundId,omitempty" yaml:"backgroundId,omitempty"`

	FontID        string        `json:"fontId" yaml:"fontId"`
	TextColor     string        `json:"textColor" yaml:"textColor"`
	Align         Align         `json:"align" yaml:"align"`
	VerticalAlign VerticalAlign `json:"verticalAlign" yaml:"verticalAlign"`
	Shapes        ShapeKind     `json:"shapes" yaml:"shapes"`

	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	TextSize      TextSize `json:"textSize" yaml:"textSize"`
	Bold          bool     `json:"bold" yaml:"bold"`
	Italic        bool     `json:"italic" yaml:"italic"`
	Underline     bool     `json:"underline" yaml:"underline"`
	Stroke        bool     `json:"stroke" yaml:"stroke"`
	StrokeWidth   float64  `json:"strokeWidth" yaml:"strokeWidth"`
	StrokeColor   string   `json:"strokeColor" yaml:"strokeColor"`
	LetterSpacing float64  `json:"letterSpacing" yaml:"letterSpacing"`
	LineSpacing   float64  `json:"lineSpacing" yaml:"lineSpacing"`

	LineOverrides map[int]LineOverride `json:"lineOverrides,omitempty" yaml:"lineOverrides,omitempty"`
}

// DefaultRequest 返回带默认值的请求，调用方在其上修改需要的字段。
func DefaultRequest() Request {
	return Request{
		Background: Background{
			Kind:      BackgroundSolid,
			Color:     "#1F2937",
			Angle:     135,
			Scale:     1,
			PositionX: 50,
			PositionY: 50,
			Opacity:   100,
		},
		TextColor:     "#FFFFFF",
		Align:         AlignCenter,
		VerticalAlign: VAlignCenter,
		Shapes:        ShapesNone,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		TextSize:      SizeMD,
		StrokeWidth:   4,
		StrokeColor:   "#000000",
		LineSpacing:   DefaultLineSpacing,
	}
}
