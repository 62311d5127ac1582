package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/captioncard/card"
)

//go:embed embedded/catalog.toml
var defaultCatalog []byte

// Font 描述一个可选字体。四个 src 字段可写为 "embed:<name>" 或文件路径。
type Font struct {
	ID         string `koanf:"id" toml:"id" json:"id"`
	Family     string `koanf:"family" toml:"family" json:"family"`
	Weight     string `koanf:"weight" toml:"weight" json:"weight"`
	Category   string `koanf:"category" toml:"category" json:"category"`
	Regular    string `koanf:"regular" toml:"regular" json:"regular"`
	Bold       string `koanf:"bold" toml:"bold,omitempty" json:"bold,omitempty"`
	Italic     string `koanf:"italic" toml:"italic,omitempty" json:"italic,omitempty"`
	BoldItalic string `koanf:"bold_italic" toml:"bold_italic,omitempty" json:"boldItalic,omitempty"`
}

// Source 返回指定样式的字体来源；缺失的样式退回 regular。
func (f Font) Source(bold, italic bool) string {
	var src string
	switch {
	case bold && italic:
		src = f.BoldItalic
	case bold:
		src = f.Bold
	case italic:
		src = f.Italic
	}
	if src == "" {
		src = f.Regular
	}
	return src
}

// Swatch 是具名颜色。
type Swatch struct {
	ID   string `koanf:"id" toml:"id" json:"id"`
	Name string `koanf:"name" toml:"name" json:"name"`
	Hex  string `koanf:"hex" toml:"hex" json:"hex"`
}

// BackgroundPreset 是具名的纯色或渐变背景。
type BackgroundPreset struct {
	ID     string   `koanf:"id" toml:"id" json:"id"`
	Name   string   `koanf:"name" toml:"name" json:"name"`
	Kind   string   `koanf:"kind" toml:"kind" json:"kind"`
	Color  string   `koanf:"color" toml:"color,omitempty" json:"color,omitempty"`
	Colors []string `koanf:"colors" toml:"colors,omitempty" json:"colors,omitempty"`
	Angle  float64  `koanf:"angle" toml:"angle,omitempty" json:"angle,omitempty"`
}

// ShapePreset 是具名的装饰图形种类。Kind 为空时 ID 本身即种类。
type ShapePreset struct {
	ID   string `koanf:"id" toml:"id" json:"id"`
	Name string `koanf:"name" toml:"name" json:"name"`
	Kind string `koanf:"kind" toml:"kind,omitempty" json:"kind,omitempty"`
}

// Catalog is the static style-preset catalog consumed by id lookup.
type Catalog struct {
	DefaultFont string             `koanf:"default_font" toml:"default_font" json:"defaultFont"`
	Fonts       []Font             `koanf:"fonts" toml:"fonts" json:"fonts"`
	Colors      []Swatch           `koanf:"colors" toml:"colors" json:"colors"`
	Backgrounds []BackgroundPreset `koanf:"backgrounds" toml:"backgrounds" json:"backgrounds"`
	Shapes      []ShapePreset      `koanf:"shapes" toml:"shapes" json:"shapes"`
}

// DefaultTOML returns the embedded catalog source.
func DefaultTOML() []byte {
	return defaultCatalog
}

// Default 解析内置目录；内置数据出错属于编程错误，因此直接 panic。
func Default() *Catalog {
	cat, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("内置预设目录无效: %v", err))
	}
	return cat
}

// Parse 解析 TOML 格式的目录。
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("解析预设目录失败: %w", err)
	}
	if err := cat.Check(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Check 校验目录自身的一致性：ID 唯一、默认字体存在、字面量颜色合法。
func (c *Catalog) Check() error {
	if len(c.Fonts) == 0 {
		return fmt.Errorf("预设目录缺少字体")
	}
	seen := map[string]bool{}
	for _, f := range c.Fonts {
		if f.ID == "" || f.Regular == "" {
			return fmt.Errorf("字体 %q 缺少 id 或 regular", f.ID)
		}
		if seen["font:"+f.ID] {
			return fmt.Errorf("字体 id %q 重复", f.ID)
		}
		seen["font:"+f.ID] = true
	}
	if c.DefaultFont != "" && !seen["font:"+c.DefaultFont] {
		return fmt.Errorf("默认字体 %q 不在字体列表中", c.DefaultFont)
	}
	for _, s := range c.Colors {
		if seen["color:"+s.ID] {
			return fmt.Errorf("色板 id %q 重复", s.ID)
		}
		seen["color:"+s.ID] = true
		if _, err := card.ParseHex(s.Hex); err != nil {
			return fmt.Errorf("色板 %q: %w", s.ID, err)
		}
	}
	for _, b := range c.Backgrounds {
		if err := b.Spec().Validate(); err != nil {
			return fmt.Errorf("背景预设 %q: %w", b.ID, err)
		}
	}
	return nil
}

// Font looks up a font descriptor by id.
func (c *Catalog) Font(id string) (Font, bool) {
	for _, f := range c.Fonts {
		if f.ID == id {
			return f, true
		}
	}
	return Font{}, false
}

// DefaultFontDescriptor 返回默认字体；未配置时取第一个。
func (c *Catalog) DefaultFontDescriptor() Font {
	if f, ok := c.Font(c.DefaultFont); ok {
		return f
	}
	return c.Fonts[0]
}

// Color looks up a swatch by id (case-insensitive).
func (c *Catalog) Color(id string) (card.Color, bool) {
	for _, s := range c.Colors {
		if strings.EqualFold(s.ID, id) {
			col, err := card.ParseHex(s.Hex)
			if err != nil {
				return card.Color{}, false
			}
			return col, true
		}
	}
	return card.Color{}, false
}

// Background returns the preset as a card.Background.
func (c *Catalog) Background(id string) (card.Background, bool) {
	for _, b := range c.Backgrounds {
		if b.ID == id {
			return b.Spec(), true
		}
	}
	return card.Background{}, false
}

// Spec 把预设转换为请求使用的背景描述。
func (b BackgroundPreset) Spec() card.Background {
	bg := card.DefaultRequest().Background
	bg.Kind = card.BackgroundKind(b.Kind)
	bg.Color = b.Color
	bg.Colors = append([]string(nil), b.Colors...)
	bg.Angle = b.Angle
	return bg
}

// Shape reports whether id names a known decoration kind.
func (c *Catalog) Shape(id string) (card.ShapeKind, bool) {
	for _, s := range c.Shapes {
		if s.ID == id {
			if s.Kind != "" {
				return card.ShapeKind(s.Kind), true
			}
			return card.ShapeKind(s.ID), true
		}
	}
	return card.ShapesNone, false
}
