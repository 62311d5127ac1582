package style

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/catalog"
)

func TestBaseFontSizeBuckets(t *testing.T) {
	const width = 1000.0
	tests := []struct {
		length int
		want   float64
	}{
		{0, 80},
		{19, 80},
		{20, 60},
		{49, 60},
		{50, 50},
		{99, 50},
		{100, 40},
		{500, 40},
	}
	for _, tt := range tests {
		got := BaseFontSize(strings.Repeat("a", tt.length), width)
		assert.InDelta(t, tt.want, got, 1e-9, "length %d", tt.length)
	}
}

func TestBaseFontSizeCountsRunes(t *testing.T) {
	// 19 个汉字，按字节计会超过 50
	text := strings.Repeat("字", 19)
	assert.InDelta(t, 80.0, BaseFontSize(text, 1000), 1e-9)
}

func TestSizeMultiplierUnknown(t *testing.T) {
	assert.Equal(t, 1.6, SizeMultiplier(card.SizeXL))
	assert.Equal(t, 1.0, SizeMultiplier("jumbo"))
}

func newRequest(text string) card.Request {
	req := card.DefaultRequest()
	req.Text = text
	return req.Normalize()
}

func TestResolveDefaults(t *testing.T) {
	r := NewResolver(newRequest("Hello World"), catalog.Default(), zerolog.Nop())
	got := r.Resolve(0)
	assert.Equal(t, "go", got.Font.ID)
	assert.Equal(t, card.White, got.Color)
	assert.Equal(t, card.SizeMD, got.TextSize)
	assert.InDelta(t, 86.4, got.FontSize, 1e-9)
	assert.False(t, got.Bold)
}

func TestResolveOverridePrecedence(t *testing.T) {
	yes := true
	lg := card.SizeLG
	mono := "go-mono"
	red := "red"
	req := newRequest("Hello\nWorld\nAgain")
	req.Italic = true
	req.LineOverrides = map[int]card.LineOverride{
		1: {Bold: &yes, TextSize: &lg, FontID: &mono, Color: &red},
	}
	r := NewResolver(req, catalog.Default(), zerolog.Nop())

	for _, i := range []int{0, 2} {
		s := r.Resolve(i)
		assert.False(t, s.Bold, "paragraph %d", i)
		assert.True(t, s.Italic, "paragraph %d inherits global italic", i)
		assert.Equal(t, "go", s.Font.ID)
	}

	s := r.Resolve(1)
	assert.True(t, s.Bold)
	assert.True(t, s.Italic, "unset override field falls back to global")
	assert.Equal(t, "go-mono", s.Font.ID)
	assert.Equal(t, card.Color{R: 0xEF, G: 0x44, B: 0x44, A: 255}, s.Color)
	assert.InDelta(t, r.BaseFontSize()*1.3, s.FontSize, 1e-9)
}

func TestResolveUnknownIDsFallBack(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	bogusFont := "papyrus-extra-bold"
	bogusColor := "chartreuse"
	bogusSize := card.TextSize("xxl")
	req := newRequest("Hi")
	req.FontID = "go-medium"
	req.TextColor = "yellow"
	req.LineOverrides = map[int]card.LineOverride{
		0: {FontID: &bogusFont, Color: &bogusColor, TextSize: &bogusSize},
	}
	r := NewResolver(req, catalog.Default(), logger)

	s := r.Resolve(0)
	assert.Equal(t, "go-medium", s.Font.ID, "unknown override font falls back to global")
	assert.Equal(t, r.Global().Color, s.Color)
	assert.Equal(t, card.SizeMD, s.TextSize)
	assert.Contains(t, buf.String(), "UNKNOWN_STYLE_ID")

	// 全局 ID 未知时回退到硬默认值
	req.FontID = "nope"
	req.TextColor = "nope"
	r = NewResolver(req, catalog.Default(), zerolog.Nop())
	assert.Equal(t, "go", r.Global().Font.ID)
	assert.Equal(t, card.White, r.Global().Color)
}

func TestResolveFontSizeScalesBase(t *testing.T) {
	sizes := []card.TextSize{card.SizeXS, card.SizeSM, card.SizeMD, card.SizeLG, card.SizeXL}
	overrides := map[int]card.LineOverride{}
	text := ""
	for i := range sizes {
		s := sizes[i]
		overrides[i] = card.LineOverride{TextSize: &s}
		text += "line\n"
	}
	req := newRequest(text)
	req.LineOverrides = overrides
	r := NewResolver(req, catalog.Default(), zerolog.Nop())
	base := BaseFontSize(text, float64(req.Width))
	for i, s := range sizes {
		got := r.Resolve(i).FontSize
		require.False(t, math.IsNaN(got))
		assert.InDelta(t, base*SizeMultiplier(s), got, 1e-9)
	}
}

func TestColorLiteral(t *testing.T) {
	r := NewResolver(newRequest("x"), catalog.Default(), zerolog.Nop())
	assert.Equal(t, card.Color{R: 0x12, G: 0x34, B: 0x56, A: 255}, r.Color("#123456", card.Black))
	assert.Equal(t, card.Black, r.Color("#12", card.Black))
	assert.Equal(t, card.Black, r.Color("", card.Black))
}
