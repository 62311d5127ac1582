package catalog

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/captioncard/card"
)

func TestDefaultCatalogLookups(t *testing.T) {
	cat := Default()

	f, ok := cat.Font("go-mono")
	require.True(t, ok)
	assert.Equal(t, "Go Mono", f.Family)
	assert.Equal(t, "monospace", f.Category)
	assert.Equal(t, "embed:gomonobolditalic", f.Source(true, true))

	assert.Equal(t, "go", cat.DefaultFontDescriptor().ID)

	red, ok := cat.Color("RED")
	require.True(t, ok)
	assert.Equal(t, card.Color{R: 0xEF, G: 0x44, B: 0x44, A: 255}, red)

	bg, ok := cat.Background("sunset")
	require.True(t, ok)
	assert.Equal(t, card.BackgroundGradient, bg.Kind)
	assert.Len(t, bg.Colors, 3)
	assert.Equal(t, 135.0, bg.Angle)

	kind, ok := cat.Shape("lines")
	require.True(t, ok)
	assert.Equal(t, card.ShapesLines, kind)
	kind, ok = cat.Shape("bubbles")
	require.True(t, ok)
	assert.Equal(t, card.ShapesCircles, kind)

	_, ok = cat.Font("comic-sans")
	assert.False(t, ok)
	_, ok = cat.Color("chartreuse")
	assert.False(t, ok)
}

func TestFontSourceFallsBackToRegular(t *testing.T) {
	f := Font{ID: "x", Regular: "embed:goregular"}
	assert.Equal(t, "embed:goregular", f.Source(true, false))
	assert.Equal(t, "embed:goregular", f.Source(false, true))
}

func TestParseRejectsInconsistentCatalog(t *testing.T) {
	tests := map[string]string{
		"no fonts": `default_font = "go"`,
		"duplicate font": `
[[fonts]]
id = "a"
regular = "embed:goregular"
[[fonts]]
id = "a"
regular = "embed:gobold"`,
		"missing default": `
default_font = "zzz"
[[fonts]]
id = "a"
regular = "embed:goregular"`,
		"bad swatch": `
[[fonts]]
id = "a"
regular = "embed:goregular"
[[colors]]
id = "c"
hex = "#12"`,
		"one-colour gradient": `
[[fonts]]
id = "a"
regular = "embed:goregular"
[[backgrounds]]
id = "g"
kind = "gradient"
colors = ["#fff"]`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestCatalogRoundTripsThroughTOML(t *testing.T) {
	cat := Default()
	data, err := toml.Marshal(cat)
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cat, again)
}
