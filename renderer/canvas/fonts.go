package canvasrenderer

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/tdewolff/canvas"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/captioncard/catalog"
	"github.com/ByLCY/captioncard/fonts"
	"github.com/ByLCY/captioncard/layout"
)

// fontCache 按字体描述缓存已加载的 FontFamily。缓存的是只读资源，不含任何绘制状态。
type fontCache struct {
	families *cache.Cache
	group    singleflight.Group
	logger   zerolog.Logger
}

func newFontCache(ttl time.Duration, logger zerolog.Logger) *fontCache {
	if ttl <= 0 {
		// 不过期时不需要清理协程
		return &fontCache{families: cache.New(cache.NoExpiration, 0), logger: logger}
	}
	return &fontCache{families: cache.New(ttl, 2*ttl), logger: logger}
}

var fontStyles = []struct {
	bold, italic bool
	style        canvas.FontStyle
}{
	{false, false, canvas.FontRegular},
	{true, false, canvas.FontBold},
	{false, true, canvas.FontItalic},
	{true, true, canvas.FontBold | canvas.FontItalic},
}

// family 返回 font 对应的字体族，四种样式都会被加载；缺失的样式退回 regular，
// regular 本身加载失败时退回内置 Go 字体。
func (fc *fontCache) family(font catalog.Font) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	if v, ok := fc.families.Get(key); ok {
		return v.(*canvas.FontFamily), nil
	}
	v, err, _ := fc.group.Do(key, func() (interface{}, error) {
		if v, ok := fc.families.Get(key); ok {
			return v, nil
		}
		fam, err := fc.load(font)
		if err != nil {
			return nil, err
		}
		fc.families.Set(key, fam, cache.DefaultExpiration)
		return fam, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*canvas.FontFamily), nil
}

func (fc *fontCache) load(font catalog.Font) (*canvas.FontFamily, error) {
	name := font.Family
	if name == "" {
		name = font.ID
	}
	family := canvas.NewFontFamily(name)

	regular, err := fonts.Load(font.Regular)
	if err != nil {
		fc.logger.Warn().Err(err).Str("font", font.ID).Msg("regular face unavailable, using built-in font")
		regular = fonts.Fallback()
	}
	for _, st := range fontStyles {
		data := regular
		if src := font.Source(st.bold, st.italic); src != font.Regular {
			if b, err := fonts.Load(src); err == nil {
				data = b
			} else {
				fc.logger.Debug().Err(err).Str("font", font.ID).Str("src", src).Msg("style face unavailable, using regular")
			}
		}
		if err := family.LoadFont(data, 0, st.style); err != nil {
			if err := family.LoadFont(fonts.Fallback(), 0, st.style); err != nil {
				return nil, fmt.Errorf("加载字体 %s 失败: %w", font.ID, err)
			}
		}
	}
	return family, nil
}

// face 创建指定像素字号的字体面；canvas 的字体系统使用 pt。
func (fc *fontCache) face(spec layout.FaceSpec, col color.Color) (*canvas.FontFace, error) {
	family, err := fc.family(spec.Font)
	if err != nil {
		return nil, err
	}
	style := canvas.FontRegular
	if spec.Bold {
		style |= canvas.FontBold
	}
	if spec.Italic {
		style |= canvas.FontItalic
	}
	return family.Face(layout.ToPt(spec.Size), col, style, canvas.FontNormal), nil
}

func fontCacheKey(font catalog.Font) string {
	return strings.Join([]string{font.ID, font.Regular, font.Bold, font.Italic, font.BoldItalic}, "|")
}
