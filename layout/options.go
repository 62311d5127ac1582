package layout

import (
	"github.com/rs/zerolog"

	"github.com/ByLCY/captioncard/catalog"
	"github.com/ByLCY/captioncard/style"
)

// BuildOptions 配置布局阶段所需的依赖，例如测量后端与预设目录。
type BuildOptions struct {
	Typesetter Typesetter
	Presets    style.Presets
	Logger     zerolog.Logger
}

// FaceSpec 描述一次测量使用的字体：字体描述、像素字号与粗斜体。
type FaceSpec struct {
	Font   catalog.Font
	Size   float64
	Bold   bool
	Italic bool
}

// FaceOf returns the face a resolved style draws with.
func FaceOf(s style.Resolved) FaceSpec {
	return FaceSpec{Font: s.Font, Size: s.FontSize, Bold: s.Bold, Italic: s.Italic}
}

// Typesetter 负责测量文本在给定字体下的宽度（像素）。
type Typesetter interface {
	TextWidth(content string, face FaceSpec) (float64, error)
}
