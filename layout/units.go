package layout

// 画布内部以 mm 为单位；渲染时按 1 mm = 1 px 栅格化，因此布局中的像素可直接当作 mm 使用。
// 字体系统使用 pt，在边界做 px↔pt 换算。

// Conversion constants between pt and px.
const (
	PtToPx = 25.4 / 72
	PxToPt = 72 / 25.4
)

// ToPt converts a pixel size to points.
func ToPt(px float64) float64 { return px * PxToPt }

// ToPx converts points to pixels.
func ToPx(pt float64) float64 { return pt * PtToPx }
