package canvasrenderer

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/ByLCY/captioncard/errors"
)

// Format 输出图像格式。
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// DefaultQuality 对应 0.92 的压缩质量。
const DefaultQuality = 92

// ParseFormat accepts jpeg/jpg/png, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "不支持的输出格式 %q", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// Encode 序列化最终画面；任何失败都以 ENCODING_FAILED 返回，不产出部分结果。
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.ErrEncodingFailed, "没有可编码的图像")
	}
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, errors.Wrap(err, errors.ErrEncodingFailed, "PNG 编码失败")
		}
	case FormatJPEG, "":
		if quality <= 0 || quality > 100 {
			quality = DefaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, errors.Wrap(err, errors.ErrEncodingFailed, "JPEG 编码失败")
		}
	default:
		return nil, errors.Newf(errors.ErrEncodingFailed, "不支持的输出格式 %q", format)
	}
	return buf.Bytes(), nil
}
