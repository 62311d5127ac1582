package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageDecoder 解码背景图字节。这是管线中唯一的挂起点，实现需响应 ctx 取消。
type ImageDecoder interface {
	Decode(ctx context.Context, data []byte) (image.Image, error)
}

// StdDecoder 使用 image.Decode，支持 jpeg/png/gif/webp/bmp。
type StdDecoder struct{}

type decodeResult struct {
	img image.Image
	err error
}

// Decode implements ImageDecoder.
func (StdDecoder) Decode(ctx context.Context, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("背景图数据为空")
	}
	done := make(chan decodeResult, 1)
	go func() {
		img, _, err := image.Decode(bytes.NewReader(data))
		done <- decodeResult{img: img, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.img, res.err
	}
}
