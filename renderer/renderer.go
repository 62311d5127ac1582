package renderer

import (
	"context"

	"github.com/ByLCY/captioncard/card"
)

// Renderer 将生成请求绘制为最终图像，返回编码后的字节（JPEG 或 PNG）。
// 每次调用使用独立的画布，可并发调用；实现需自行串行化非并发安全的步骤。
type Renderer interface {
	Generate(ctx context.Context, req card.Request) ([]byte, error)
}

// Func adapts a function to Renderer.
type Func func(ctx context.Context, req card.Request) ([]byte, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req card.Request) ([]byte, error) {
	return f(ctx, req)
}
