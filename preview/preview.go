// Package preview 为实时预览合并频繁的编辑，并丢弃被后续编辑取代的渲染结果。
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/renderer"
)

// Result 是一次预览渲染的结果，Generation 对应 Update 的返回值。
type Result struct {
	Generation uint64
	Image      []byte
	Err        error
}

// Previewer 每次 Update 递增代号；只有仍是最新代号的渲染结果才会交给 OnResult。
// 新的渲染开始时会取消仍在进行的旧渲染。
type Previewer struct {
	r        renderer.Renderer
	deb      *Debouncer
	onResult func(Result)
	logger   zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// New creates a previewer. onResult is called from a timer goroutine.
func New(r renderer.Renderer, delay time.Duration, onResult func(Result), logger zerolog.Logger) *Previewer {
	return &Previewer{
		r:        r,
		deb:      NewDebouncer(delay),
		onResult: onResult,
		logger:   logger,
	}
}

// Update 提交新的请求，返回其代号。
func (p *Previewer) Update(req card.Request) uint64 {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	p.deb.Trigger(func() { p.render(gen, req) })
	return gen
}

// Flush renders the pending update synchronously.
func (p *Previewer) Flush() { p.deb.Flush() }

// Generation returns the newest generation handed out by Update.
func (p *Previewer) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Close 丢弃待执行的更新并取消进行中的渲染，之后的结果都不再投递。
func (p *Previewer) Close() {
	p.deb.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Previewer) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && gen == p.gen
}

func (p *Previewer) render(gen uint64, req card.Request) {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	start := time.Now()
	out, err := p.r.Generate(ctx, req)
	if !p.current(gen) {
		p.logger.Debug().Uint64("generation", gen).Msg("丢弃过期的预览结果")
		return
	}
	p.logger.Debug().
		Uint64("generation", gen).
		Dur("duration", time.Since(start)).
		Bool("failed", err != nil).
		Msg("预览渲染完成")
	if p.onResult != nil {
		p.onResult(Result{Generation: gen, Image: out, Err: err})
	}
}
