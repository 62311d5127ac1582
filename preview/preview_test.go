package preview

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/renderer"
)

type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) snapshot() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

func echo() renderer.Renderer {
	return renderer.Func(func(_ context.Context, req card.Request) ([]byte, error) {
		return []byte(req.Text), nil
	})
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		i := i
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncerDefaultsAndStop(t *testing.T) {
	assert.Equal(t, DefaultDelay, NewDebouncer(0).Delay())

	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())

	d.Trigger(func() { calls.Add(1) })
	d.Flush()
	assert.Equal(t, int32(1), calls.Load())
	d.Flush()
	assert.Equal(t, int32(1), calls.Load(), "flush without pending work is a no-op")
}

func TestPreviewerDeliversLatest(t *testing.T) {
	var c collector
	p := New(echo(), time.Hour, c.add, zerolog.Nop())

	req := card.DefaultRequest()
	for _, text := range []string{"a", "ab", "abc"} {
		req.Text = text
		p.Update(req)
	}
	p.Flush()

	got := c.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].Generation)
	assert.Equal(t, []byte("abc"), got[0].Image)
	assert.NoError(t, got[0].Err)
}

func TestPreviewerDropsStaleResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := renderer.Func(func(_ context.Context, req card.Request) ([]byte, error) {
		if req.Text == "slow" {
			close(started)
			<-release
		}
		return []byte(req.Text), nil
	})

	var c collector
	p := New(r, time.Hour, c.add, zerolog.Nop())
	req := card.DefaultRequest()

	req.Text = "slow"
	p.Update(req)
	done := make(chan struct{})
	go func() {
		p.Flush()
		close(done)
	}()
	<-started

	req.Text = "fast"
	gen := p.Update(req)
	close(release)
	<-done
	assert.Empty(t, c.snapshot(), "superseded render must be discarded")

	p.Flush()
	got := c.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, gen, got[0].Generation)
	assert.Equal(t, []byte("fast"), got[0].Image)
}

func TestPreviewerClose(t *testing.T) {
	var c collector
	p := New(echo(), time.Hour, c.add, zerolog.Nop())
	p.Update(card.DefaultRequest())
	p.Close()
	p.Flush()
	assert.Zero(t, p.Update(card.DefaultRequest()))
	assert.Empty(t, c.snapshot())
}
