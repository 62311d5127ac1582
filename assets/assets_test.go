package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/errors"
)

type stubFetcher struct {
	data map[string][]byte
	urls []string
}

func (s *stubFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	if b, ok := s.data[url]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("404")
}

func TestLoadLocalRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bg.png"), []byte("png"), 0o644))

	l := &Loader{BaseDir: dir}
	data, err := l.Load(context.Background(), "bg.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = l.Load(context.Background(), "missing.png")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssetFetch))
}

func TestLoadRemote(t *testing.T) {
	f := &stubFetcher{data: map[string][]byte{"https://example.com/a.jpg": []byte("jpg")}}
	l := &Loader{HTTP: f}

	data, err := l.Load(context.Background(), "https://example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg"), data)

	_, err = l.Load(context.Background(), "HTTP://example.com/missing.jpg")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssetFetch))
	assert.Len(t, f.urls, 2)

	_, err = (&Loader{}).Load(context.Background(), "https://example.com/a.jpg")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssetFetch))
}

func TestPrepare(t *testing.T) {
	f := &stubFetcher{data: map[string][]byte{"https://example.com/a.jpg": []byte("jpg")}}
	l := &Loader{HTTP: f}

	req := card.DefaultRequest()
	out, err := l.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, out.Background.Image, "solid backgrounds are untouched")

	req.Background.Kind = card.BackgroundImage
	req.Background.ImageSrc = "https://example.com/a.jpg"
	out, err = l.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg"), out.Background.Image)

	req.Background.Image = []byte("inline")
	out, err = l.Prepare(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), out.Background.Image)
	assert.Len(t, f.urls, 1)

	req.Background.Image = nil
	req.Background.ImageSrc = "https://example.com/gone.jpg"
	out, err = l.Prepare(context.Background(), req)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAssetFetch))
	assert.Empty(t, out.Background.Image)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://x"))
	assert.True(t, IsRemote("http://x"))
	assert.False(t, IsRemote("/tmp/x.png"))
	assert.False(t, IsRemote("ftp://x"))
}
