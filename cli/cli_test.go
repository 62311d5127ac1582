package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/config"
	"github.com/ByLCY/captioncard/errors"
)

// sandbox 把配置与日志目录都指向临时目录。
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeImage(t *testing.T, path string) (string, image.Config) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return format, cfg
}

func TestRenderCommand(t *testing.T) {
	dir := sandbox(t)
	out := filepath.Join(dir, "nested", "hello.png")

	stdout, err := execute(t, "render", "-t", "Hello World", "--bg", "sunset", "--shapes", "circles",
		"--width", "320", "--height", "200", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)

	format, cfg := decodeImage(t, out)
	assert.Equal(t, "png", format, "format follows the output extension")
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestRenderRequestFileWithDataAndOverrides(t *testing.T) {
	dir := sandbox(t)
	reqPath := write(t, filepath.Join(dir, "card.yaml"), `
text: "Hi ${user.name}\nsecond line"
width: 300
height: 300
background:
  kind: gradient
  colors: ["#ff0000", "#0000ff"]
`)
	dataPath := write(t, filepath.Join(dir, "data.json"), `{"user": {"name": "Ada"}}`)
	debugPath := filepath.Join(dir, "debug", "layout.json")
	out := filepath.Join(dir, "card.jpg")

	_, err := execute(t, "render", "-r", reqPath, "--data", dataPath, "--line", "0: bold", "--debug", debugPath, "-o", out)
	require.NoError(t, err)

	format, cfg := decodeImage(t, out)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, cfg.Width)

	raw, err := os.ReadFile(debugPath)
	require.NoError(t, err)
	var dump struct {
		Lines []struct {
			Paragraph int    `json:"paragraph"`
			Content   string `json:"content"`
			Style     struct {
				Bold bool `json:"bold"`
			} `json:"style"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(raw, &dump))
	require.Len(t, dump.Lines, 2)
	assert.Equal(t, "Hi Ada", dump.Lines[0].Content)
	assert.True(t, dump.Lines[0].Style.Bold)
	assert.False(t, dump.Lines[1].Style.Bold)
}

func TestRenderErrors(t *testing.T) {
	dir := sandbox(t)
	out := filepath.Join(dir, "x.jpg")

	_, err := execute(t, "render", "-t", "x", "--line", "0: size=huge", "-o", out)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)

	_, err = execute(t, "render", "-t", "${missing}", "--strict", "-o", out)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)

	_, err = execute(t, "render", "-t", "x", "--width", "0", "-o", out)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse), "got %v", err)

	_, err = execute(t, "render", "-t", "x", "--gradient", "#fff", "-o", out)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed renders must not write output")
}

func TestRenderMissingImageFallsBack(t *testing.T) {
	dir := sandbox(t)
	out := filepath.Join(dir, "fallback.png")
	_, err := execute(t, "render", "-t", "x", "--image", filepath.Join(dir, "nope.png"),
		"--width", "100", "--height", "100", "-o", out)
	require.NoError(t, err)
	_, cfg := decodeImage(t, out)
	assert.Equal(t, 100, cfg.Width)
}

func TestBuildRequestPrecedence(t *testing.T) {
	dir := sandbox(t)
	reqPath := write(t, filepath.Join(dir, "card.yaml"), "text: from file\nbold: true\nlineOverrides:\n  1:\n    italic: true\n")

	cfg, err := config.Load(config.LoadOptions{Overrides: map[string]interface{}{"render.width": 500}})
	require.NoError(t, err)

	var flags requestFlags
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"-r", reqPath, "-t", `a\nb`, "--line", "1: underline"}))

	req, err := flags.build(fs, baseRequest(cfg))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", req.Text, "flag beats request file")
	assert.True(t, req.Bold, "file value kept when flag not set")
	assert.Equal(t, 500, req.Width, "config size used when file has none")
	require.Contains(t, req.LineOverrides, 1)
	assert.True(t, *req.LineOverrides[1].Italic)
	assert.True(t, *req.LineOverrides[1].Underline)
}

func TestBatchCommand(t *testing.T) {
	dir := sandbox(t)
	manifest := write(t, filepath.Join(dir, "manifest.yaml"), `
requests:
  - text: "one ${n}"
  - text: "two"
    shapes: lines
  - text: "three"
    backgroundId: ocean
`)
	dataPath := write(t, filepath.Join(dir, "data.yaml"), "n: 1\n")
	outDir := filepath.Join(dir, "out")

	stdout, err := execute(t, "batch", manifest, "-o", outDir, "-j", "2", "--format", "png",
		"--width", "120", "--height", "80", "--data", dataPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3")

	for _, name := range []string{"card-001.png", "card-002.png", "card-003.png"} {
		format, cfg := decodeImage(t, filepath.Join(outDir, name))
		assert.Equal(t, "png", format)
		assert.Equal(t, 120, cfg.Width)
	}
}

func TestBatchRateLimited(t *testing.T) {
	dir := sandbox(t)
	t.Setenv("CAPTIONCARD_BATCH_RATE_INTERVAL", "1ms")
	manifest := write(t, filepath.Join(dir, "m.yaml"), "requests:\n  - text: a\n  - text: b\n")
	_, err := execute(t, "batch", manifest, "-o", filepath.Join(dir, "o"), "--prefix", "x", "--width", "64", "--height", "64")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "o", "x-002.jpg"))
	assert.NoError(t, err)
}

func TestBatchErrors(t *testing.T) {
	dir := sandbox(t)
	empty := write(t, filepath.Join(dir, "empty.yaml"), "requests: []\n")
	_, err := execute(t, "batch", empty)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)

	bad := write(t, filepath.Join(dir, "bad.yaml"), "requests:\n  - width: -5\n")
	_, err = execute(t, "batch", bad, "-o", filepath.Join(dir, "o"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)

	_, err = execute(t, "batch")
	assert.Error(t, err)
}

func TestCatalogCommand(t *testing.T) {
	sandbox(t)
	stdout, err := execute(t, "catalog")
	require.NoError(t, err)
	for _, want := range []string{"FONTS", "COLORS", "BACKGROUNDS", "SHAPES", "go-mono", "sunset"} {
		assert.Contains(t, stdout, want)
	}

	stdout, err = execute(t, "catalog", "shapes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bubbles")
	assert.NotContains(t, stdout, "FONTS")

	stdout, err = execute(t, "catalog", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "default_font")

	_, err = execute(t, "catalog", "textures")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	dir := sandbox(t)
	path := filepath.Join(dir, "cfg", "config.toml")

	stdout, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	_, err = execute(t, "--config", path, "config", "init")
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	_, err = execute(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	t.Setenv("CAPTIONCARD_RENDER_QUALITY", "55")
	stdout, err = execute(t, "--config", path, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "quality:")
	assert.Contains(t, stdout, "55")

	// 未指定 --config 时写到 XDG 目录
	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config", "captioncard", "config.toml"))
	assert.NoError(t, err)
}

func TestVersionAndMan(t *testing.T) {
	dir := sandbox(t)
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "captioncard version")

	manDir := filepath.Join(dir, "man")
	require.NoError(t, os.MkdirAll(manDir, 0o755))
	_, err = execute(t, "man", "--dir", manDir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(manDir, "captioncard-render.1"))
	assert.NoError(t, err)
}

func TestWatchRendersAndStops(t *testing.T) {
	dir := sandbox(t)
	reqPath := write(t, filepath.Join(dir, "card.yaml"), "text: first\nwidth: 80\nheight: 60\n")
	out := filepath.Join(dir, "watch.png")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "-r", reqPath, "-o", out})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	write(t, reqPath, "text: second edit\nwidth: 80\nheight: 60\nbackground:\n  kind: solid\n  color: \"#ff0000\"\n")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && len(data) > 0 && !bytes.Equal(data, first)
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRequiresRequest(t *testing.T) {
	sandbox(t)
	_, err := execute(t, "watch")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenderHelpListsSizes(t *testing.T) {
	sandbox(t)
	stdout, err := execute(t, "render", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "xs, sm, md, lg, xl")
}

func TestBatchRejectsUnknownManifestField(t *testing.T) {
	dir := sandbox(t)
	manifest := write(t, filepath.Join(dir, "m.yaml"), "requests:\n  - text: a\n    fontid: go\n")
	_, err := execute(t, "batch", manifest, "-o", filepath.Join(dir, "o"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "got %v", err)
	assert.Contains(t, err.Error(), "fontid")
}

func TestBaseRequestUsesConfigSize(t *testing.T) {
	sandbox(t)
	cfg, err := config.Load(config.LoadOptions{Overrides: map[string]interface{}{"render.width": 640}})
	require.NoError(t, err)
	req := baseRequest(cfg)
	assert.Equal(t, 640, req.Width)
	assert.Equal(t, card.DefaultRequest().Text, req.Text)
}
