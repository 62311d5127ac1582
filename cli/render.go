package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/config"
	"github.com/ByLCY/captioncard/errors"
	"github.com/ByLCY/captioncard/layout"
	"github.com/ByLCY/captioncard/logging"
	canvasrenderer "github.com/ByLCY/captioncard/renderer/canvas"
)

// outputFlags 对应配置中的 [render] 段，显式设置时作为最高优先级覆盖。
type outputFlags struct {
	format     string
	quality    int
	seed       uint64
	width      int
	height     int
	shapeColor string
}

func (o *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.format, "format", "", "output format: jpeg or png (default from config)")
	fs.IntVar(&o.quality, "quality", 0, "JPEG quality 1-100")
	fs.Uint64Var(&o.seed, "seed", 0, "seed for decorative shapes")
	fs.IntVar(&o.width, "width", 0, "canvas width in px")
	fs.IntVar(&o.height, "height", 0, "canvas height in px")
	fs.StringVar(&o.shapeColor, "shape-color", "", "color of decorative shapes")
}

func (o *outputFlags) overrides(fs *pflag.FlagSet) map[string]interface{} {
	m := map[string]interface{}{}
	if fs.Changed("format") {
		m["render.format"] = o.format
	}
	if fs.Changed("quality") {
		m["render.quality"] = o.quality
	}
	if fs.Changed("seed") {
		m["render.seed"] = o.seed
	}
	if fs.Changed("width") {
		m["render.width"] = o.width
	}
	if fs.Changed("height") {
		m["render.height"] = o.height
	}
	if fs.Changed("shape-color") {
		m["render.shape_color"] = o.shapeColor
	}
	return m
}

// applySize 让显式的 --width/--height 优先于请求文件。
func (o *outputFlags) applySize(fs *pflag.FlagSet, req *card.Request) {
	if fs.Changed("width") {
		req.Width = o.width
	}
	if fs.Changed("height") {
		req.Height = o.height
	}
}

func newRenderer(cfg *config.Config) *canvasrenderer.Renderer {
	opts := cfg.RendererOptions()
	opts.Logger = logging.GetLogger("renderer")
	return canvasrenderer.New(opts)
}

type renderOptions struct {
	req   requestFlags
	out   outputFlags
	path  string
	debug string
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single caption card",
		Long: `Render draws one card and writes it to --out.

The request starts from the configured defaults, then a --request file,
then individual flags, then --line overrides. Placeholders like
${user.name} are filled from --data.`,
		Example: `  captioncard render -t "Hello World" --bg sunset -o hello.jpg
  captioncard render -r card.yaml --data data.json --line '0: bold size=lg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd, root, opts)
		},
	}
	fs := cmd.Flags()
	opts.req.register(fs)
	opts.out.register(fs)
	fs.StringVarP(&opts.path, "out", "o", "", "output file (default card.<ext>)")
	fs.StringVar(&opts.debug, "debug", "", "write the layout result as JSON to this path")
	return cmd
}

func runRender(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.GetLogger("cli.render")
	done := logging.LogOperationStart(logger, "render")
	defer done()

	fs := cmd.Flags()
	overrides := opts.out.overrides(fs)
	// 未指定 --format 时按输出文件扩展名推断
	if ext := strings.TrimPrefix(filepath.Ext(opts.path), "."); ext != "" && !fs.Changed("format") {
		if f, err := canvasrenderer.ParseFormat(ext); err == nil {
			overrides["render.format"] = string(f)
		}
	}
	cfg, err := root.loadConfig(overrides)
	if err != nil {
		return err
	}

	req, err := opts.req.build(fs, baseRequest(cfg))
	if err != nil {
		return err
	}
	opts.out.applySize(fs, &req)
	req = prepareAssets(ctx, cfg, dirOf(opts.req.requestFile), req)

	r := newRenderer(cfg)
	frame, err := r.Render(ctx, req)
	if err != nil {
		return err
	}
	if opts.debug != "" {
		if err := writeDebug(frame.Layout, opts.debug); err != nil {
			return err
		}
	}

	format, _ := canvasrenderer.ParseFormat(cfg.Render.Format)
	data, err := canvasrenderer.Encode(frame.Image, format, cfg.Render.Quality)
	if err != nil {
		return err
	}
	path := opts.path
	if path == "" {
		path = "card" + format.Ext()
	}
	if err := writeOutput(path, data); err != nil {
		return err
	}

	logger.Info().
		Str("path", path).
		Int("lines", len(frame.Layout.Lines)).
		Float64("fontSize", frame.Layout.BaseFontSize).
		Msg("卡片已生成")
	fmt.Fprintf(cmd.OutOrStdout(), "已生成：%s\n", path)
	return nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "创建输出目录 %s 失败", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "写入 %s 失败", path)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
