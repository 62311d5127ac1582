package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ByLCY/captioncard/errors"
	"github.com/ByLCY/captioncard/logging"
	"github.com/ByLCY/captioncard/preview"
	canvasrenderer "github.com/ByLCY/captioncard/renderer/canvas"
)

type watchOptions struct {
	req  requestFlags
	out  outputFlags
	path string
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render a card whenever its request file changes",
		Long: `Watch renders --request once, then again every time the request or
--data file is saved. Rapid edits are coalesced (see preview.debounce in
the config) and results superseded by a newer edit are discarded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.req.requestFile == "" {
				return errors.New(errors.ErrInvalidInput, "watch 需要 --request")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, root, opts)
		},
	}
	fs := cmd.Flags()
	opts.req.register(fs)
	opts.out.register(fs)
	fs.StringVarP(&opts.path, "out", "o", "", "output file (default card.<ext>)")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *watchOptions) error {
	logger := logging.GetLogger("cli.watch")
	fs := cmd.Flags()

	cfg, err := root.loadConfig(opts.out.overrides(fs))
	if err != nil {
		return err
	}
	format, _ := canvasrenderer.ParseFormat(cfg.Render.Format)
	path := opts.path
	if path == "" {
		path = "card" + format.Ext()
	}

	onResult := func(res preview.Result) {
		if res.Err != nil {
			logger.Error().Err(res.Err).Uint64("generation", res.Generation).Msg("预览渲染失败")
			return
		}
		if err := writeOutput(path, res.Image); err != nil {
			logger.Error().Err(err).Msg("写入预览失败")
			return
		}
		logger.Info().Uint64("generation", res.Generation).Str("path", path).Msg("预览已更新")
		fmt.Fprintf(cmd.OutOrStdout(), "已更新：%s\n", path)
	}
	p := preview.New(newRenderer(cfg), cfg.Preview.Debounce, onResult, logger)
	defer p.Close()

	baseDir := dirOf(opts.req.requestFile)
	update := func() {
		req, err := opts.req.build(fs, baseRequest(cfg))
		if err != nil {
			logger.Error().Err(err).Msg("请求无效，等待下一次修改")
			return
		}
		opts.out.applySize(fs, &req)
		p.Update(prepareAssets(ctx, cfg, baseDir, req))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "创建文件监听失败")
	}
	defer watcher.Close()

	// 监听所在目录：很多编辑器保存时会替换文件
	targets := map[string]bool{}
	for _, f := range []string{opts.req.requestFile, opts.req.dataFile} {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "无法解析路径 %s", f)
		}
		targets[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "监听 %s 失败", filepath.Dir(abs))
		}
	}

	update()
	p.Flush()
	logger.Info().Str("request", opts.req.requestFile).Dur("debounce", cfg.Preview.Debounce).Msg("开始监听")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("文件变化")
				update()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("文件监听出错")
		}
	}
}
