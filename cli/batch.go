package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ByLCY/captioncard/binding"
	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/config"
	"github.com/ByLCY/captioncard/errors"
	"github.com/ByLCY/captioncard/logging"
	canvasrenderer "github.com/ByLCY/captioncard/renderer/canvas"
)

type batchOptions struct {
	out      outputFlags
	outDir   string
	prefix   string
	dataFile string
	workers  int
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch <manifest.yaml>",
		Short: "Render every request in a manifest",
		Long: `Batch renders a YAML manifest whose top-level "requests" list holds
card requests. Each entry starts from the configured defaults. Cards are
written to --out-dir as <prefix>-001.<ext>, <prefix>-002.<ext>, ...

Concurrency and rate limiting come from the [batch] config section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			overrides := opts.out.overrides(fs)
			if fs.Changed("workers") {
				overrides["batch.concurrency"] = opts.workers
			}
			cfg, err := root.loadConfig(overrides)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			reqs, err := loadManifest(args[0], baseRequest(cfg))
			if err != nil {
				return err
			}
			for i := range reqs {
				opts.out.applySize(fs, &reqs[i])
			}
			if opts.dataFile != "" {
				data, err := readData(opts.dataFile)
				if err != nil {
					return err
				}
				b := binding.Binder{Data: data}
				for i := range reqs {
					if reqs[i], err = b.ApplyRequest(reqs[i]); err != nil {
						return err
					}
				}
			}
			paths, err := runBatch(ctx, cfg, reqs, filepath.Dir(args[0]), opts.outDir, opts.prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 %d 张卡片：%s\n", len(paths), opts.outDir)
			return nil
		},
	}
	fs := cmd.Flags()
	opts.out.register(fs)
	fs.StringVarP(&opts.outDir, "out-dir", "o", "out", "output directory")
	fs.StringVar(&opts.prefix, "prefix", "card", "output file name prefix")
	fs.StringVar(&opts.dataFile, "data", "", "YAML/JSON data bound into every request")
	fs.IntVarP(&opts.workers, "workers", "j", 0, "concurrent renders (default from config)")
	return cmd
}

func loadManifest(path string, base card.Request) ([]card.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "无法打开清单 %s", path)
	}
	defer f.Close()
	reqs, err := card.DecodeList(f, base)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "清单 %s 不合法", path)
	}
	if len(reqs) == 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "清单 %s 中没有请求", path)
	}
	return reqs, nil
}

// runBatch 并发渲染 reqs，每个请求使用独立画布。任一失败时取消其余任务并返回该错误。
func runBatch(ctx context.Context, cfg *config.Config, reqs []card.Request, baseDir, outDir, prefix string) ([]string, error) {
	logger := logging.GetLogger("cli.batch")
	done := logging.LogOperationStart(logger, "batch")
	defer done()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "创建输出目录 %s 失败", outDir)
	}

	r := newRenderer(cfg)
	format, _ := canvasrenderer.ParseFormat(cfg.Render.Format)
	paths := make([]string, len(reqs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Batch.Concurrency)

	// RateInterval 为 0 时不限流
	var limiter *rate.Limiter
	if cfg.Batch.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Batch.RateInterval), cfg.Batch.Burst)
	}

	var rendered atomic.Int32
	for i, req := range reqs {
		i, req := i, req
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					return err
				}
			}
			req = prepareAssets(egCtx, cfg, baseDir, req)
			data, err := r.Generate(egCtx, req)
			if err != nil {
				return fmt.Errorf("第 %d 个请求渲染失败: %w", i+1, err)
			}
			path := filepath.Join(outDir, fmt.Sprintf("%s-%03d%s", prefix, i+1, format.Ext()))
			if err := writeOutput(path, data); err != nil {
				return err
			}
			paths[i] = path
			logger.Debug().Int("index", i+1).Int32("done", rendered.Add(1)).Str("path", path).Msg("卡片已生成")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	logger.Info().Int("count", len(paths)).Str("dir", outDir).Msg("批量渲染完成")
	return paths, nil
}
