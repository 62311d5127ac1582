package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ByLCY/captioncard/catalog"
	"github.com/ByLCY/captioncard/errors"
	canvasrenderer "github.com/ByLCY/captioncard/renderer/canvas"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix 环境变量前缀：CAPTIONCARD_RENDER_QUALITY → render.quality。
const EnvPrefix = "CAPTIONCARD_"

const appName = "captioncard"

// Config 是合并后的完整配置。
type Config struct {
	Render  RenderConfig    `koanf:"render"`
	Assets  AssetsConfig    `koanf:"assets"`
	Batch   BatchConfig     `koanf:"batch"`
	Preview PreviewConfig   `koanf:"preview"`
	Catalog catalog.Catalog `koanf:"catalog"`

	k *koanf.Koanf
}

// RenderConfig 渲染默认值。
type RenderConfig struct {
	Width        int           `koanf:"width"`
	Height       int           `koanf:"height"`
	Format       string        `koanf:"format"`
	Quality      int           `koanf:"quality"`
	Seed         uint64        `koanf:"seed"`
	ShapeColor   string        `koanf:"shape_color"`
	FontCacheTTL time.Duration `koanf:"font_cache_ttl"`
}

// AssetsConfig 背景图加载。
type AssetsConfig struct {
	BaseDir     string        `koanf:"base_dir"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
}

// BatchConfig 批量渲染的并发与限流。RateInterval 为 0 时不限流。
type BatchConfig struct {
	Concurrency  int           `koanf:"concurrency"`
	RateInterval time.Duration `koanf:"rate_interval"`
	Burst        int           `koanf:"burst"`
}

// PreviewConfig 实时预览。
type PreviewConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// LoadOptions 控制配置来源。Path 为空时尝试 XDG 配置目录下的默认文件；
// Overrides 以点号路径为键，优先级最高（通常来自命令行参数）。
type LoadOptions struct {
	Path      string
	Overrides map[string]interface{}
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// DefaultTOML returns the embedded default configuration.
func DefaultTOML() []byte { return defaultConfig }

// DefaultPath 返回用户配置文件的默认位置。
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = xdg.ConfigHome
	}
	return filepath.Join(base, appName, "config.toml")
}

// Load 按 内置默认 → 用户文件 → 环境变量 → Overrides 的顺序合并配置。
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. 内置默认值与预设目录
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "解析内置默认配置失败")
	}
	ck := koanf.New(".")
	if err := ck.Load(&rawBytesProvider{bytes: catalog.DefaultTOML()}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "解析内置预设目录失败")
	}
	if err := k.MergeAt(ck, "catalog"); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "合并内置预设目录失败")
	}

	// 2. 用户配置文件
	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "解析配置文件 %s 失败", path)
		}
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "读取配置文件 %s 失败", path)
	}

	// 3. 环境变量：第一个下划线分隔段落，其余保留在键名中
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "读取环境变量失败")
	}

	// 4. 命令行覆盖
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "应用命令行覆盖失败")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "配置结构不合法")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.k = k
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

func (c *Config) validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.Newf(errors.ErrConfigParse, "render 尺寸必须为正数: %dx%d", c.Render.Width, c.Render.Height)
	}
	if _, err := canvasrenderer.ParseFormat(c.Render.Format); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "render.format 不合法")
	}
	if c.Render.Quality < 1 || c.Render.Quality > 100 {
		return errors.Newf(errors.ErrConfigParse, "render.quality 必须在 1-100 之间，实际 %d", c.Render.Quality)
	}
	if c.Batch.Concurrency < 1 {
		c.Batch.Concurrency = 1
	}
	if c.Batch.Burst < 1 {
		c.Batch.Burst = 1
	}
	if err := c.Catalog.Check(); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "预设目录不合法")
	}
	return nil
}

// Marshal 以 toml 或 yaml 输出合并后的配置（保留原始写法，例如 "100ms"）。
func (c *Config) Marshal(format string) ([]byte, error) {
	if c.k == nil {
		return nil, errors.New(errors.ErrInternal, "配置未通过 Load 创建")
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return c.k.Marshal(yaml.Parser())
	default:
		return c.k.Marshal(toml.Parser())
	}
}

// RendererOptions 把渲染相关配置转换为渲染器选项（不含 Logger 与 Decoder）。
func (c *Config) RendererOptions() canvasrenderer.Options {
	format, _ := canvasrenderer.ParseFormat(c.Render.Format)
	cat := c.Catalog
	return canvasrenderer.Options{
		Presets:      &cat,
		Seed:         c.Render.Seed,
		Format:       format,
		Quality:      c.Render.Quality,
		ShapeColor:   c.Render.ShapeColor,
		FontCacheTTL: c.Render.FontCacheTTL,
	}
}

// WriteDefault 将内置默认配置写到 path；文件已存在且 force 为 false 时报错。
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Newf(errors.ErrConfigLoad, "配置文件已存在: %s", path).WithDetail("path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "创建目录 %s 失败", filepath.Dir(path))
	}
	if err := os.WriteFile(path, defaultConfig, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "写入 %s 失败", path)
	}
	return nil
}
