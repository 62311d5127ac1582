package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/httpkit"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/errors"
)

// DefaultHTTPTimeout 远程背景图的下载超时。
const DefaultHTTPTimeout = 30 * time.Second

// Fetcher 下载远程资源，httpkit.Client 满足该接口。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Loader 从本地路径或 http(s) URL 读取资源字节。相对路径以 BaseDir 为根。
type Loader struct {
	HTTP    Fetcher
	BaseDir string
}

// NewLoader creates a loader backed by an httpkit client.
func NewLoader(timeout time.Duration, baseDir string) *Loader {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &Loader{HTTP: httpkit.New(timeout), BaseDir: baseDir}
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load 读取 src 指向的字节，失败时返回 ASSET_FETCH。
func (l *Loader) Load(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.New(errors.ErrAssetFetch, "资源地址为空")
	}
	if IsRemote(src) {
		if l.HTTP == nil {
			return nil, errors.Newf(errors.ErrAssetFetch, "未配置 HTTP 客户端，无法下载 %s", src)
		}
		data, err := l.HTTP.FetchBytes(ctx, src)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrAssetFetch, "下载 %s 失败", src)
		}
		return data, nil
	}
	path := src
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrAssetFetch, "读取 %s 失败", src)
	}
	return data, nil
}

// Prepare 为图片背景加载 ImageSrc 指向的字节。已有 Image 或非图片背景时原样返回。
// 返回错误时 req 不变，调用方可以选择继续渲染（解码阶段会退回黑色背景）。
func (l *Loader) Prepare(ctx context.Context, req card.Request) (card.Request, error) {
	bg := req.Background
	if bg.Kind != card.BackgroundImage || len(bg.Image) > 0 || bg.ImageSrc == "" {
		return req, nil
	}
	data, err := l.Load(ctx, bg.ImageSrc)
	if err != nil {
		return req, err
	}
	req.Background.Image = data
	return req, nil
}
