package card

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Decode 读取 YAML（或 JSON）格式的请求，未出现的字段保留 DefaultRequest 的值。
func Decode(r io.Reader) (Request, error) {
	req := DefaultRequest()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			return req, nil
		}
		return Request{}, fmt.Errorf("解析请求失败: %w", err)
	}
	return req, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) (Request, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeList 解析批量清单：顶层为 requests 列表，每项都以 base 为起点。
// 与 Decode 一样拒绝未知字段。
func DecodeList(r io.Reader, base Request) ([]Request, error) {
	var raw struct {
		Requests []yaml.Node `yaml:"requests"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析批量清单失败: %w", err)
	}
	out := make([]Request, 0, len(raw.Requests))
	for i := range raw.Requests {
		req := base
		req.LineOverrides = cloneOverrides(base.LineOverrides)
		if err := decodeNodeStrict(&raw.Requests[i], &req); err != nil {
			return nil, fmt.Errorf("解析第 %d 个请求失败: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}

// decodeNodeStrict 重新编码节点后以 KnownFields 解码；yaml.Node.Decode 不支持严格模式。
func decodeNodeStrict(node *yaml.Node, v interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func cloneOverrides(in map[int]LineOverride) map[int]LineOverride {
	if in == nil {
		return nil
	}
	out := make(map[int]LineOverride, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
