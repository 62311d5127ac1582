package binding

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/errors"
)

// 占位符语法：${path.to.value}、${items[0].name}。
var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Binder 把数据填入文案模板。Strict 为 true 时缺失的路径会报错，否则保留原占位符。
type Binder struct {
	Data   map[string]any
	Strict bool
}

// Interpolate 将文本中的 ${path} 替换为 data 中的值，路径不存在时保留原占位符。
func Interpolate(text string, data map[string]any) string {
	out, _ := Binder{Data: data}.Apply(text)
	return out
}

// Apply 替换 text 中的全部占位符。
func (b Binder) Apply(text string) (string, error) {
	if len(b.Data) == 0 && !b.Strict {
		return text, nil
	}
	missing := map[string]struct{}{}
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := Lookup(b.Data, path)
		if !ok {
			missing[path] = struct{}{}
			return match
		}
		return format(val)
	})
	if b.Strict && len(missing) > 0 {
		paths := make([]string, 0, len(missing))
		for p := range missing {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		return "", errors.Newf(errors.ErrInvalidInput, "模板变量未定义: %s", strings.Join(paths, ", ")).
			WithDetail("missing", paths)
	}
	return out, nil
}

// ApplyRequest 对请求中的文案字段做插值，返回新的请求。
func (b Binder) ApplyRequest(req card.Request) (card.Request, error) {
	text, err := b.Apply(req.Text)
	if err != nil {
		return req, err
	}
	req.Text = text
	return req, nil
}

// Lookup 按点号路径取值，段内可带 [n] 下标。
func Lookup(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			list, isList := current.([]any)
			if !isList || idx < 0 || idx >= len(list) {
				return nil, false
			}
			current = list[idx]
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []int, bool) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil, true
	}
	name, rest := segment[:i], segment[i:]
	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, n)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
