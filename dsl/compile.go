package dsl

import (
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/errors"
)

// Overrides 解析脚本并转换为按段落序号索引的覆盖表。同一段落出现多次时按出现顺序合并。
func Overrides(input string) (map[int]card.LineOverride, error) {
	doc, err := ParseString(input)
	if err != nil {
		return nil, parseError(err)
	}
	return Compile(doc)
}

// Compile 将 AST 转换为覆盖表。
func Compile(doc *Document) (map[int]card.LineOverride, error) {
	out := map[int]card.LineOverride{}
	if doc == nil {
		return out, nil
	}
	for _, rule := range doc.Rules {
		var o card.LineOverride
		for _, p := range rule.Props {
			if err := apply(&o, p); err != nil {
				return nil, err
			}
		}
		out[rule.Line] = out[rule.Line].Merge(o)
	}
	return out, nil
}

func apply(o *card.LineOverride, p *Prop) error {
	key := strings.ToLower(p.Key)
	if flag, ok := strings.CutPrefix(key, "no-"); ok {
		if p.Value != nil {
			return propError(p, "%s 不接受取值", p.Key)
		}
		return setFlag(o, p, flag, false)
	}

	switch key {
	case "bold", "italic", "underline", "stroke":
		on := true
		if p.Value != nil {
			b, ok := parseBool(p.Value.Text())
			if !ok {
				return propError(p, "%s 需要布尔值，实际 %q", key, p.Value.Text())
			}
			on = b
		}
		return setFlag(o, p, key, on)
	case "size", "textsize":
		v := strings.ToLower(requireValue(p))
		size := card.TextSize(v)
		if _, ok := size.Multiplier(); !ok {
			return propError(p, "未知字号 %q", v)
		}
		o.TextSize = &size
	case "font", "fontid":
		v := requireValue(p)
		if v == "" {
			return propError(p, "font 需要取值")
		}
		o.FontID = &v
	case "color":
		v := requireValue(p)
		if v == "" {
			return propError(p, "color 需要取值")
		}
		if card.IsHexColor(v) {
			if _, err := card.ParseHex(v); err != nil {
				return propError(p, "颜色格式错误 %q", v)
			}
		}
		o.Color = &v
	default:
		return propError(p, "未知属性 %q", p.Key)
	}
	return nil
}

func setFlag(o *card.LineOverride, p *Prop, name string, on bool) error {
	v := on
	switch name {
	case "bold":
		o.Bold = &v
	case "italic":
		o.Italic = &v
	case "underline":
		o.Underline = &v
	case "stroke":
		o.Stroke = &v
	default:
		return propError(p, "未知开关 %q", p.Key)
	}
	return nil
}

func requireValue(p *Prop) string {
	return p.Value.Text()
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "on", "yes", "1":
		return true, true
	case "false", "off", "no", "0":
		return false, true
	}
	return false, false
}

func propError(p *Prop, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrInvalidInput, format, args...).
		WithDetail("line", p.Pos.Line).
		WithDetail("column", p.Pos.Column)
}

func parseError(err error) error {
	ce := errors.New(errors.ErrInvalidInput, "行覆盖脚本语法错误")
	ce.Wrapped = err
	if perr, ok := err.(participle.Error); ok {
		pos := perr.Position()
		ce.WithDetail("line", pos.Line).WithDetail("column", pos.Column)
	}
	return ce
}
