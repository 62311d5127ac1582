package layout

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/captioncard/card"
	"github.com/ByLCY/captioncard/errors"
	"github.com/ByLCY/captioncard/style"
)

// Build 根据请求执行分段、逐段样式解析、折行与纵向定位，返回 RenderLine 序列。
// req 应已经过 Validate 与 Normalize。
func Build(req card.Request, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, errors.New(errors.ErrInternal, "layout: typesetter is required")
	}
	if opts.Presets == nil {
		return nil, errors.New(errors.ErrInternal, "layout: presets are required")
	}

	width := float64(req.Width)
	height := float64(req.Height)
	resolver := style.NewResolver(req, opts.Presets, opts.Logger)

	res := &Result{
		Width:         width,
		Height:        height,
		MaxWidth:      width * MaxWidthRatio,
		BaseFontSize:  resolver.BaseFontSize(),
		Align:         req.Align,
		VerticalAlign: req.VerticalAlign,
	}

	for i, para := range SplitParagraphs(req.Text) {
		st := resolver.Resolve(i)
		face := FaceOf(st)
		lines, err := wrap(para, res.MaxWidth, face, opts.Typesetter)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "layout: measure paragraph %d", i)
		}
		for _, ln := range lines {
			res.Lines = append(res.Lines, RenderLine{
				Paragraph: i,
				Content:   ln.content,
				Width:     ln.width,
				Style:     st,
			})
		}
	}

	// 行高只取基准字号，覆盖项改变的字号不影响行距
	lineSpacing := req.LineSpacing
	if lineSpacing <= 0 {
		lineSpacing = card.DefaultLineSpacing
	}
	res.LineHeight = res.BaseFontSize * lineSpacing
	res.TotalHeight = float64(len(res.Lines)) * res.LineHeight
	res.StartY = startY(req.VerticalAlign, height, res.TotalHeight, res.LineHeight)
	for i := range res.Lines {
		res.Lines[i].Baseline = res.StartY + float64(i)*res.LineHeight
	}

	opts.Logger.Debug().
		Int("lines", len(res.Lines)).
		Float64("baseFontSize", res.BaseFontSize).
		Float64("startY", res.StartY).
		Msg("layout built")
	return res, nil
}

// SplitParagraphs 按换行拆分段落，保留空段落。文本先做 NFC 规范化，\r 被丢弃。
func SplitParagraphs(text string) []string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r", "")
	return strings.Split(text, "\n")
}

func startY(v card.VerticalAlign, height, total, lineHeight float64) float64 {
	switch v {
	case card.VAlignTop:
		return height*0.15 + lineHeight/2
	case card.VAlignBottom:
		return height*0.85 - total + lineHeight/2
	default:
		return (height-total)/2 + lineHeight/2
	}
}

type measuredLine struct {
	content string
	width   float64
}

// wrap 贪心折行：逐词累加，超出 maxWidth 时提交当前行。单词本身超宽时整词放置，不断字。
// 按单个空格切分，连续空格会保留为空词。
func wrap(para string, maxWidth float64, face FaceSpec, ts Typesetter) ([]measuredLine, error) {
	words := strings.Split(para, " ")
	var (
		out        []measuredLine
		current    string
		currentW   float64
		hasCurrent bool
	)
	for _, word := range words {
		test := word
		if hasCurrent {
			test = current + " " + word
		}
		w, err := ts.TextWidth(test, face)
		if err != nil {
			return nil, fmt.Errorf("measure %q: %w", test, err)
		}
		if w > maxWidth && hasCurrent && current != "" {
			out = append(out, measuredLine{content: current, width: currentW})
			current = word
			currentW, err = ts.TextWidth(word, face)
			if err != nil {
				return nil, fmt.Errorf("measure %q: %w", word, err)
			}
			continue
		}
		current, currentW, hasCurrent = test, w, true
	}
	out = append(out, measuredLine{content: current, width: currentW})
	return out, nil
}
