package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/captioncard/cli"
	"github.com/ByLCY/captioncard/errors"
)

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"})
	codeStyle  = lipgloss.NewStyle().Faint(true)
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError 输出错误；带错误码的错误只在末尾显示一次错误码，再逐行列出详情。
func printError(w io.Writer, err error) {
	text := err.Error()
	var ce *errors.CardError
	if stderrors.As(err, &ce) && ce.Code != errors.ErrUnknown {
		text = ce.Message
		if ce.Wrapped != nil {
			text += ": " + ce.Wrapped.Error()
		}
		text += " " + codeStyle.Render("["+string(ce.Code)+"]")
	}
	fmt.Fprintln(w, errorStyle.Render("错误: ")+text)
	for k, v := range errors.GetErrorDetails(err) {
		fmt.Fprintln(w, codeStyle.Render(fmt.Sprintf("  %s: %v", k, v)))
	}
}
