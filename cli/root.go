// Package cli 实现 captioncard 命令行。
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/captioncard/config"
	"github.com/ByLCY/captioncard/logging"
)

// 由构建脚本通过 -ldflags 注入。
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type rootOptions struct {
	verbosity  int
	configPath string
}

// loadConfig 读取配置，overrides 来自子命令显式设置的参数。
func (o *rootOptions) loadConfig(overrides map[string]interface{}) (*config.Config, error) {
	return config.Load(config.LoadOptions{Path: o.configPath, Overrides: overrides})
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "captioncard",
		Short: "Render text captions onto image cards",
		Long: `captioncard draws text onto a fixed-size image card: solid, gradient or
photo backgrounds, optional decorative shapes, per-line styling, and
JPEG or PNG output.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/captioncard/config.toml)")

	root.AddCommand(
		newRenderCmd(opts),
		newBatchCmd(opts),
		newWatchCmd(opts),
		newCatalogCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
		newManCmd(root),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "captioncard version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
