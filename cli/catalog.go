package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ByLCY/captioncard/catalog"
	"github.com/ByLCY/captioncard/errors"
)

var catalogSections = []string{"fonts", "colors", "backgrounds", "shapes"}

func newCatalogCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "catalog [fonts|colors|backgrounds|shapes]",
		Short:     "List the style presets",
		Long:      `Catalog prints the fonts, color swatches, background presets and shape kinds that request ids resolve against.`,
		ValidArgs: catalogSections,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(nil)
			if err != nil {
				return err
			}
			sections := catalogSections
			if len(args) == 1 {
				sections = args
			}
			return printCatalog(cmd.OutOrStdout(), &cfg.Catalog, sections)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged catalog as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(nil)
			if err != nil {
				return err
			}
			data, err := toml.Marshal(cfg.Catalog)
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "序列化预设目录失败")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return cmd
}

func printCatalog(w io.Writer, cat *catalog.Catalog, sections []string) error {
	for i, section := range sections {
		var data pterm.TableData
		switch section {
		case "fonts":
			data = pterm.TableData{{"ID", "Family", "Weight", "Category", "Styles"}}
			for _, f := range cat.Fonts {
				id := f.ID
				if id == cat.DefaultFont {
					id += " *"
				}
				data = append(data, []string{id, f.Family, f.Weight, f.Category, fontStyles(f)})
			}
		case "colors":
			data = pterm.TableData{{"ID", "Name", "Hex"}}
			for _, c := range cat.Colors {
				data = append(data, []string{c.ID, c.Name, c.Hex})
			}
		case "backgrounds":
			data = pterm.TableData{{"ID", "Name", "Kind", "Colors"}}
			for _, b := range cat.Backgrounds {
				colors := b.Color
				if len(b.Colors) > 0 {
					colors = strings.Join(b.Colors, " → ")
				}
				data = append(data, []string{b.ID, b.Name, b.Kind, colors})
			}
		case "shapes":
			data = pterm.TableData{{"ID", "Name", "Kind"}}
			for _, s := range cat.Shapes {
				kind := s.Kind
				if kind == "" {
					kind = s.ID
				}
				data = append(data, []string{s.ID, s.Name, kind})
			}
		default:
			return errors.Newf(errors.ErrInvalidInput, "未知的目录分区 %q", section)
		}

		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, strings.ToUpper(section))
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "渲染表格失败")
		}
		fmt.Fprintln(w, table)
	}
	return nil
}

func fontStyles(f catalog.Font) string {
	styles := []string{"regular"}
	if f.Bold != "" {
		styles = append(styles, "bold")
	}
	if f.Italic != "" {
		styles = append(styles, "italic")
	}
	if f.BoldItalic != "" {
		styles = append(styles, "bold-italic")
	}
	return strings.Join(styles, ", ")
}
