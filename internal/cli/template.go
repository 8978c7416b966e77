package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/template"
)

// templateCommand creates the "template" command: a blank printable grid
// sheet at a standard paper size.
func (c *CLI) templateCommand() *cobra.Command {
	var (
		configPath  string
		outPath     string
		paper       string
		orientation string
		rows        int
		cols        int
		dpi         float64
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate a blank grid template sheet",
		Long: fmt.Sprintf(`Template renders a white sheet at a standard paper size with the grid
drawn on top, for printing as a drawing guide. Supported paper sizes:
%s (B sizes are JIS). The grid comes from the resolved configuration;
--rows, --cols and --dpi override it in place.`, strings.Join(template.Sizes(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(configPath, "")
			if err != nil {
				return err
			}
			if rows > 0 {
				cfg.Grid.Rows = rows
			}
			if cols > 0 {
				cfg.Grid.Cols = cols
			}
			if dpi > 0 {
				cfg.Grid.DPI = dpi
			}

			sheet, cells, err := template.Generate(cfg, paper, orientation)
			if err != nil {
				printError("%s", nserr.UserMessage(err))
				return err
			}

			if outPath == "" {
				outPath = fmt.Sprintf("template_%s_%s.png", strings.ToLower(paper), strings.ToLower(orientation))
			}
			if err := template.Write(outPath, sheet); err != nil {
				printError("%s", nserr.UserMessage(err))
				return err
			}

			bounds := sheet.Bounds()
			printSuccess("Template ready: %s %s, %dx%d at %g dpi, %d pages",
				paper, orientation, bounds.Dx(), bounds.Dy(), cfg.Grid.DPI, len(cells))
			printFile(outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a namesplit.toml configuration")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "template file path (default \"template_<paper>_<orientation>.png\")")
	cmd.Flags().StringVar(&paper, "paper", "b4", "paper size: "+strings.Join(template.Sizes(), ", "))
	cmd.Flags().StringVar(&orientation, "orientation", template.Portrait, "portrait or landscape")
	cmd.Flags().IntVar(&rows, "rows", 0, "override grid rows")
	cmd.Flags().IntVar(&cols, "cols", 0, "override grid cols")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "override grid dpi")

	return cmd
}
