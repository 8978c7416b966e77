package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/namesheet/namesplit/pkg/config"
)

// defaultConfigTemplate is written by "init". It spells out every section
// with its default so a new user can tune by editing rather than by
// reading documentation. Kept in sync with config.Default by a test.
const defaultConfigTemplate = `version = 1

[grid]
rows = 4
cols = 4
# rtl_ttb: right-to-left, top-to-bottom (Japanese manuscript order).
# ltr_ttb: left-to-right, top-to-bottom.
order = "rtl_ttb"
dpi = 300
# Margins and gutters take {value, unit} with unit "px" or "mm".
# margin = { value = 5, unit = "mm" }
# gutter = { value = 10, unit = "px" }

[merge]
# First matching rule wins. Patterns use glob syntax.
# [[merge.layer_rules]]
# pattern = "sketch*"
# output_layer = "draft"

[output]
page_basename = "page_{page:03d}"
layer_stack = ["flat"]
raster_ext = "png"
# pages: one flattened raster per page. layers: a directory per page.
layout = "pages"

[limits]
max_dim_px = 30000
on_exceed = "error"
`

// initCommand creates the "init" command, which writes a starter
// configuration file.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Long: `Init writes an annotated configuration file with the built-in defaults
spelled out. Without a path it writes ` + config.SidecarName + ` in the
current directory, where batch runs will discover it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.SidecarName
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					printError("%s already exists, pass --force to overwrite", path)
					return fmt.Errorf("%s already exists", path)
				}
			}

			if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			printSuccess("Wrote %s", path)
			printNextStep("Split a sheet with it", fmt.Sprintf("%s split <image>", appName))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
