package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/preview"
	"github.com/namesheet/namesplit/pkg/settings"
)

// previewCommand creates the "preview" command: a downscaled render of
// the grid overlay, without splitting anything.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		configPath string
		outPath    string
		maxDim     int
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "preview <image>",
		Short: "Render a grid preview without splitting",
		Long: `Preview renders the sheet at reduced size with cell boundaries and
page numbers drawn on top, so a grid can be tuned before committing to
a full split. The flattened base image is cached, keyed on the file's
identity, which makes repeated previews after grid tweaks cheap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := args[0]

			cfg, err := c.loadConfig(configPath, imagePath)
			if err != nil {
				return err
			}

			if maxDim == 0 {
				if store, err := settings.NewStore(""); err == nil {
					maxDim = store.Load().PreviewMaxDim
				}
			}

			sp := newSpinnerWithContext(cmd.Context(), "rendering preview")
			sp.Start()
			pv, err := c.newPreviewRenderer(noCache).Render(cmd.Context(), cfg, imagePath, preview.Options{MaxDim: maxDim})
			if err != nil {
				sp.StopWithError(nserr.UserMessage(err))
				return err
			}
			sp.Stop()

			if outPath == "" {
				stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
				outPath = stem + "_preview.jpg"
			}
			if err := os.WriteFile(outPath, pv.Data, 0644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}

			printSuccess("Preview ready: %d pages at %dx%d", pv.Pages, pv.Width, pv.Height)
			printFile(outPath)
			printNextStep("Split for real", fmt.Sprintf("%s split %s", appName, imagePath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a namesplit.toml configuration")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "preview file path (default \"<image stem>_preview.jpg\")")
	cmd.Flags().IntVar(&maxDim, "max-dim", 0, "bound on the preview's longer edge in pixels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the preview cache")

	return cmd
}
