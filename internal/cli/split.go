package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/job"
)

// splitCommand creates the "split" command, the core single-image run.
func (c *CLI) splitCommand() *cobra.Command {
	var (
		configPath string
		outDir     string
		testPage   int
	)

	cmd := &cobra.Command{
		Use:   "split <image>",
		Short: "Split one name sheet into page files",
		Long: `Split partitions a raster or OpenRaster name sheet into a grid of
page images according to the resolved configuration. Configuration is
taken from --config when given, otherwise from a sidecar file beside
the image, otherwise from built-in defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := args[0]

			cfg, err := c.loadConfig(configPath, imagePath)
			if err != nil {
				return err
			}
			rememberInput(imagePath)

			token := job.NewCancelToken()
			go func() {
				<-cmd.Context().Done()
				token.Cancel()
			}()

			p := newProgress(c.Logger)
			res, err := c.newEngine().Run(cmd.Context(), job.Options{
				Config:    cfg,
				ImagePath: imagePath,
				OutDir:    outDir,
				TestPage:  testPage,
				Cancel:    token,
			})
			if err != nil {
				printError("%s", nserr.UserMessage(err))
				return err
			}

			for _, w := range res.Warnings {
				printWarning("%s", w)
			}
			if res.Cancelled {
				printInfo("Cancelled after %d pages", len(res.PagesWritten))
				return nil
			}

			p.done(fmt.Sprintf("Wrote %d pages", len(res.PagesWritten)))
			printSuccess("Split complete")
			printRunStats(len(res.PagesWritten), len(res.Errors), len(res.Warnings))
			printDetail("Output: %s", res.OutDir)
			for _, rec := range res.Errors {
				printError("page %d: %s", rec.Page, nserr.UserMessage(rec.Err))
			}
			if !res.Success {
				return fmt.Errorf("%d pages failed", len(res.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a namesplit.toml configuration")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default \"<image stem>_pages\")")
	cmd.Flags().IntVarP(&testPage, "page", "p", 0, "render only the given 1-based page")

	return cmd
}
