package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/namesheet/namesplit/pkg/config"
	nserr "github.com/namesheet/namesplit/pkg/errors"
	"github.com/namesheet/namesplit/pkg/job"
)

// batchCommand creates the "batch" command for splitting a directory of
// sheets.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		configPath string
		outDir     string
		plain      bool
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Split every name sheet in a directory",
		Long: `Batch scans a directory for raster and OpenRaster images and splits
each one sequentially. Per-image configuration is discovered beside
each image (<stem>_config.toml, <stem>.toml, then namesplit.toml in
the directory) unless --config forces one for all images. A single
image's failure does not stop the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			var override *config.Config
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				override = &cfg
			}

			token := job.NewCancelToken()
			go func() {
				<-cmd.Context().Done()
				token.Cancel()
			}()

			opts := job.BatchOptions{
				Dir:            dir,
				ConfigOverride: override,
				OutDir:         outDir,
				Cancel:         token,
			}

			var batch *job.BatchResult
			var err error
			if plain {
				batch, err = c.runBatchPlain(cmd, opts)
			} else {
				batch, err = c.runBatchTUI(cmd, opts, token)
			}
			if err != nil {
				return err
			}

			c.printBatchSummary(batch)
			if batch.Failed > 0 {
				return fmt.Errorf("%d of %d images failed", batch.Failed, len(batch.Items))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration applied to every image, disabling sidecar discovery")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "base output directory, one subdirectory per image")
	cmd.Flags().BoolVar(&plain, "plain", false, "line-based output instead of the interactive view")

	return cmd
}

// runBatchPlain drives the batch with plain line output, suitable for
// scripts and CI.
func (c *CLI) runBatchPlain(cmd *cobra.Command, opts job.BatchOptions) (*job.BatchResult, error) {
	opts.OnImage = func(index, total int, path string) {
		printInfo("[%d/%d] %s", index+1, total, filepath.Base(path))
	}
	return c.newEngine().RunBatch(cmd.Context(), opts)
}

// runBatchTUI drives the batch behind a bubbletea progress view. The
// engine runs in its own goroutine and streams progress into the
// program; quitting the view cancels the shared token and waits for the
// in-flight page to finish.
func (c *CLI) runBatchTUI(cmd *cobra.Command, opts job.BatchOptions, token *job.CancelToken) (*job.BatchResult, error) {
	model := newBatchModel(token)
	program := tea.NewProgram(model, tea.WithContext(cmd.Context()))

	opts.OnImage = func(index, total int, path string) {
		program.Send(imageStartMsg{index: index, total: total, path: path})
	}
	opts.Progress = func(ev job.ProgressEvent) {
		if ev.Phase == job.PhaseRender {
			program.Send(pageProgressMsg{done: ev.Done, total: ev.Total})
		}
	}

	type batchOutcome struct {
		result *job.BatchResult
		err    error
	}
	outcome := make(chan batchOutcome, 1)
	go func() {
		result, err := c.newEngine().RunBatch(cmd.Context(), opts)
		outcome <- batchOutcome{result: result, err: err}
		program.Send(batchDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		token.Cancel()
	}
	out := <-outcome
	return out.result, out.err
}

func (c *CLI) printBatchSummary(batch *job.BatchResult) {
	if batch == nil {
		return
	}
	for _, item := range batch.Items {
		name := filepath.Base(item.ImagePath)
		switch {
		case item.Result != nil && item.Result.Cancelled:
			printInfo("%s: cancelled after %d pages", name, len(item.Result.PagesWritten))
		case item.Err != nil:
			printError("%s: %s", name, nserr.UserMessage(item.Err))
		case item.Result != nil && !item.Result.Success:
			printError("%s: %d pages failed", name, len(item.Result.Errors))
		default:
			printSuccess("%s: %d pages", name, len(item.Result.PagesWritten))
			printFile(item.OutDir)
		}
	}

	if batch.Cancelled {
		printWarning("Batch cancelled: %d done, %d failed, rest skipped", batch.Succeeded, batch.Failed)
		return
	}
	printSuccess("Batch complete: %d succeeded, %d failed", batch.Succeeded, batch.Failed)
}
