// Package cli implements the namesplit command-line interface.
//
// This package provides commands for splitting name sheets into pages,
// batch-processing directories, rendering previews and blank templates,
// and managing the preview cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/namesheet/namesplit/pkg/buildinfo"
	"github.com/namesheet/namesplit/pkg/cache"
	"github.com/namesheet/namesplit/pkg/config"
	"github.com/namesheet/namesplit/pkg/job"
	"github.com/namesheet/namesplit/pkg/preview"
	"github.com/namesheet/namesplit/pkg/settings"
)

// appName is the application name used for directories and display.
const appName = "namesplit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Namesplit cuts manga name sheets into pages",
		Long:         `Namesplit partitions a scanned or layered name sheet into a grid of page images, merging source layers into a configured output stack along the way.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.splitCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newEngine creates a job engine sharing the CLI logger.
func (c *CLI) newEngine() *job.Engine {
	return job.NewEngine(c.Logger)
}

// newPreviewRenderer creates a cached preview renderer. With noCache the
// null cache is used and every preview renders from scratch.
func (c *CLI) newPreviewRenderer(noCache bool) *preview.CachedRenderer {
	store, err := newCache(noCache)
	if err != nil {
		c.Logger.Warn("preview cache unavailable", "err", err)
		store = cache.NewNullCache()
	}
	return preview.NewCachedRenderer(store, nil)
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/namesplit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadConfig resolves the configuration for one invocation: an explicit
// --config path wins, then sidecar discovery beside the image, then the
// built-in defaults. The chosen config path is remembered in settings.
func (c *CLI) loadConfig(configPath, imagePath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if store, err := settings.NewStore(""); err == nil {
			doc := store.Load()
			doc.LastConfigPath = configPath
			_ = store.Save(doc)
		}
		return &cfg, nil
	}
	if imagePath != "" {
		cfg := config.FindForImage(imagePath, config.Default())
		return &cfg, nil
	}
	cfg := config.Default()
	return &cfg, nil
}

// rememberInput records imagePath in the recent-inputs list.
func rememberInput(imagePath string) {
	store, err := settings.NewStore("")
	if err != nil {
		return
	}
	doc := store.Load()
	if abs, err := filepath.Abs(imagePath); err == nil {
		imagePath = abs
	}
	doc.AddRecentInput(imagePath)
	_ = store.Save(doc)
}
