package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/config"
	"github.com/vanderheijden86/conceptnav/pkg/debug"
	"github.com/vanderheijden86/conceptnav/pkg/export"
	"github.com/vanderheijden86/conceptnav/pkg/hooks"
	"github.com/vanderheijden86/conceptnav/pkg/loader"
	"github.com/vanderheijden86/conceptnav/pkg/metrics"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand.
type cli struct {
	out    io.Writer
	errOut io.Writer

	configPath  string
	contentDir  string
	debugFlag   bool
	metricsFlag bool
	noHooks     bool

	cfg config.Config
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "conceptnav",
		Short:         "Render the concept navigation sidebar for a markdown content tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.reportMetrics()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "Path to a config file (default ./conceptnav.yaml, then the user config)")
	flags.StringVar(&c.contentDir, "content", "", "Content directory (overrides content_dir)")
	flags.BoolVar(&c.debugFlag, "debug", false, "Enable debug logging to stderr")
	flags.BoolVar(&c.metricsFlag, "metrics", false, "Print timing metrics as JSON to stderr")
	flags.BoolVar(&c.noHooks, "no-hooks", false, "Skip configured export hooks")

	root.AddCommand(
		c.renderCmd(),
		c.listCmd(),
		c.exportCmd(),
		c.watchCmd(),
		c.previewCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup() error {
	if c.debugFlag {
		debug.SetEnabled(true)
		debug.SetOutput(c.errOut)
	}
	if c.metricsFlag {
		metrics.SetEnabled(true)
	}

	cfg, used, err := config.Resolve(c.configPath)
	if err != nil {
		return err
	}
	if c.contentDir != "" {
		cfg.ContentDir = c.contentDir
	}
	c.cfg = cfg
	for _, w := range cfg.Warnings() {
		c.warn(w)
	}

	if used != "" {
		debug.Log("config loaded from %s", used)
	} else {
		debug.Log("no config file found, using defaults")
	}
	return nil
}

func (c *cli) reportMetrics() error {
	if !c.metricsFlag {
		return nil
	}
	data, err := json.MarshalIndent(metrics.AllTimingStats(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	fmt.Fprintln(c.errOut, string(data))
	return nil
}

func (c *cli) warn(msg string) {
	fmt.Fprintf(c.errOut, "Warning: %s\n", msg)
}

func (c *cli) renderer() *conceptnav.Renderer {
	return conceptnav.New(c.cfg.ConceptTable())
}

func (c *cli) loadPages(ctx context.Context) ([]model.Page, error) {
	opts := c.cfg.LoaderOptions()
	opts.WarningHandler = c.warn
	pages, err := loader.LoadPages(ctx, c.cfg.ContentDir, opts)
	if err != nil {
		return nil, err
	}
	debug.Log("loaded %d pages from %s", len(pages), c.cfg.ContentDir)
	return pages, nil
}

// exportBundle loads the content tree and writes the bundle to dir, running
// export hooks around the write.
func (c *cli) exportBundle(ctx context.Context, dir string) (export.Manifest, error) {
	debug.Section("export " + dir)
	start := time.Now()
	defer func() { debug.LogTiming("export", time.Since(start)) }()

	pages, err := c.loadPages(ctx)
	if err != nil {
		return export.Manifest{}, err
	}
	nav := c.renderer().Render(pages, conceptnav.Options{DisplayClass: c.cfg.DisplayClass})

	var executor *hooks.Executor
	if !c.noHooks && !c.cfg.Hooks.Empty() {
		executor = hooks.NewExecutor(c.cfg.Hooks, hooks.ExportContext{
			OutputDir:    dir,
			ContentDir:   c.cfg.ContentDir,
			PageCount:    len(pages),
			ConceptCount: len(nav.Items),
			Timestamp:    time.Now().UTC(),
		})
		if err := executor.RunPreExport(ctx); err != nil {
			c.hookSummary(executor)
			return export.Manifest{}, err
		}
	}

	m, err := export.WriteBundle(dir, export.Bundle{
		Pages:         pages,
		Nav:           nav,
		IncludeJSON:   c.cfg.Export.JSON,
		IncludeSQLite: c.cfg.Export.SQLite,
	})
	if err != nil {
		return m, err
	}

	if executor != nil {
		err = executor.RunPostExport(ctx)
		c.hookSummary(executor)
	}
	return m, err
}

// hookSummary reports hook results on stderr when any hook failed.
func (c *cli) hookSummary(e *hooks.Executor) {
	for _, r := range e.Results() {
		if !r.Success {
			fmt.Fprint(c.errOut, e.Summary())
			return
		}
	}
	debug.Log("%s", strings.TrimSpace(e.Summary()))
}

// watchFilter accepts content files outside the ignore patterns.
func (c *cli) watchFilter(rel string) bool {
	if !strings.EqualFold(filepath.Ext(rel), loader.ContentExt) {
		return false
	}
	return !loader.Ignored(rel, c.cfg.IgnorePatterns)
}

// watchExclude drops ignored paths and, when it sits inside the content
// directory, the output directory the rebuild writes to.
func (c *cli) watchExclude(out string) func(rel string) bool {
	outRel := ""
	absContent, err1 := filepath.Abs(c.cfg.ContentDir)
	absOut, err2 := filepath.Abs(out)
	if err1 == nil && err2 == nil {
		if r, err := filepath.Rel(absContent, absOut); err == nil && r != "." && !strings.HasPrefix(r, "..") {
			outRel = filepath.ToSlash(r)
		}
	}
	return func(rel string) bool {
		if outRel != "" && (rel == outRel || strings.HasPrefix(rel, outRel+"/")) {
			return true
		}
		return loader.Ignored(rel, c.cfg.IgnorePatterns)
	}
}

// terminal reports whether w is a terminal, and its width when known.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return true, 0
	}
	return true, width
}
