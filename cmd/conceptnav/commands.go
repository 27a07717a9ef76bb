package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/debug"
	"github.com/vanderheijden86/conceptnav/pkg/export"
	"github.com/vanderheijden86/conceptnav/pkg/version"
	"github.com/vanderheijden86/conceptnav/pkg/watcher"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		css   bool
		class string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the sidebar markup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if css {
				_, err := fmt.Fprint(c.out, conceptnav.Stylesheet())
				return err
			}

			pages, err := c.loadPages(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("class") {
				class = c.cfg.DisplayClass
			}
			if _, err := c.renderer().WriteTo(c.out, pages, conceptnav.Options{DisplayClass: class}); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			_, err = fmt.Fprintln(c.out)
			return err
		},
	}
	cmd.Flags().BoolVar(&css, "css", false, "Print the stylesheet instead of the markup")
	cmd.Flags().StringVar(&class, "class", "", "Display class added to the nav element (overrides display_class)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List concepts with their page counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := c.loadPages(cmd.Context())
			if err != nil {
				return err
			}
			items := c.renderer().Items(pages)

			if asJSON {
				data, err := json.MarshalIndent(export.NewConceptsDocument(items, len(pages), time.Now().UTC()), "", "  ")
				if err != nil {
					return fmt.Errorf("marshal concepts: %w", err)
				}
				_, err = fmt.Fprintln(c.out, string(data))
				return err
			}

			styled, width := terminal(c.out)
			opts := conceptnav.TextOptions{Styled: styled}
			if width > 0 {
				opts.Width = min(width, 48)
			}
			_, err = fmt.Fprint(c.out, conceptnav.RenderText(items, opts))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the sidebar bundle to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = c.cfg.OutputDir
			}
			m, err := c.exportBundle(cmd.Context(), out)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Wrote %d files to %s (%d pages)\n", len(m.Files), m.Dir, m.PageCount)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (overrides output_dir)")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Export, then re-export whenever the content changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = c.cfg.OutputDir
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.watch(ctx, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (overrides output_dir)")
	return cmd
}

// watch exports once and then after every debounced change until ctx ends.
func (c *cli) watch(ctx context.Context, out string) error {
	rebuild := func() {
		m, err := c.exportBundle(ctx, out)
		if err != nil {
			c.warn(fmt.Sprintf("rebuild failed: %v", err))
			return
		}
		fmt.Fprintf(c.out, "Rebuilt %s (%d pages)\n", m.Dir, m.PageCount)
	}
	rebuild()

	w, err := watcher.NewWatcher(c.cfg.ContentDir,
		watcher.WithDebounceDuration(c.cfg.DebounceDuration()),
		watcher.WithPollInterval(c.cfg.PollInterval()),
		watcher.WithForcePoll(c.cfg.Watch.ForcePoll),
		watcher.WithFilter(c.watchFilter),
		watcher.WithExclude(c.watchExclude(out)),
		watcher.WithOnError(func(err error) {
			if errors.Is(err, watcher.ErrRootRemoved) {
				c.warn(fmt.Sprintf("content directory %s was removed", c.cfg.ContentDir))
				return
			}
			c.warn(err.Error())
		}),
	)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	mode := "fsnotify"
	if w.IsPolling() {
		mode = fmt.Sprintf("polling every %s", w.PollInterval())
	}
	fmt.Fprintf(c.out, "Watching %s (%s), press Ctrl+C to stop\n", w.Root(), mode)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changed():
			debug.Log("content changed, rebuilding")
			rebuild()
		}
	}
}

func (c *cli) previewCmd() *cobra.Command {
	var (
		out    string
		port   int
		noOpen bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Export the bundle and serve it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = c.cfg.OutputDir
			}
			if !cmd.Flags().Changed("port") {
				port = c.cfg.Preview.Port
			}
			if port == 0 {
				if p, err := export.FindAvailablePort(export.PreviewPortRangeStart, export.PreviewPortRangeEnd); err == nil {
					port = p
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := c.exportBundle(ctx, out); err != nil {
				return err
			}

			srv := export.NewPreviewServer(out, port)
			if err := srv.Listen(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Preview server running at %s\nServing: %s\nPress Ctrl+C to stop\n", srv.URL(), out)
			if !noOpen {
				if err := export.OpenInBrowser(srv.URL()); err != nil {
					c.warn(fmt.Sprintf("could not open browser: %v", err))
				}
			}
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (overrides output_dir)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides preview.port, 0 picks a free port)")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Do not open a browser")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Version needs no config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "conceptnav %s\n", strings.TrimSpace(version.Version))
			return err
		},
	}
}
