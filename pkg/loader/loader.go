// Package loader discovers content pages and parses their frontmatter.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/conceptnav/pkg/debug"
	"github.com/vanderheijden86/conceptnav/pkg/metrics"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// ErrNotDirectory is returned when the content root is a file.
var ErrNotDirectory = errors.New("content root is not a directory")

// ContentExt is the extension of content files.
const ContentExt = ".md"

// DefaultIgnorePatterns are skipped unless the caller overrides them.
func DefaultIgnorePatterns() []string {
	return []string{"private", "templates", ".obsidian"}
}

// Options configures LoadPages.
type Options struct {
	// IgnorePatterns are filepath.Match patterns tested against every segment
	// of a page's relative path, and against the whole relative path.
	IgnorePatterns []string

	// IncludeDrafts keeps pages whose frontmatter sets draft: true.
	IncludeDrafts bool

	// Concurrency limits parallel file parsing. 0 uses runtime.NumCPU().
	Concurrency int

	// WarningHandler is called with warning messages (e.g., malformed frontmatter).
	// If nil, warnings are printed to os.Stderr. It may be called from several
	// goroutines, but never concurrently.
	WarningHandler func(string)
}

// LoadPages walks root for markdown files and parses their frontmatter in
// parallel. Pages are returned sorted by slug. A file with malformed
// frontmatter is kept with no frontmatter and reported as a warning.
func LoadPages(ctx context.Context, root string, opts Options) ([]model.Page, error) {
	defer metrics.Timer(metrics.PageLoad)()
	defer debug.LogEnterExit("loader.LoadPages")()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	files, err := discover(ctx, root, opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	debug.Log("discovered %d content files under %s", len(files), root)

	warn := syncWarn(opts.WarningHandler)
	results := make([]*model.Page, len(files))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(root, rel)
			data, err := os.ReadFile(path)
			if err != nil {
				warn(fmt.Sprintf("skipping %s: %v", rel, err))
				return nil
			}
			page, err := ParsePage(SlugFor(rel), data)
			if err != nil {
				warn(fmt.Sprintf("ignoring frontmatter in %s: %v", rel, err))
			}
			page.FilePath = path
			results[i] = &page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	pages := make([]model.Page, 0, len(results))
	drafts := 0
	for _, p := range results {
		if p == nil {
			continue
		}
		if p.IsDraft() && !opts.IncludeDrafts {
			drafts++
			continue
		}
		pages = append(pages, *p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })

	debug.LogIf(drafts > 0, "dropped %d draft pages", drafts)
	return pages, nil
}

// ParsePage builds a page from raw file content. On malformed frontmatter the
// page is still returned, without frontmatter, together with the error.
func ParsePage(slug string, data []byte) (model.Page, error) {
	page := model.Page{Slug: slug}
	fm, err := ParseFrontmatter(data)
	if err != nil {
		return page, err
	}
	page.Frontmatter = fm
	return page, nil
}

// SlugFor converts a relative content path into a slug: forward slashes and
// no extension.
func SlugFor(rel string) string {
	slug := filepath.ToSlash(rel)
	return strings.TrimSuffix(slug, filepath.Ext(slug))
}

// discover returns content files relative to root, in walk order.
func discover(ctx context.Context, root string, patterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || Ignored(rel, patterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ContentExt) || Ignored(rel, patterns) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content directory: %w", err)
	}
	return files, nil
}

// Ignored reports whether rel matches any ignore pattern.
func Ignored(rel string, patterns []string) bool {
	slashed := filepath.ToSlash(rel)
	segments := strings.Split(slashed, "/")
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return true
		}
		for _, seg := range segments {
			if ok, _ := filepath.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}

// syncWarn serializes calls to the warning handler.
func syncWarn(handler func(string)) func(string) {
	if handler == nil {
		handler = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}
	var mu sync.Mutex
	return func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		handler(msg)
	}
}
