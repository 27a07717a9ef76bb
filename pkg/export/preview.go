package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptnav/pkg/debug"
)

// ErrMissingIndex is returned when the bundle directory has no index.html.
var ErrMissingIndex = errors.New("no index.html found in bundle")

// Preview port range tried by FindAvailablePort when no port is configured.
const (
	PreviewPortRangeStart = 9000
	PreviewPortRangeEnd   = 9100
)

const shutdownTimeout = 5 * time.Second

// PreviewServer serves a written bundle locally with caching disabled.
type PreviewServer struct {
	bundlePath string

	mu       sync.Mutex
	port     int
	listener net.Listener
	server   *http.Server
}

// PreviewStatus is returned by the /__preview__/status endpoint.
type PreviewStatus struct {
	Status     string `json:"status"`
	Port       int    `json:"port"`
	BundlePath string `json:"bundle_path"`
	HasIndex   bool   `json:"has_index"`
	FileCount  int    `json:"file_count"`
}

// NewPreviewServer creates a preview server for the given bundle.
// Port 0 binds an ephemeral port.
func NewPreviewServer(bundlePath string, port int) *PreviewServer {
	return &PreviewServer{
		bundlePath: bundlePath,
		port:       port,
	}
}

// Handler returns the HTTP handler serving the bundle.
func (p *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", noCacheMiddleware(http.FileServer(http.Dir(p.bundlePath))))
	mux.HandleFunc("/__preview__/status", p.statusHandler)
	return mux
}

// Listen validates the bundle and binds the listening socket.
func (p *PreviewServer) Listen() error {
	info, err := os.Stat(p.bundlePath)
	if err != nil {
		return fmt.Errorf("bundle path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bundle path is not a directory: %s", p.bundlePath)
	}
	if _, err := os.Stat(filepath.Join(p.bundlePath, IndexFile)); err != nil {
		return fmt.Errorf("%s: %w", p.bundlePath, ErrMissingIndex)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	p.listener = ln
	p.port = ln.Addr().(*net.TCPAddr).Port
	p.server = &http.Server{
		Handler:           p.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Serve serves the bundle until ctx is cancelled, then shuts down gracefully.
// It calls Listen if the server is not bound yet.
func (p *PreviewServer) Serve(ctx context.Context) error {
	if err := p.Listen(); err != nil {
		return err
	}

	p.mu.Lock()
	server, ln := p.server, p.listener
	p.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	debug.Log("preview server listening on %s", p.URL())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown preview server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Port returns the bound port, or the configured one before Listen.
func (p *PreviewServer) Port() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port
}

// URL returns the base URL of the preview server.
func (p *PreviewServer) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", p.Port())
}

func (p *PreviewServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	status := PreviewStatus{
		Status:     "running",
		Port:       p.Port(),
		BundlePath: p.bundlePath,
	}
	if _, err := os.Stat(filepath.Join(p.bundlePath, IndexFile)); err == nil {
		status.HasIndex = true
	}
	_ = filepath.WalkDir(p.bundlePath, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			status.FileCount++
		}
		return nil
	})

	if err := json.NewEncoder(w).Encode(status); err != nil {
		debug.Log("encode preview status: %v", err)
	}
}

// noCacheMiddleware adds headers to prevent browser caching.
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if r.Method == http.MethodOptions {
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", start, end)
}
