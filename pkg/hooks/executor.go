package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/vanderheijden86/conceptnav/pkg/debug"
)

// maxSummaryOutput caps captured output shown per hook in Summary.
const maxSummaryOutput = 200

// ExportContext is passed to hooks as environment variables.
type ExportContext struct {
	OutputDir    string    // CONCEPTNAV_OUTPUT_DIR
	ContentDir   string    // CONCEPTNAV_CONTENT_DIR
	PageCount    int       // CONCEPTNAV_PAGE_COUNT
	ConceptCount int       // CONCEPTNAV_CONCEPT_COUNT
	Timestamp    time.Time // CONCEPTNAV_TIMESTAMP (RFC3339)
}

// ToEnv converts the export context to environment variables.
func (c ExportContext) ToEnv() []string {
	return []string{
		"CONCEPTNAV_OUTPUT_DIR=" + c.OutputDir,
		"CONCEPTNAV_CONTENT_DIR=" + c.ContentDir,
		fmt.Sprintf("CONCEPTNAV_PAGE_COUNT=%d", c.PageCount),
		fmt.Sprintf("CONCEPTNAV_CONCEPT_COUNT=%d", c.ConceptCount),
		"CONCEPTNAV_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Result is the outcome of one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs configured hooks and records their results.
type Executor struct {
	hooks   ByPhase
	ctx     ExportContext
	results []Result
}

// NewExecutor creates an executor for normalized hooks.
func NewExecutor(hooks ByPhase, ctx ExportContext) *Executor {
	return &Executor{hooks: hooks, ctx: ctx}
}

// SetContext replaces the export context, e.g. once counts are known.
func (e *Executor) SetContext(ctx ExportContext) {
	e.ctx = ctx
}

// RunPreExport runs pre-export hooks in order, stopping at the first failing
// hook whose policy is fail.
func (e *Executor) RunPreExport(ctx context.Context) error {
	return e.runPhase(ctx, PreExport)
}

// RunPostExport runs every post-export hook and returns the first failure
// of a hook whose policy is fail.
func (e *Executor) RunPostExport(ctx context.Context) error {
	return e.runPhase(ctx, PostExport)
}

func (e *Executor) runPhase(ctx context.Context, phase Phase) error {
	var firstErr error
	for _, hook := range e.hooks.Get(phase) {
		res := e.run(ctx, phase, hook)
		e.results = append(e.results, res)
		if res.Success || hook.OnError != OnErrorFail {
			continue
		}
		err := fmt.Errorf("%s hook %q failed: %w", phase, hook.Name, res.Error)
		if phase == PreExport {
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Executor) run(parent context.Context, phase Phase, hook Hook) Result {
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cmd := shellCommand(ctx, hook.Command)
	// Children of the shell may keep the output pipes open after a kill.
	cmd.WaitDelay = time.Second
	cmd.Env = append(os.Environ(), e.ctx.ToEnv()...)
	ctxEnv := envMap(e.ctx.ToEnv())
	for k, v := range hook.Env {
		expanded := os.Expand(v, func(name string) string {
			if val, ok := ctxEnv[name]; ok {
				return val
			}
			return os.Getenv(name)
		})
		cmd.Env = append(cmd.Env, k+"="+expanded)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Hook:     hook,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Error = fmt.Errorf("timed out after %s", timeout)
	case err != nil:
		res.Error = err
	default:
		res.Success = true
	}
	debug.Log("hook %s (%s): success=%v in %s", hook.Name, phase, res.Success, res.Duration)
	return res
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

func envMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// Results returns the results of every hook run so far.
func (e *Executor) Results() []Result {
	return e.results
}

// Summary describes the hook runs, including truncated stderr of failures.
// It is empty when no hook has run.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}

	var ok, failed int
	var sb strings.Builder
	for _, r := range e.results {
		if r.Success {
			ok++
			continue
		}
		failed++
		fmt.Fprintf(&sb, "  %s (%s): %v\n", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "    stderr: %s\n", truncate(r.Stderr, maxSummaryOutput))
		}
	}
	return fmt.Sprintf("Hooks: %d succeeded, %d failed\n", ok, failed) + sb.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
