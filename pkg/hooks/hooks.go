// Package hooks runs user commands around bundle export.
// Hooks are configured under the hooks key of conceptnav.yaml and run at two
// points in the export pipeline (pre-export, post-export).
package hooks

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase represents when a hook runs.
type Phase string

const (
	// PreExport runs before the bundle is written. Failure cancels export.
	PreExport Phase = "pre-export"
	// PostExport runs after the bundle is written. Failure is reported but doesn't break export.
	PostExport Phase = "post-export"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout is the default hook execution timeout.
const DefaultTimeout = 30 * time.Second

// Hook defines a single hook.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// ByPhase organizes hooks by their execution phase.
type ByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// Empty reports whether no hooks are configured.
func (b ByPhase) Empty() bool {
	return len(b.PreExport) == 0 && len(b.PostExport) == 0
}

// Get returns hooks for a phase.
func (b ByPhase) Get(phase Phase) []Hook {
	switch phase {
	case PreExport:
		return b.PreExport
	case PostExport:
		return b.PostExport
	default:
		return nil
	}
}

// Normalize applies defaults, drops hooks with empty commands, and returns a
// warning for each dropped hook.
func Normalize(b ByPhase) (ByPhase, []string) {
	var warnings []string
	b.PreExport, warnings = normalizeHooks(b.PreExport, PreExport, warnings)
	b.PostExport, warnings = normalizeHooks(b.PostExport, PostExport, warnings)
	return b, warnings
}

func normalizeHooks(hooks []Hook, phase Phase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultTimeout
		}
		if hook.OnError == "" {
			if phase == PreExport {
				hook.OnError = OnErrorFail
			} else {
				hook.OnError = OnErrorContinue
			}
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// Validate rejects unknown on_error policies.
func (b ByPhase) Validate() error {
	for _, phase := range []Phase{PreExport, PostExport} {
		for i, h := range b.Get(phase) {
			switch h.OnError {
			case "", OnErrorFail, OnErrorContinue:
			default:
				return fmt.Errorf("%s hook %d: invalid on_error %q", phase, i+1, h.OnError)
			}
		}
	}
	return nil
}

// UnmarshalYAML accepts timeouts as durations ("10s") or plain seconds (30).
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}

	h.Name = dto.Name
	h.Command = dto.Command
	h.Env = dto.Env
	h.OnError = dto.OnError
	h.Timeout = 0

	if dto.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(dto.Timeout)
	if err == nil {
		h.Timeout = d
		return nil
	}
	var seconds float64
	if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr != nil {
		return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
	}
	h.Timeout = time.Duration(seconds * float64(time.Second))
	return nil
}

// MarshalYAML writes the timeout as a duration string.
func (h Hook) MarshalYAML() (any, error) {
	type hookDTO struct {
		Name    string            `yaml:"name,omitempty"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}
	dto := hookDTO{Name: h.Name, Command: h.Command, Env: h.Env, OnError: h.OnError}
	if h.Timeout > 0 {
		dto.Timeout = h.Timeout.String()
	}
	return dto, nil
}
