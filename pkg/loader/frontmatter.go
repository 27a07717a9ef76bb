package loader

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/conceptnav/pkg/metrics"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// ErrUnterminatedFrontmatter is returned when an opening fence has no closing fence.
var ErrUnterminatedFrontmatter = errors.New("unterminated frontmatter")

const (
	yamlFence = "---"
	tomlFence = "+++"
)

// Keys folded into Frontmatter fields. The second key of each pair is an alias.
var (
	tagKeys   = [2]string{"tags", "tag"}
	aliasKeys = [2]string{"aliases", "alias"}
)

// Recognised frontmatter blocks. Decoding goes through yaml.v3 and
// BurntSushi/toml rather than the library defaults.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat(yamlFence, yamlFence, decodeWith("yaml", yaml.Unmarshal)),
	frontmatter.NewFormat(tomlFence, tomlFence, decodeWith("toml", toml.Unmarshal)),
}

func decodeWith(kind string, unmarshal frontmatter.UnmarshalFunc) frontmatter.UnmarshalFunc {
	return func(data []byte, v any) error {
		if err := unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s frontmatter: %w", kind, err)
		}
		return nil
	}
}

// ParseFrontmatter extracts the metadata block at the top of a markdown file.
// YAML blocks are fenced with "---", TOML blocks with "+++". A file without
// an opening fence has no frontmatter and yields nil, nil.
func ParseFrontmatter(data []byte) (*model.Frontmatter, error) {
	defer metrics.Timer(metrics.FrontmatterParse)()

	data = stripBOM(data)
	raw := make(map[string]any)
	if _, err := frontmatter.MustParse(bytes.NewReader(data), &raw, formats...); err != nil {
		if !errors.Is(err, frontmatter.ErrNotFound) {
			return nil, err
		}
		if opensFence(data) {
			return nil, ErrUnterminatedFrontmatter
		}
		return nil, nil
	}
	if raw == nil {
		// "---\n---" or a block holding only comments.
		raw = make(map[string]any)
	}
	return buildFrontmatter(raw), nil
}

// opensFence reports whether the first non-blank line is a fence. MustParse
// reports a block that is never closed the same way as a missing one.
func opensFence(data []byte) bool {
	for len(data) > 0 {
		var line []byte
		line, data, _ = bytes.Cut(data, []byte("\n"))
		switch strings.TrimSpace(string(line)) {
		case "":
			continue
		case yamlFence, tomlFence:
			return true
		default:
			return false
		}
	}
	return false
}

func buildFrontmatter(raw map[string]any) *model.Frontmatter {
	fm := &model.Frontmatter{
		Title:   scalarString(raw["title"]),
		Tags:    coerceToList(coalesce(raw, tagKeys)),
		Aliases: coerceToList(coalesce(raw, aliasKeys)),
		Draft:   coerceBool(raw["draft"]),
	}

	for key, v := range raw {
		switch key {
		case "title", "draft", tagKeys[0], tagKeys[1], aliasKeys[0], aliasKeys[1]:
			continue
		}
		if fm.Extra == nil {
			fm.Extra = make(map[string]any)
		}
		fm.Extra[key] = v
	}
	return fm
}

// coalesce returns the value of the first key present.
func coalesce(raw map[string]any, keys [2]string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// coerceToList accepts a comma-separated string or a list of strings and
// numbers. Entries are trimmed, and empty or repeated entries dropped with
// the first occurrence kept in place. Tags keep their case: matching against
// concept tags is exact.
func coerceToList(v any) []string {
	var parts []string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		parts = make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := listEntry(item); ok {
				parts = append(parts, s)
			}
		}
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func listEntry(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func scalarString(v any) string {
	if s, ok := listEntry(v); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.TrimSpace(b) == "true"
	}
	return false
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
