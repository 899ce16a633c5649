package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pattern is a compiled regular expression that remembers its source
// literal. Source files may write patterns either as bare expressions
// ("^class\\s") or as delimited literals with flags ("/^class\\s/i").
//
// Design decision: We keep the original literal alongside the compiled
// expression because patterns round-trip through checkpoints: a checkpoint
// embeds the originating source configuration, and serializing a compiled
// *regexp.Regexp would lose the flags the author wrote.
type Pattern struct {
	re  *regexp.Regexp
	raw string
}

// CompilePattern compiles a pattern literal.
//
// A literal of the form /body/flags is unwrapped and its flags translated
// to Go inline flags: i (case-insensitive), m (multi-line), s (dot matches
// newline). The g flag is accepted and ignored since Go expresses "all
// matches" at the call site. Anything else compiles as a plain Go regular
// expression.
func CompilePattern(literal string) (*Pattern, error) {
	expr := literal

	if strings.HasPrefix(literal, "/") {
		if end := strings.LastIndex(literal, "/"); end > 0 {
			body := literal[1:end]
			flags := literal[end+1:]

			var goFlags strings.Builder
			for _, f := range flags {
				switch f {
				case 'i', 'm', 's':
					goFlags.WriteRune(f)
				case 'g':
					// Go regexps have no global flag; FindAll covers it.
				default:
					return nil, fmt.Errorf("pattern %q: unsupported flag %q", literal, string(f))
				}
			}

			expr = body
			if goFlags.Len() > 0 {
				expr = "(?" + goFlags.String() + ")" + body
			}
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", literal, err)
	}

	return &Pattern{re: re, raw: literal}, nil
}

// MustCompilePattern is CompilePattern that panics on error.
// Intended for tests and hard-coded patterns.
func MustCompilePattern(literal string) *Pattern {
	p, err := CompilePattern(literal)
	if err != nil {
		panic(err)
	}
	return p
}

// MatchString reports whether the pattern matches s.
func (p *Pattern) MatchString(s string) bool {
	return p.re.MatchString(s)
}

// FindStringSubmatch returns the leftmost match and its capture groups,
// or nil if there is no match.
func (p *Pattern) FindStringSubmatch(s string) []string {
	return p.re.FindStringSubmatch(s)
}

// CaptureGroup applies the pattern to s and returns capture group 1.
// The second return value reports whether the pattern matched with at
// least one non-empty group.
func (p *Pattern) CaptureGroup(s string) (string, bool) {
	m := p.re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// String returns the original pattern literal.
func (p *Pattern) String() string {
	return p.raw
}

// UnmarshalYAML compiles the pattern from a YAML scalar.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	var literal string
	if err := value.Decode(&literal); err != nil {
		return err
	}
	compiled, err := CompilePattern(literal)
	if err != nil {
		return err
	}
	*p = *compiled
	return nil
}

// MarshalYAML emits the original pattern literal.
func (p *Pattern) MarshalYAML() (interface{}, error) {
	return p.raw, nil
}

// MarshalJSON emits the original pattern literal. Used when the source
// configuration is embedded into a checkpoint.
func (p *Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// UnmarshalJSON compiles the pattern from a JSON string. Used when a
// checkpoint is restored.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err != nil {
		return err
	}
	compiled, err := CompilePattern(literal)
	if err != nil {
		return err
	}
	*p = *compiled
	return nil
}
