package configrender

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/routepool/routepool/models"
)

// RenderedConfig is the outcome of one render pass: the substituted text
// plus every resolved variable coerced to its natural type.
type RenderedConfig struct {
	Text string
	Vars map[string]interface{}
}

var (
	intPattern   = regexp.MustCompile(`^-?\d+$`)
	floatPattern = regexp.MustCompile(`^-?\d*\.\d+$`)
)

// Render substitutes ${VAR} and ${VAR:-default} placeholders in template
// from env in a single pass. Every unresolved required variable is collected
// and reported together in one ConfigurationError rather than failing on the
// first. Rendering is deterministic: identical inputs produce byte-identical
// output, and re-rendering the output is a no-op.
func Render(template string, env map[string]string) (*RenderedConfig, error) {
	var out strings.Builder
	out.Grow(len(template))

	vars := map[string]interface{}{}
	missing := map[string]struct{}{}

	rest := template
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])

		end := strings.Index(rest[start:], "}")
		if end < 0 {
			// unterminated placeholder, kept verbatim
			out.WriteString(rest[start:])
			break
		}
		placeholder := rest[start+2 : start+end]
		rest = rest[start+end+1:]

		name, def, hasDefault := strings.Cut(placeholder, ":-")
		value, found := env[name]
		switch {
		case found:
			out.WriteString(value)
			vars[name] = coerce(value)
		case hasDefault:
			out.WriteString(def)
			vars[name] = coerce(def)
		default:
			missing[name] = struct{}{}
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, &models.ConfigurationError{MissingVars: names}
	}

	return &RenderedConfig{
		Text: out.String(),
		Vars: vars,
	}, nil
}

// coerce maps the literal true/false to bool and numeric literals to int64
// or float64; anything else stays a string.
func coerce(value string) interface{} {
	switch {
	case value == "true":
		return true
	case value == "false":
		return false
	case intPattern.MatchString(value):
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		return value
	case floatPattern.MatchString(value):
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	default:
		return value
	}
}
