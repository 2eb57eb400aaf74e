package runtime

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// placeholderRe matches {variable} references, optionally with a dotted path
// into a nested map, e.g. {app_action_book.event_id}.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*)\}`)

// interpolate substitutes {name} placeholders from the variable map.
// An unresolved placeholder is left as literal text and logged at warning
// level; interpolation never fails.
func (e *Engine) interpolate(tmpl string, vars map[string]any) string {
	if tmpl == "" || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := match[1 : len(match)-1]
		val, ok := lookupPath(vars, path)
		if !ok {
			e.logger.Warn("unresolved variable placeholder left literal", "placeholder", path)
			return match
		}
		return cast.ToString(val)
	})
}

// lookupPath resolves a dotted path through nested map[string]any values.
func lookupPath(vars map[string]any, path string) (any, bool) {
	// Fast path: a plain key, including keys that themselves contain dots.
	if v, ok := vars[path]; ok {
		return v, true
	}

	segments := strings.Split(path, ".")
	var cur any = vars
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
