// Package template provides placeholder interpolation and response body
// extraction for sequence steps.
package template

import (
	"strings"

	"headerflow/internal/core"
)

// Interpolate replaces {key} placeholders in text with values from the
// context. {{ and }} are literal braces. Placeholders may also be generator
// calls such as {uuid()} or {timestamp()}.
//
// Interpolation is all-or-nothing: if any placeholder is unknown, or the
// text contains an unbalanced brace, the original text is returned unchanged.
// Callers rely on this to pass literal brace-bearing strings through intact.
func Interpolate(text string, ctx core.Context) string {
	if !strings.ContainsAny(text, "{}") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		switch text[i] {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return text
			}
			name := text[i+1 : i+1+end]
			val, ok := resolvePlaceholder(name, ctx)
			if !ok {
				return text
			}
			b.WriteString(val)
			i += end + 2
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return text
		default:
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}

// resolvePlaceholder resolves a single placeholder name against the context,
// trying generator functions first for names that look like calls.
func resolvePlaceholder(name string, ctx core.Context) (string, bool) {
	if name == "" {
		return "", false
	}

	if result, handled, err := evalFunction(name); handled {
		if err != nil {
			return "", false
		}
		return result, true
	}

	if val, ok := ctx.Get(name); ok {
		return core.Stringify(val), true
	}
	return "", false
}
