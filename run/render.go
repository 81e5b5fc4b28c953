package run

import (
	"fmt"
	"strings"
)

// Render substitutes "{name}" placeholders in tmpl with values from vars.
// Unknown placeholders are left as written; "{{" and "}}" are literal braces.
func Render(tmpl string, vars map[string]any) string {
	if !strings.ContainsAny(tmpl, "{}") {
		return tmpl
	}

	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				b.WriteString(tmpl[i:])
				return b.String()
			}
			name := tmpl[i+1 : i+1+end]
			if v, ok := vars[name]; ok {
				fmt.Fprint(&b, v)
			} else {
				b.WriteString(tmpl[i : i+2+end])
			}
			i += end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
