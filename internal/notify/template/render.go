// internal/notify/template/render.go

// Package template renders notification subject and body templates by literal
// {Key} substitution from a flat event data map.
package template

import (
	"strings"
)

// Render replaces every {Key} present in data with its stringified value.
// Keys absent from the template are ignored; placeholders with no matching
// key are left intact. This leniency is deliberate: a misconfigured template
// still renders and the gap is visible in the delivered text.
func Render(tmpl string, data map[string]string) string {
	if tmpl == "" || len(data) == 0 {
		return tmpl
	}

	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
