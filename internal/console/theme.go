package console

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// resolveThemeStyle turns a theme selection into the :root CSS block the
// page layout inlines. Missing selectors and failed selections degrade to no
// styling rather than a failed page.
func resolveThemeStyle(selector theme.ThemeSelector, name, variant string) string {
	if selector == nil {
		return ""
	}
	selection, err := selector.Select(name, variant)
	if err != nil || selection == nil || selection.Manifest == nil {
		return ""
	}
	vars := make(map[string]string, len(selection.Manifest.Tokens))
	for token, value := range selection.Manifest.Tokens {
		key := token
		if !strings.HasPrefix(key, "--") {
			key = "--" + key
		}
		vars[key] = value
	}
	return cssVarsStyle(vars)
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
