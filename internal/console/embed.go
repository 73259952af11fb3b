package console

import (
	"embed"
	"io/fs"
)

//go:embed templates/pages/*.tmpl templates/partials/*.tmpl
var templatesFS embed.FS

// TemplatesFS exposes the embedded page templates.
func TemplatesFS() fs.FS {
	return templatesFS
}
