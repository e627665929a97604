package views

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"text/template"
)

//go:embed templates/*.txt
var viewsFS embed.FS

var indexTmpl *template.Template

// loadTemplatesFromFS parses every *.txt template under dir. Tests use it to
// simulate broken template sets.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.txt")
	if err != nil {
		return err
	}
	indexTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before serving
// requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type RouteLine struct {
	Path        string
	Description string
}

// IndexData is the view model for the route index. FirstDate and LastDate are
// empty when the dataset bounds are unknown.
type IndexData struct {
	Routes    []RouteLine
	FirstDate string
	LastDate  string
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.txt", data)
}
