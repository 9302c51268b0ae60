package util

import (
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"blog/web"
)

// Each page is parsed together with the layout once, at startup, from the
// embedded FS. A bad template is a programming error, so Must is fine.
var pages = func() map[string]*template.Template {
	names, err := fs.Glob(web.Templates, "templates/*.html")
	if err != nil {
		panic(err)
	}
	m := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		m[base] = template.Must(template.ParseFS(web.Templates, "templates/layout.html", name))
	}
	return m
}()

func Render(w http.ResponseWriter, name string, data any) {
	t, ok := pages[name]
	if !ok {
		http.Error(w, "unknown template: "+name, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = t.ExecuteTemplate(w, "base", data)
}
