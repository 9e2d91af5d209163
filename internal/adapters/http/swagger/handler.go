// Package swagger serves the OpenAPI description of the status server.
package swagger

import (
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
)

// Register attaches the API documentation routes to mux.
//
//	GET /api-docs      -> endpoint index rendered from the embedded spec
//	GET /openapi.yaml  -> embedded OpenAPI spec
//
// The index page loads no external assets.
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		doc, err := loadIndex()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTmpl.Execute(w, doc); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

type operation struct {
	Method  string
	Path    string
	Summary string
	Params  []string
}

type index struct {
	Title       string
	Version     string
	Description string
	Operations  []operation
}

var loadIndex = sync.OnceValues(func() (index, error) {
	return parseIndex(OpenAPI)
})

func parseIndex(raw []byte) (index, error) {
	doc, err := yaml.Parser().Unmarshal(raw)
	if err != nil {
		return index{}, fmt.Errorf("parse openapi: %w", err)
	}
	info, _ := doc["info"].(map[string]interface{})
	out := index{
		Title:       str(info["title"]),
		Version:     str(info["version"]),
		Description: str(info["description"]),
	}

	paths, _ := doc["paths"].(map[string]interface{})
	for path, v := range paths {
		methods, _ := v.(map[string]interface{})
		for method, o := range methods {
			op, _ := o.(map[string]interface{})
			entry := operation{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: str(op["summary"]),
			}
			params, _ := op["parameters"].([]interface{})
			for _, p := range params {
				pm, _ := p.(map[string]interface{})
				entry.Params = append(entry.Params, fmt.Sprintf("%s (%s)", str(pm["name"]), str(pm["in"])))
			}
			out.Operations = append(out.Operations, entry)
		}
	}
	sort.Slice(out.Operations, func(i, j int) bool {
		a, b := out.Operations[i], out.Operations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Method < b.Method
	})
	return out, nil
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>body{font-family:sans-serif;margin:2em}td,th{padding:.3em 1em;text-align:left}code{background:#eee}</style>
  </head>
  <body>
    <h1>{{.Title}} <small>{{.Version}}</small></h1>
    <p>{{.Description}}</p>
    <table id="operations">
      <tr><th>Method</th><th>Path</th><th>Summary</th><th>Parameters</th></tr>
      {{- range .Operations}}
      <tr><td>{{.Method}}</td><td><code>{{.Path}}</code></td><td>{{.Summary}}</td><td>{{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p}}{{end}}</td></tr>
      {{- end}}
    </table>
    <p>Full description: <a href="/openapi.yaml">openapi.yaml</a></p>
  </body>
</html>`))
