package server

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// statusTmpl renders a framecache.Snapshot as a simple operator page:
// capacity, hit/miss counts, then one row per resident line.
var statusTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html><head><title>frameserver status</title></head>
<body>
<h2>frameserver - status</h2>
<p>status: ok, online.</p>
<p>cache capacity: {{.Capacity}}</p>
<p>hits/misses: {{.Hits}}/{{.Misses}}</p>
<table border="1">
<tr><th>line</th><th>file id</th><th>state</th><th>geometry</th><th>format</th><th>frame</th><th>lru</th></tr>
{{range .Lines}}<tr><td>{{.Index}}</td><td>{{.FileID}}</td><td>{{.State}}</td><td>{{.Width}}x{{.Height}}</td><td>{{.Format}}</td><td>{{.Frame}}</td><td>{{.LRU}}</td></tr>
{{end}}</table>
</body></html>`))

// handleStatusHTML implements GET /status.
func (h *Handler) handleStatusHTML(w http.ResponseWriter, r *http.Request) (int, error) {
	snap := h.Cache.Stats()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusTmpl.Execute(w, snap); err != nil {
		return http.StatusInternalServerError, err
	}
	return 0, nil
}

// handleStatusJSON implements GET /status.json: the same
// framecache.Snapshot, marshaled directly since encoding/json already
// does this correctly for a struct this shaped.
func (h *Handler) handleStatusJSON(w http.ResponseWriter, r *http.Request) (int, error) {
	snap := h.Cache.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return http.StatusInternalServerError, err
	}
	return 0, nil
}
