package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// fakeBackend is an in-memory PostgREST table plus storage bucket.
type fakeBackend struct {
	mu       sync.Mutex
	key      string
	rows     map[string]map[string]any
	bucket   string
	objects  map[string][]byte
	types    map[string]string
	requests []string
	headers  http.Header
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	f := &fakeBackend{
		key:     "account_number",
		rows:    make(map[string]map[string]any),
		bucket:  "property-images",
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Get("/rest/v1/{table}", f.lookup)
	r.Post("/rest/v1/{table}", f.insert)
	r.Patch("/rest/v1/{table}", f.update)
	r.Post("/storage/v1/object/list/{bucket}", f.list)
	r.Post("/storage/v1/object/{bucket}/*", f.put)
	r.Delete("/storage/v1/object/{bucket}", f.remove)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.headers = r.Header.Clone()
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) missingTable(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "table") != "missing" {
		return false
	}
	writeJSON(w, http.StatusNotFound, map[string]string{
		"code":    "PGRST205",
		"message": "Could not find the table 'public.missing' in the schema cache",
	})
	return true
}

func (f *fakeBackend) filterKey(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Query().Get(f.key), "eq.")
}

func (f *fakeBackend) lookup(w http.ResponseWriter, r *http.Request) {
	if f.missingTable(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := []map[string]any{}
	if row, ok := f.rows[f.filterKey(r)]; ok {
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, rows)
}

func (f *fakeBackend) insert(w http.ResponseWriter, r *http.Request) {
	if f.missingTable(w, r) {
		return
	}
	var records []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "PGRST102", "message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range records {
		if _, exists := f.rows[rec[f.key].(string)]; exists {
			writeJSON(w, http.StatusConflict, map[string]string{
				"code":    "23505",
				"message": `duplicate key value violates unique constraint "priority_leads_account_number_key"`,
			})
			return
		}
	}
	for _, rec := range records {
		f.rows[rec[f.key].(string)] = rec
	}
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	if f.missingTable(w, r) {
		return
	}
	var partial map[string]any
	_ = json.NewDecoder(r.Body).Decode(&partial)

	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[f.filterKey(r)]
	if !ok {
		writeJSON(w, http.StatusOK, []map[string]any{})
		return
	}
	for k, v := range partial {
		row[k] = v
	}
	writeJSON(w, http.StatusOK, []map[string]any{row})
}

// missingBucket answers like Storage does for an unknown bucket: a 400 with
// the real status embedded in the body.
func (f *fakeBackend) missingBucket(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "bucket") == f.bucket {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"statusCode": "404",
		"error":      "Bucket not found",
		"message":    "Bucket not found",
	})
	return true
}

func (f *fakeBackend) put(w http.ResponseWriter, r *http.Request) {
	if f.missingBucket(w, r) {
		return
	}
	name := chi.URLParam(r, "*")
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.objects[name]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"statusCode": "409",
			"error":      "Duplicate",
			"message":    "The resource already exists",
		})
		return
	}
	f.objects[name] = body
	f.types[name] = r.Header.Get("Content-Type")
	writeJSON(w, http.StatusOK, map[string]string{"Key": chi.URLParam(r, "bucket") + "/" + name})
}

func (f *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	if f.missingBucket(w, r) {
		return
	}
	var req struct {
		Prefix string `json:"prefix"`
		Limit  int    `json:"limit"`
		Offset int    `json:"offset"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	names := make([]string, 0, len(f.objects))
	for name := range f.objects {
		names = append(names, name)
	}
	f.mu.Unlock()
	sort.Strings(names)

	out := []map[string]any{{"name": ".emptyFolderPlaceholder-dir", "id": nil}}
	if req.Offset > 0 {
		out = nil
	}
	for i := req.Offset; i < len(names) && i < req.Offset+req.Limit; i++ {
		out = append(out, map[string]any{"name": names[i], "id": "id-" + names[i]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prefixes []string `json:"prefixes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	deleted := []map[string]string{}
	for _, name := range req.Prefixes {
		if _, ok := f.objects[name]; ok {
			delete(f.objects, name)
			deleted = append(deleted, map[string]string{"name": name})
		}
	}
	writeJSON(w, http.StatusOK, deleted)
}
