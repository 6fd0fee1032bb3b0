package backup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/daylog/internal/gist"
)

// fakeGitHub is an in-memory stand-in for the parts of the GitHub API the
// sync protocol uses.
type fakeGitHub struct {
	t     *testing.T
	token string

	mu      sync.Mutex
	gists   map[string]*gist.Gist
	nextID  int
	calls   []string
	failFor map[string]int // "METHOD /path" -> status
}

func newFakeGitHub(t *testing.T, token string) (*fakeGitHub, *httptest.Server) {
	f := &fakeGitHub{t: t, token: token, gists: map[string]*gist.Gist{}, failFor: map[string]int{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGitHub) fail(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFor[route] = status
}

func (f *fakeGitHub) content(id, file string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gists[id]
	if !ok {
		return ""
	}
	return g.Files[file].Content
}

func (f *fakeGitHub) setContent(id, file, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gists[id].Files[file] = gist.File{Filename: file, Content: content}
}

func (f *fakeGitHub) callCount(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == route {
			n++
		}
	}
	return n
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	route := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, route)
	if status, ok := f.failFor[route]; ok {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"message":"injected failure"}`)
		return
	}
	if r.Header.Get("Authorization") != "token "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
		return
	}

	switch {
	case route == "GET /user":
		f.write(w, http.StatusOK, gist.User{Login: "octo", Name: "Octo Cat", ID: 7})
	case route == "GET /gists":
		list := make([]gist.Gist, 0, len(f.gists))
		for _, g := range f.gists {
			list = append(list, *g)
		}
		f.write(w, http.StatusOK, list)
	case route == "POST /gists":
		var body struct {
			Description string               `json:"description"`
			Files       map[string]gist.File `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.nextID++
		g := &gist.Gist{ID: fmt.Sprintf("g%d", f.nextID), Description: body.Description, Files: body.Files}
		f.gists[g.ID] = g
		f.write(w, http.StatusCreated, g)
	case strings.HasPrefix(route, "PATCH /gists/"):
		g, ok := f.gists[strings.TrimPrefix(r.URL.Path, "/gists/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Files map[string]gist.File `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for name, file := range body.Files {
			g.Files[name] = file
		}
		f.write(w, http.StatusOK, g)
	case strings.HasPrefix(route, "GET /gists/"):
		g, ok := f.gists[strings.TrimPrefix(r.URL.Path, "/gists/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.write(w, http.StatusOK, g)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeGitHub) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("encoding fake response: %v", err)
	}
}
