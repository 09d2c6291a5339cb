// Package portaltest provides an in-process fake of the registration portal for tests.
//
// The fake serves HTML fixtures from a directory:
//
//	login.html          sign-in page with the hidden tokens
//	listing.html        instructor listing
//	detail_<id>.html    public detail page per workshop
//	roster_<id>.html    roster page per workshop
//
// The listing and roster pages require the session cookie set by a successful login.
package portaltest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Moontok/WorkshopApp/internal/config"
)

// Tokens embedded in testdata/fixtures/login.html
const (
	ViewState       = "dDwtMTA4MTc0NjQ1Njs7Pg=="
	EventValidation = "/wEdAAR5c2VjcmV0LXRva2Vu"
)

// Page names used for hit counting and failure injection
const (
	PageLogin   = "login"
	PageListing = "listing"
	PageDetail  = "detail"
	PageRoster  = "roster"
)

const (
	sessionCookie = "ASP.NET_SessionId"
	sessionValue  = "portaltest-session"

	loginPath   = "/Login.aspx"
	listingPath = "/Instructor.aspx"
	detailPath  = "/Session.aspx"
	rosterPath  = "/Roster.aspx"
)

// Server is a fake portal backed by httptest.Server
type Server struct {
	*httptest.Server

	UserName string
	Password string

	dir string

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]*failure
	hooks    []func(page, id string)
	logins   int
}

type failure struct {
	status int
	remain int
}

// New starts a fake portal serving fixtures from dir. It is closed when the test ends.
func New(t testing.TB, dir string) *Server {
	t.Helper()

	s := &Server{
		UserName: "instructor",
		Password: "correct-horse",
		dir:      dir,
		hits:     make(map[string]int),
		failures: make(map[string]*failure),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// Config returns a configuration pointing at the fake portal with a valid credential
func (s *Server) Config() *config.Config {
	return &config.Config{
		SigninPageURL:          s.URL + loginPath,
		InstructorPageURL:      s.URL + listingPath,
		ParticipantPageBaseURL: s.URL + rosterPath + "?id=",
		BaseWorkshopURL:        s.URL + detailPath + "?id=",
		UserName:               s.UserName,
		Password:               s.Password,
	}
}

// Fail makes the next count requests for page (and workshop id, if not empty) answer with status
func (s *Server) Fail(page, id string, status, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key(page, id)] = &failure{status: status, remain: count}
}

// OnRequest registers a hook run before each page is served
func (s *Server) OnRequest(fn func(page, id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Hits returns how many requests were received for page
func (s *Server) Hits(page string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[page]
}

// Logins returns how many login attempts succeeded
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	page, id := classify(r)
	if page == "" {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.hits[page]++
	hooks := append([]func(string, string){}, s.hooks...)
	status := s.takeFailure(page, id)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(page, id)
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch page {
	case PageLogin:
		if r.Method == http.MethodPost {
			s.handleLogin(w, r)
			return
		}
		s.serveFile(w, "login.html")
	case PageListing:
		if !signedIn(r) {
			s.serveFile(w, "login.html")
			return
		}
		s.serveFile(w, "listing.html")
	case PageDetail:
		s.serveFile(w, "detail_"+id+".html")
	case PageRoster:
		if !signedIn(r) {
			s.serveFile(w, "login.html")
			return
		}
		s.serveFile(w, "roster_"+id+".html")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok := r.PostForm.Get("ctl00$mainBody$txtUserName") == s.UserName &&
		r.PostForm.Get("ctl00$mainBody$txtPassword") == s.Password &&
		r.PostForm.Get("ctl00$mainBody$btnSubmit") == "Submit" &&
		r.PostForm.Get("__VIEWSTATE") == ViewState &&
		r.PostForm.Get("__EVENTVALIDATION") == EventValidation
	if !ok {
		s.serveFile(w, "login.html")
		return
	}

	s.mu.Lock()
	s.logins++
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/", HttpOnly: true})
	http.Redirect(w, r, listingPath, http.StatusFound)
}

func (s *Server) serveFile(w http.ResponseWriter, name string) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		http.Error(w, fmt.Sprintf("fixture %s: %v", name, err), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// takeFailure must be called with s.mu held
func (s *Server) takeFailure(page, id string) int {
	for _, k := range []string{key(page, id), key(page, "")} {
		if f, ok := s.failures[k]; ok && f.remain > 0 {
			f.remain--
			return f.status
		}
	}
	return 0
}

func classify(r *http.Request) (string, string) {
	id := r.URL.Query().Get("id")
	switch r.URL.Path {
	case loginPath:
		return PageLogin, ""
	case listingPath:
		return PageListing, ""
	case detailPath:
		return PageDetail, id
	case rosterPath:
		return PageRoster, id
	}
	return "", ""
}

func signedIn(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value == sessionValue
}

func key(page, id string) string {
	return page + "/" + id
}
