package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// platformStub fakes the remote platform API with mutable in-memory state,
// so tests can observe that mutations landed and that refetches see them.
type platformStub struct {
	mu    sync.Mutex
	token string
	role  string
	creds map[string]string
	users []User
	posts []Post
}

func newPlatformStub() *platformStub {
	return &platformStub{
		token: "abc",
		role:  "ADMIN",
		creds: map[string]string{"admin@x.com": "secret"},
		users: []User{
			{ID: "u1", Name: "Asha", Email: "asha@x.com", IsApproved: true},
			{ID: "u2", Name: "Ben", Email: "ben@x.com", IsApproved: false},
		},
		posts: []Post{
			{ID: "p1", AuthorID: "u1", Title: "Solar Chargers", Content: "Charge anywhere", MediaURL: "/uploads/p1.jpg", Status: "PENDING"},
			{ID: "p2", AuthorID: "u1", Title: "Old Idea", Content: "Already shipped", Status: "PUBLISHED"},
		},
	}
}

func (s *platformStub) findUserLocked(id string) *User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func writeStubJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeStubError(w http.ResponseWriter, status int, message string) {
	writeStubJSON(w, status, map[string]string{"message": message})
}

func (s *platformStub) requireBearer(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+s.token {
		writeStubError(w, http.StatusUnauthorized, "jwt expired")
		return false
	}
	return true
}

func (s *platformStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeStubError(w, http.StatusBadRequest, "bad request")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if body.Password == "" || s.creds[body.Email] != body.Password {
			writeStubError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeStubJSON(w, http.StatusOK, map[string]any{
			"token": s.token,
			"user":  map[string]string{"role": s.role, "name": "Root"},
		})
	})

	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		if !s.requireBearer(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		// Mongo-style keys, like the real platform.
		out := make([]map[string]any, 0, len(s.users))
		for _, u := range s.users {
			out = append(out, map[string]any{
				"_id": u.ID, "name": u.Name, "email": u.Email, "isApproved": u.IsApproved,
			})
		}
		writeStubJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /posts/feed", func(w http.ResponseWriter, r *http.Request) {
		if !s.requireBearer(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		out := make([]map[string]any, 0, len(s.posts))
		for _, p := range s.posts {
			out = append(out, map[string]any{
				"id": p.ID, "authorId": p.AuthorID, "title": p.Title,
				"content": p.Content, "mediaUrl": p.MediaURL, "status": p.Status,
			})
		}
		writeStubJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("PATCH /admin/approve-user", func(w http.ResponseWriter, r *http.Request) {
		s.patchUser(w, r, true)
	})

	mux.HandleFunc("PATCH /admin/reject-user", func(w http.ResponseWriter, r *http.Request) {
		s.patchUser(w, r, false)
	})

	mux.HandleFunc("DELETE /admin/delete-user/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !s.requireBearer(w, r) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		id := r.PathValue("id")
		for i := range s.users {
			if s.users[i].ID == id {
				s.users = append(s.users[:i], s.users[i+1:]...)
				writeStubJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
				return
			}
		}
		writeStubError(w, http.StatusNotFound, "User not found")
	})

	return mux
}

func (s *platformStub) patchUser(w http.ResponseWriter, r *http.Request, approved bool) {
	if !s.requireBearer(w, r) {
		return
	}
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStubError(w, http.StatusBadRequest, "bad request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUserLocked(body.UserID)
	if user == nil {
		writeStubError(w, http.StatusNotFound, "User not found")
		return
	}
	user.IsApproved = approved
	writeStubJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func setupTestConsole(t *testing.T, stub *platformStub) *Console {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	db, err := openDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err = initDB(db); err != nil {
		t.Fatalf("initializing test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	box, err := newSealer("")
	if err != nil {
		t.Fatalf("creating sealer: %v", err)
	}

	cfg := Config{
		APIBaseURL:   srv.URL,
		MediaBaseURL: "http://media.test",
	}
	return NewConsole(cfg, db, box)
}

// sessionCookieFor persists a session directly and returns its cookie.
func sessionCookieFor(t *testing.T, c *Console, apiToken, role string) *http.Cookie {
	t.Helper()
	id, err := createSession(c.db, c.box, apiToken, role)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: id}
}

// addCSRFToken adds a CSRF token to the request (cookie + form value)
func addCSRFToken(req *http.Request, form url.Values) {
	token := "test-csrf-token-12345"
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	if form != nil {
		form.Set(csrfFieldName, token)
	}
}

// postForm serves a CSRF-protected form POST through the full route table.
func postForm(c *Console, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	req := httptest.NewRequest(http.MethodPost, path, nil)
	addCSRFToken(req, form)
	req.Body = io.NopCloser(strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.routes().ServeHTTP(w, req)
	return w
}
