package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
)

func (c *Console) Login(w http.ResponseWriter, r *http.Request) {
	// "/" doubles as the catch-all route; anything that is not the login
	// view itself goes home, like the old router's wildcard redirect.
	if r.URL.Path != "/" && r.URL.Path != "/login" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		c.renderLogin(w, r, "", http.StatusOK)
		return
	}

	if r.Method == http.MethodPost {
		if !parseFormWithCSRF(w, r) {
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			c.renderLogin(w, r, "Email and password are required.", http.StatusBadRequest)
			return
		}

		result, err := c.api.Login(r.Context(), email, password)
		if err != nil {
			log.Printf("login: %v", err)
			status := http.StatusBadGateway
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				status = apiErr.Status
			}
			c.renderLogin(w, r, apiMessage(err, "Login failed. Please check your credentials."), status)
			return
		}

		// The platform issues tokens to every role; this portal turns
		// non-admins away anyway. A UI restriction, not access control:
		// the platform's admin endpoints reject their tokens regardless.
		if !strings.EqualFold(result.Role, roleAdmin) {
			c.renderLogin(w, r, "Access denied: this portal is for admins only.", http.StatusForbidden)
			return
		}

		id, err := createSession(c.db, c.box, result.Token, result.Role)
		if err != nil {
			log.Printf("creating session: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		c.setSessionCookie(w, id)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

func (c *Console) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string, status int) {
	data := map[string]any{
		"Title":           "Admin Login",
		"Error":           errMsg,
		"PendingApproval": r.URL.Query().Get("error") == "pending_approval",
		"SessionExpired":  r.URL.Query().Get("error") == "session_expired",
		"CSRFToken":       c.ensureCSRFToken(w, r),
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := c.templates["login.html"].ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("rendering login: %v", err)
	}
}

func (c *Console) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !parseFormWithCSRF(w, r) {
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := deleteSession(c.db, cookie.Value); err != nil {
			log.Printf("logout: %v", err)
		}
	}

	c.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (c *Console) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	users, posts, err := c.fetchDashboardData(r.Context(), session.APIToken)
	if err != nil {
		if isAuthError(err) {
			c.forceLogout(w, r, session)
			return
		}
		// Render the shell with a banner rather than stranding the admin
		// on a browser error page; a reload refetches everything.
		log.Printf("loading dashboard: %v", err)
	}

	tab := r.URL.Query().Get("tab")
	if tab != "users" {
		tab = "moderation"
	}

	data := map[string]any{
		"Title":        "Dashboard",
		"Tab":          tab,
		"PendingUsers": pendingUsers(users),
		"ActiveUsers":  activeUsers(users),
		"PendingPosts": pendingPosts(posts),
		"LoadError":    err != nil,
		"Flash":        c.popFlash(w, r),
		"CSRFToken":    c.ensureCSRFToken(w, r),
	}

	if err := c.templates["dashboard.html"].ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("rendering dashboard: %v", err)
	}
}

// fetchDashboardData issues the user list and feed requests concurrently
// and joins both before rendering. The request context bounds both calls,
// so a closed connection aborts any fetch still in flight.
func (c *Console) fetchDashboardData(ctx context.Context, token string) ([]User, []Post, error) {
	var (
		users []User
		posts []Post
		uErr  error
		pErr  error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		users, uErr = c.api.ListUsers(ctx, token)
	}()
	go func() {
		defer wg.Done()
		posts, pErr = c.api.Feed(ctx, token)
	}()
	wg.Wait()

	if isAuthError(pErr) {
		return nil, nil, pErr
	}
	if uErr != nil {
		return nil, nil, uErr
	}
	if pErr != nil {
		return nil, nil, pErr
	}
	return users, posts, nil
}

func (c *Console) UserDetail(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	id := r.PathValue("id")

	users, posts, err := c.fetchDashboardData(r.Context(), session.APIToken)
	if err != nil {
		if isAuthError(err) {
			c.forceLogout(w, r, session)
			return
		}
		log.Printf("loading user detail: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := findUser(users, id)
	if user == nil {
		http.NotFound(w, r)
		return
	}

	data := map[string]any{
		"Title":     user.Name,
		"User":      user,
		"Posts":     postsByAuthor(posts, user.ID),
		"Flash":     c.popFlash(w, r),
		"CSRFToken": c.ensureCSRFToken(w, r),
	}

	if err := c.templates["user.html"].ExecuteTemplate(w, "base", data); err != nil {
		log.Printf("rendering user detail: %v", err)
	}
}

// Every mutation ends in a redirect to the dashboard, whose render refetches
// both lists. No optimistic update, no partial patch.

func (c *Console) ApproveUser(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.api.ApproveUser, "User approved!", "Could not approve the user.")
}

func (c *Console) RestrictUser(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.api.RestrictUser, "Login restricted for the user.", "Could not restrict the user.")
}

func (c *Console) DeleteUser(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.api.DeleteUser, "User permanently deleted.", "Could not delete the user.")
}

func (c *Console) ApprovePost(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.posts.ApprovePost, "Post approved!", "Could not approve the post.")
}

func (c *Console) RejectPost(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.posts.RejectPost, "Post rejected.", "Could not reject the post.")
}

func (c *Console) mutate(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, token, id string) error, success, fallback string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !parseFormWithCSRF(w, r) {
		return
	}

	session := sessionFromContext(r.Context())
	id := r.PathValue("id")

	if err := action(r.Context(), session.APIToken, id); err != nil {
		if isAuthError(err) {
			c.forceLogout(w, r, session)
			return
		}
		log.Printf("mutation on %s: %v", id, err)
		if errors.Is(err, errNotConnected) {
			c.setFlash(w, "error", errNotConnected.Error())
		} else {
			c.setFlash(w, "error", apiMessage(err, fallback))
		}
	} else {
		c.setFlash(w, "success", success)
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// forceLogout handles the platform declaring our token dead: the local
// session is destroyed so the route guard sends the admin back through
// login instead of leaving them on a dashboard that can no longer load.
func (c *Console) forceLogout(w http.ResponseWriter, r *http.Request, session *Session) {
	if err := deleteSession(c.db, session.ID); err != nil {
		log.Printf("forcing logout: %v", err)
	}
	c.clearSessionCookie(w)
	http.Redirect(w, r, "/login?error=session_expired", http.StatusSeeOther)
}
