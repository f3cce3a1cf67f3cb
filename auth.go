package main

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sessionCookieName = "session"
	csrfCookieName    = "csrf"
	csrfFieldName     = "csrf_token"
	sessionDuration   = 24 * time.Hour
)

// sealer encrypts platform bearer tokens before they hit the session table,
// so a leaked console.db does not leak live platform credentials.
type sealer struct {
	aead cipher.AEAD
}

func newSealer(hexKey string) (*sealer, error) {
	var key []byte
	if hexKey == "" {
		log.Println("WARNING: SESSION_KEY not set, sessions will not survive a restart")
		key = make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session key: %w", err)
		}
	} else {
		var err error
		key, err = hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("decoding SESSION_KEY: %w", err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("SESSION_KEY must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
		}
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("initializing token sealer: %w", err)
	}
	return &sealer{aead: aead}, nil
}

func (s *sealer) seal(plaintext string) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

func (s *sealer) open(box []byte) (string, error) {
	if len(box) < s.aead.NonceSize() {
		return "", errors.New("sealed token too short")
	}
	nonce, ciphertext := box[:s.aead.NonceSize()], box[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("opening sealed token: %w", err)
	}
	return string(plaintext), nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func createSession(db *sql.DB, box *sealer, apiToken, role string) (string, error) {
	id, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}

	sealed, err := box.seal(apiToken)
	if err != nil {
		return "", fmt.Errorf("sealing platform token: %w", err)
	}

	expiresAt := time.Now().Add(sessionDuration)
	_, err = db.Exec(`
		INSERT INTO sessions (id, api_token, role, expires_at)
		VALUES (?, ?, ?, ?)`, id, sealed, role, expiresAt)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}

	return id, nil
}

func getSession(db *sql.DB, box *sealer, id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, api_token, role, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?`, id, time.Now())

	var session Session
	var sealed []byte
	err := row.Scan(&session.ID, &sealed, &session.Role, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	// A token that no longer opens (rotated key, tampered row) is treated
	// as no session at all.
	session.APIToken, err = box.open(sealed)
	if err != nil {
		return nil, nil
	}

	return &session, nil
}

func deleteSession(db *sql.DB, id string) error {
	_, err := db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// CSRF protection using double-submit cookie pattern

func setCSRFCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

func getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func validateCSRF(r *http.Request) bool {
	cookieToken := getCSRFToken(r)
	formToken := r.FormValue(csrfFieldName)

	if cookieToken == "" || formToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

func parseFormWithCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return false
	}
	return true
}

// ensureCSRFToken returns existing token or creates a new one
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	token := getCSRFToken(r)
	if token != "" {
		return token
	}

	token, err := generateToken()
	if err != nil {
		return ""
	}
	setCSRFCookie(w, token, c.cfg.SecureCookies)
	return token
}

func (c *Console) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

func (c *Console) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cfg.SecureCookies,
		MaxAge:   -1,
	})
}

func (c *Console) sessionFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	session, err := getSession(c.db, c.box, cookie.Value)
	if err != nil {
		log.Printf("reading session: %v", err)
		return nil
	}
	return session
}

type sessionContextKey struct{}

func sessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey{}).(*Session)
	return session
}

// requireAdmin gates the dashboard routes. This is a UI convenience only:
// it knows nothing about whether the stored bearer token is still valid,
// and the platform API re-checks authorization on every call.
func (c *Console) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := c.sessionFromRequest(r)
		if session == nil || !session.IsAdmin() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next(w, r.WithContext(ctx))
	}
}
