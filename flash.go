package main

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// The old console reported every outcome with a blocking alert(). Here each
// mutation redirects back to the dashboard and leaves a one-shot cookie the
// next render turns into a banner.

const flashCookieName = "flash"

type flash struct {
	Kind    string // "success" or "error"
	Message string
}

func (c *Console) setFlash(w http.ResponseWriter, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cfg.SecureCookies,
		MaxAge:   60,
	})
}

func (c *Console) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.cfg.SecureCookies,
		MaxAge:   -1,
	})

	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}
