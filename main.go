package main

import (
	"database/sql"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
)

// Console is the admin moderation console for the platform. It holds no
// user or post data of its own; everything renders from fresh platform
// API responses, and only login sessions persist locally.
type Console struct {
	cfg       Config
	db        *sql.DB
	box       *sealer
	api       *PlatformClient
	posts     PostModerator
	templates map[string]*template.Template
}

func NewConsole(cfg Config, db *sql.DB, box *sealer) *Console {
	return &Console{
		cfg:       cfg,
		db:        db,
		box:       box,
		api:       NewPlatformClient(cfg.APIBaseURL),
		posts:     notConnectedModerator{},
		templates: loadTemplates(cfg.MediaBaseURL),
	}
}

func (c *Console) routes() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/", c.Login)
	mux.HandleFunc("/login", c.Login)
	mux.HandleFunc("/logout", c.Logout)

	// Admin-gated routes
	mux.HandleFunc("/dashboard", c.requireAdmin(c.Dashboard))
	mux.HandleFunc("/dashboard/users/{id}", c.requireAdmin(c.UserDetail))
	mux.HandleFunc("/dashboard/users/{id}/approve", c.requireAdmin(c.ApproveUser))
	mux.HandleFunc("/dashboard/users/{id}/restrict", c.requireAdmin(c.RestrictUser))
	mux.HandleFunc("/dashboard/users/{id}/delete", c.requireAdmin(c.DeleteUser))
	mux.HandleFunc("/dashboard/posts/{id}/approve", c.requireAdmin(c.ApprovePost))
	mux.HandleFunc("/dashboard/posts/{id}/reject", c.requireAdmin(c.RejectPost))

	return loggingMiddleware(mux)
}

func main() {
	godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	box, err := newSealer(cfg.SessionKey)
	if err != nil {
		log.Fatalf("initializing session sealer: %v", err)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err = initDB(db); err != nil {
		log.Fatalf("initializing database: %v", err)
	}

	if err = cleanupExpiredSessions(db); err != nil {
		log.Printf("cleaning up expired sessions: %v", err)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if err := cleanupExpiredSessions(db); err != nil {
				log.Printf("cleaning up expired sessions: %v", err)
			}
		}
	}()

	console := NewConsole(cfg, db, box)

	log.Printf("Console starting on %s (platform API: %s)", cfg.Addr, cfg.APIBaseURL)
	log.Fatal(http.ListenAndServe(cfg.Addr, console.routes()))
}
