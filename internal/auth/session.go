package auth

import (
	"encoding/gob"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName   = "workshop_session"
	adminIDKey    = "admin_id"
	sessionMaxAge = 86400 // one day
)

// Flash is a one-shot message shown on the next rendered page.
// Category maps to the alert style (success, danger).
type Flash struct {
	Category string
	Message  string
}

func init() {
	// Cookie sessions are gob-encoded; custom values must be registered.
	gob.Register(Flash{})
}

// SessionManager wraps the cookie store holding the admin login state and
// flash messages.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(sessionMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return &SessionManager{store: store}
}

func (m *SessionManager) session(r *http.Request) *sessions.Session {
	// Get never fails fatally: a bad cookie yields a fresh session.
	s, _ := m.store.Get(r, sessionName)
	return s
}

// SignIn binds the session to an admin id.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, adminID string) error {
	s := m.session(r)
	s.Values[adminIDKey] = adminID
	return s.Save(r, w)
}

// SignOut invalidates the session.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) {
	s := m.session(r)
	delete(s.Values, adminIDKey)
	s.Options.MaxAge = -1
	if err := s.Save(r, w); err != nil {
		log.Printf("Warning: session: sign out: %v", err)
	}
}

// AdminID returns the signed-in admin id, or "" when not authenticated.
func (m *SessionManager) AdminID(r *http.Request) string {
	id, _ := m.session(r).Values[adminIDKey].(string)
	return id
}

// AddFlash queues a one-shot message for the next page render.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	s := m.session(r)
	s.AddFlash(Flash{Category: category, Message: message})
	if err := s.Save(r, w); err != nil {
		log.Printf("Warning: session: add flash: %v", err)
	}
}

// Flashes drains and returns queued messages.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) > 0 {
		if err := s.Save(r, w); err != nil {
			log.Printf("Warning: session: drain flashes: %v", err)
		}
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// RequireAdmin gates admin routes: unauthenticated requests are redirected
// to the login page.
func (m *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.AdminID(r) == "" {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
