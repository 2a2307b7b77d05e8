package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"yatube/storage"
	"yatube/storage/models"
)

const sessionCookie = "yatube_session"

var ErrInvalidCredentials = errors.New("invalid username or password")

// Manager issues and resolves session cookies. Sessions live server-side in
// the entity store; the cookie only carries the uuid token.
type Manager struct {
	manager *storage.Manager
	maxAge  time.Duration
}

func NewManager(manager *storage.Manager, maxAge time.Duration) *Manager {
	return &Manager{manager: manager, maxAge: maxAge}
}

func (m *Manager) Register(ctx context.Context, username string, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	return m.manager.CreateUser(ctx, username, string(hash))
}

func (m *Manager) Login(ctx context.Context, username string, password string) (models.User, error) {
	user, err := m.manager.GetUserByUsername(ctx, username)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, userID uint) error {
	id := uuid.New().String()
	expires := time.Now().Add(m.maxAge)

	err := m.manager.CreateSession(ctx, &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: expires,
	})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie(sessionCookie)
	if c != nil && c.Value != "" {
		m.manager.DeleteSession(ctx, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

// CurrentUserID resolves the viewer from the session cookie. Zero and false
// mean anonymous.
func (m *Manager) CurrentUserID(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return 0, false
	}
	session, err := m.manager.GetSession(r.Context(), c.Value)
	if err != nil || time.Now().After(session.ExpiresAt) {
		return 0, false
	}
	return session.UserID, true
}
