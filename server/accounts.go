package server

import (
	"errors"
	"net/http"

	"yatube/auth"
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	fieldErrors := map[string]string{}
	if username == "" {
		fieldErrors["username"] = "this field is required"
	}
	if password == "" {
		fieldErrors["password"] = "this field is required"
	}
	if len(fieldErrors) > 0 {
		sendValidationErrors(w, fieldErrors)
		return
	}

	if _, err := s.manager.GetUserByUsername(r.Context(), username); err == nil {
		sendValidationErrors(w, map[string]string{"username": "already taken"})
		return
	}

	user, err := s.sessions.Register(r.Context(), username, password)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error creating user")
		return
	}
	if err := s.sessions.Create(r.Context(), w, user.ID); err != nil {
		sendError(w, http.StatusInternalServerError, "error creating session")
		return
	}

	sendJsonStatus(w, http.StatusCreated, map[string]any{"username": user.Username})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.Login(
		r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("password"),
	)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		sendError(w, http.StatusUnauthorized, "invalid username or password")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error logging in")
		return
	}

	if err := s.sessions.Create(r.Context(), w, user.ID); err != nil {
		sendError(w, http.StatusInternalServerError, "error creating session")
		return
	}
	sendJson(w, map[string]any{"username": user.Username})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
