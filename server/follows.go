package server

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/pagination"
	"yatube/storage"
)

func (s *Server) getFollowedFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	posts, err := s.builder.Followed(r.Context(), viewerID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error building followed feed")
		return
	}

	page := pagination.Paginate(posts, FeedPageSize, r.URL.Query().Get("page"))
	sendJson(w, map[string]any{
		"title": "Favourite authors",
		"page":  page,
	})
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	username := r.PathValue("username")
	profileURL := fmt.Sprintf("/profiles/%s", username)

	// Self-follow is blocked here by username equality only, mirroring the
	// original view-layer check.
	viewer, err := s.manager.GetUserByID(r.Context(), viewerID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error resolving viewer")
		return
	}
	if username == viewer.Username {
		http.Redirect(w, r, profileURL, http.StatusSeeOther)
		return
	}

	followed, err := s.manager.GetUserByUsername(r.Context(), username)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error resolving user")
		return
	}

	if err := s.manager.CreateFollow(r.Context(), viewerID, followed.ID); err != nil {
		sendError(w, http.StatusInternalServerError, "error creating follow")
		return
	}
	http.Redirect(w, r, profileURL, http.StatusSeeOther)
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	username := r.PathValue("username")
	followed, err := s.manager.GetUserByUsername(r.Context(), username)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error resolving user")
		return
	}

	if err := s.manager.DeleteFollow(r.Context(), viewerID, followed.ID); err != nil {
		sendError(w, http.StatusInternalServerError, "error deleting follow")
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/profiles/%s", username), http.StatusSeeOther)
}
