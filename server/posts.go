package server

import (
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"yatube/cache"
	"yatube/monitoring"
	"yatube/pagination"
	"yatube/storage"
	"yatube/storage/models"
	"yatube/utils"
)

// EditOutcome is the authorization decision for a post mutation. A
// non-author never gets an error: they are sent to the post's detail view
// instead. Callers must branch on Allowed.
type EditOutcome struct {
	Allowed    bool
	RedirectTo string
}

func editOutcome(post models.Post, viewerID uint) EditOutcome {
	if post.AuthorID == viewerID {
		return EditOutcome{Allowed: true}
	}
	return EditOutcome{RedirectTo: fmt.Sprintf("/posts/%d", post.ID)}
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	key := cache.RequestKey(r)
	if body, ok := s.pages.Get(key); ok {
		monitoring.PageCacheHits.Inc()
		w.Write(body)
		return
	}
	monitoring.PageCacheMisses.Inc()

	posts, err := s.builder.Global(r.Context())
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error building global feed")
		return
	}

	page := pagination.Paginate(posts, FeedPageSize, r.URL.Query().Get("page"))
	body := utils.ToJson(map[string]any{
		"title": "Latest updates on the site",
		"page":  page,
	})

	s.pages.Set(key, body)
	w.Write(body)
}

func (s *Server) getGroupFeed(w http.ResponseWriter, r *http.Request) {
	group, posts, err := s.builder.Group(r.Context(), r.PathValue("slug"))
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "group not found")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error building group feed")
		return
	}

	page := pagination.Paginate(posts, FeedPageSize, r.URL.Query().Get("page"))
	sendJson(w, map[string]any{
		"group": group,
		"page":  page,
	})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := s.sessions.CurrentUserID(r)

	profile, err := s.builder.Profile(r.Context(), r.PathValue("username"), viewerID)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "user not found")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error building profile feed")
		return
	}

	page := pagination.Paginate(profile.Posts, ProfilePageSize, r.URL.Query().Get("page"))
	sendJson(w, map[string]any{
		"username":   profile.User.Username,
		"post_count": profile.PostCount,
		"following":  profile.Following,
		"page":       page,
	})
}

func (s *Server) getPostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}

	post, err := s.manager.GetPost(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error loading post")
		return
	}

	count, err := s.manager.CountPostsByAuthor(r.Context(), post.AuthorID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error loading post")
		return
	}
	comments, err := s.manager.ListComments(r.Context(), post.ID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error loading comments")
		return
	}

	sendJson(w, map[string]any{
		"post":       post,
		"post_count": count,
		"comments":   comments,
	})
}

// postForm validates the shared create/edit form input. The group, when
// given, is resolved by slug; the image is an opaque reference.
func (s *Server) postForm(w http.ResponseWriter, r *http.Request) (text string, groupID *uint, image string, ok bool) {
	text = r.PostFormValue("text")
	if text == "" {
		sendValidationErrors(w, map[string]string{"text": "this field is required"})
		return "", nil, "", false
	}

	if slug := r.PostFormValue("group"); slug != "" {
		group, err := s.manager.GetGroupBySlug(r.Context(), slug)
		if errors.Is(err, storage.ErrNotFound) {
			sendValidationErrors(w, map[string]string{"group": "unknown group"})
			return "", nil, "", false
		} else if err != nil {
			sendError(w, http.StatusInternalServerError, "error resolving group")
			return "", nil, "", false
		}
		groupID = &group.ID
	}

	return text, groupID, r.PostFormValue("image"), true
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	text, groupID, image, ok := s.postForm(w, r)
	if !ok {
		return
	}

	post := models.Post{
		Text:     text,
		Image:    image,
		AuthorID: viewerID,
		GroupID:  groupID,
	}
	if err := s.manager.CreatePost(r.Context(), &post); err != nil {
		log.Errorf("Error creating post: %v", err)
		sendError(w, http.StatusInternalServerError, "error creating post")
		return
	}

	sendJsonStatus(w, http.StatusCreated, map[string]any{"id": post.ID})
}

// loadForEdit runs the shared fetch + authorization for the edit endpoints.
// When ok is false the response has already been written (404, or the
// non-author redirect).
func (s *Server) loadForEdit(w http.ResponseWriter, r *http.Request, viewerID uint) (models.Post, bool) {
	id, okID := pathID(r)
	if !okID {
		sendError(w, http.StatusNotFound, "post not found")
		return models.Post{}, false
	}

	post, err := s.manager.GetPost(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "post not found")
		return models.Post{}, false
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error loading post")
		return models.Post{}, false
	}

	outcome := editOutcome(post, viewerID)
	if !outcome.Allowed {
		http.Redirect(w, r, outcome.RedirectTo, http.StatusSeeOther)
		return models.Post{}, false
	}
	return post, true
}

func (s *Server) getPostEdit(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	post, ok := s.loadForEdit(w, r, viewerID)
	if !ok {
		return
	}

	groups, err := s.manager.ListGroups(r.Context())
	if err != nil {
		sendError(w, http.StatusInternalServerError, "error loading groups")
		return
	}

	sendJson(w, map[string]any{
		"post":    post,
		"groups":  groups,
		"is_edit": true,
	})
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	post, ok := s.loadForEdit(w, r, viewerID)
	if !ok {
		return
	}

	text, groupID, image, ok := s.postForm(w, r)
	if !ok {
		return
	}

	post.Text = text
	post.GroupID = groupID
	post.Image = image
	if err := s.manager.UpdatePost(r.Context(), &post); err != nil {
		sendError(w, http.StatusInternalServerError, "error updating post")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d", post.ID), http.StatusSeeOther)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	post, ok := s.loadForEdit(w, r, viewerID)
	if !ok {
		return
	}

	if err := s.manager.DeletePost(r.Context(), post.ID); err != nil {
		sendError(w, http.StatusInternalServerError, "error deleting post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	id, okID := pathID(r)
	if !okID {
		sendError(w, http.StatusNotFound, "post not found")
		return
	}
	post, err := s.manager.GetPost(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, http.StatusNotFound, "post not found")
		return
	} else if err != nil {
		sendError(w, http.StatusInternalServerError, "error loading post")
		return
	}

	text := r.PostFormValue("text")
	if text == "" {
		sendValidationErrors(w, map[string]string{"text": "this field is required"})
		return
	}

	comment := models.Comment{
		Text:     text,
		PostID:   post.ID,
		AuthorID: viewerID,
	}
	if err := s.manager.CreateComment(r.Context(), &comment); err != nil {
		sendError(w, http.StatusInternalServerError, "error creating comment")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d", post.ID), http.StatusSeeOther)
}
