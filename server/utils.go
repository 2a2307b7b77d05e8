package server

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"yatube/utils"
)

func sendError(w http.ResponseWriter, errorCode int, message string) {
	log.Info(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorCode)
	resp := map[string]string{
		"error": message,
	}
	jsonResp := utils.ToJson(resp)
	w.Write(jsonResp)
}

func sendValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	w.Write(utils.ToJson(map[string]any{"errors": fieldErrors}))
}

func sendJson(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(utils.ToJson(value))
}

func sendJsonStatus(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(utils.ToJson(value))
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// requireViewer resolves the authenticated viewer or answers 401, the API
// rendition of the login redirect.
func (s *Server) requireViewer(w http.ResponseWriter, r *http.Request) (uint, bool) {
	viewerID, ok := s.sessions.CurrentUserID(r)
	if !ok {
		sendError(w, http.StatusUnauthorized, "authentication required")
	}
	return viewerID, ok
}
