package handler

import "net/http"

func (h *handler) listActivities(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListActivities(r.Context(), userID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, list)
}

// listFileActivities answers for the file named by {id}.
func (h *handler) listFileActivities(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, fileID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListFileActivities(r.Context(), userID, fileID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"activities": list})
}
