package handler

import (
	"net/http"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
)

func shareQuery(r *http.Request) service.ShareQuery {
	q := r.URL.Query()
	return service.ShareQuery{
		Permission: q.Get("permission"),
		Query:      q.Get("q"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
}

func (h *handler) shareFile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	share, created, err := h.svc.ShareFile(r.Context(), userID, service.ShareInput{
		FileID:     req.FileID,
		Identifier: req.Identifier,
		Permission: req.Permission,
	})
	if err != nil {
		fail(rw, l, err)
		return
	}
	if !created {
		writeJSON(rw, http.StatusOK, envelope{"share": share, "message": "Share updated"})
		return
	}
	writeJSON(rw, http.StatusCreated, envelope{"share": share, "message": "File shared"})
}

func (h *handler) listSharedWithMe(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListSharedWithMe(r.Context(), userID, shareQuery(r))
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, list)
}

func (h *handler) listSharedByMe(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListSharedByMe(r.Context(), userID, shareQuery(r))
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, list)
}

func (h *handler) getShare(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, shareID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	share, err := h.svc.GetShare(r.Context(), userID, shareID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"share": share})
}

func (h *handler) updateShare(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, shareID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	var req permissionRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	share, err := h.svc.UpdateShare(r.Context(), userID, shareID, req.Permission)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"share": share, "message": "Share updated"})
}

func (h *handler) deleteShare(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, shareID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.svc.DeleteShare(r.Context(), userID, shareID); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"message": "Share revoked"})
}
