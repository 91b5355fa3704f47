package handler

import (
	"fmt"
	"net/http"
)

func (h *handler) listTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListTrash(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"trash": list})
}

func (h *handler) addTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	var req fileRefRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	entry, err := h.svc.AddTrash(r.Context(), userID, req.FileID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusCreated, envelope{"trash": entry, "message": "Moved to trash"})
}

func (h *handler) getTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, trashID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	entry, err := h.svc.GetTrash(r.Context(), userID, trashID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"trash": entry})
}

func (h *handler) restoreTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, trashID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.svc.RestoreTrash(r.Context(), userID, trashID); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"message": "Restored from trash"})
}

func (h *handler) deleteTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, trashID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.svc.DeleteTrashedFile(r.Context(), userID, trashID); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"message": "File permanently deleted"})
}

func (h *handler) trashStats(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	stats, err := h.svc.TrashStats(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"stats": stats})
}

func (h *handler) emptyTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	res, err := h.svc.EmptyTrash(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	msg := fmt.Sprintf("Deleted %d file(s)", res.DeletedCount)
	if res.SkippedCount > 0 {
		msg += fmt.Sprintf(", skipped %d not owned by you", res.SkippedCount)
	}
	writeJSON(rw, http.StatusOK, envelope{
		"message":      msg,
		"deletedCount": res.DeletedCount,
		"skippedCount": res.SkippedCount,
	})
}
