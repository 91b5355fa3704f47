package handler

import (
	"net/http"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
)

func (h *handler) listFiles(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	files, err := h.svc.ListFiles(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"files": files})
}

func (h *handler) createFile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	file, err := h.svc.CreateFile(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusCreated, envelope{"file": file, "message": "File created"})
}

func (h *handler) getFile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, fileID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	file, err := h.svc.GetFile(r.Context(), userID, fileID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"file": file})
}

func (h *handler) updateFile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, fileID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	var req updateFileRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	file, err := h.svc.UpdateFile(r.Context(), userID, fileID, service.FileUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"file": file, "message": "File updated"})
}

func (h *handler) deleteFile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, fileID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.svc.DeleteFile(r.Context(), userID, fileID); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"message": "File deleted"})
}

func (h *handler) toggleFavourite(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, fileID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	on, err := h.svc.ToggleFavourite(r.Context(), userID, fileID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	msg := "Removed from favourites"
	if on {
		msg = "Added to favourites"
	}
	writeJSON(rw, http.StatusOK, envelope{"isFavorite": on, "message": msg})
}

func (h *handler) toggleTrash(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, fileID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	on, err := h.svc.ToggleTrash(r.Context(), userID, fileID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	msg := "Restored from trash"
	if on {
		msg = "Moved to trash"
	}
	writeJSON(rw, http.StatusOK, envelope{"isTrashed": on, "message": msg})
}
