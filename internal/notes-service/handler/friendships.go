package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
)

type transitionFunc func(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error)

func (h *handler) requestFriendship(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	var req friendRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	f, err := h.svc.RequestFriendship(r.Context(), userID, service.FriendRequest{
		Identifier: req.Identifier,
		FriendID:   req.FriendID,
	})
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusCreated, envelope{"friendship": f, "message": "Friend request sent"})
}

func (h *handler) listFriendships(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListFriendships(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"friendships": list})
}

func (h *handler) listPendingRequests(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListPendingRequests(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"friendships": list})
}

func (h *handler) getFriendship(rw http.ResponseWriter, r *http.Request) {
	h.friendship(rw, r, h.svc.GetFriendship, "")
}

func (h *handler) acceptFriendship(rw http.ResponseWriter, r *http.Request) {
	h.friendship(rw, r, h.svc.AcceptFriendship, "Friend request accepted")
}

func (h *handler) rejectFriendship(rw http.ResponseWriter, r *http.Request) {
	h.friendship(rw, r, h.svc.RejectFriendship, "Friend request rejected")
}

func (h *handler) blockFriendship(rw http.ResponseWriter, r *http.Request) {
	h.friendship(rw, r, h.svc.BlockFriendship, "User blocked")
}

func (h *handler) updateFriendship(rw http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, h.logger(r), err)
		return
	}
	h.friendship(rw, r, func(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error) {
		return h.svc.UpdateFriendshipStatus(ctx, userID, id, req.Status)
	}, "Friendship updated")
}

func (h *handler) friendship(rw http.ResponseWriter, r *http.Request, fn transitionFunc, msg string) {
	l := h.logger(r)
	userID, id, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	f, err := fn(r.Context(), userID, id)
	if err != nil {
		fail(rw, l, err)
		return
	}
	body := envelope{"friendship": f}
	if msg != "" {
		body["message"] = msg
	}
	writeJSON(rw, http.StatusOK, body)
}

func (h *handler) deleteFriendship(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, id, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.svc.DeleteFriendship(r.Context(), userID, id); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"message": "Friendship removed"})
}
