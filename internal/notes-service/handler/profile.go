package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

var errNotYourProfile = apperrors.Forbidden("You can only change your own profile")

// profileTarget returns the caller and the profile id named in the path.
// Without an {id} the caller's own profile is meant.
func profileTarget(r *http.Request) (userID, id uuid.UUID, err error) {
	if userID, err = currentUser(r); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if r.PathValue(fieldNameID) == "" {
		return userID, userID, nil
	}
	id, err = pathUUID(r, fieldNameID)
	return userID, id, err
}

func (h *handler) getProfile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, id, err := profileTarget(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if id != userID {
		pub, err := h.svc.GetPublicProfile(r.Context(), id)
		if err != nil {
			fail(rw, l, err)
			return
		}
		writeJSON(rw, http.StatusOK, envelope{"user": pub})
		return
	}
	u, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"user": u})
}

func (h *handler) updateProfile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, id, err := profileTarget(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if id != userID {
		fail(rw, l, errNotYourProfile)
		return
	}
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		Name:            req.Name,
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"user": u, "message": "Profile updated"})
}

func (h *handler) deleteProfile(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, id, err := profileTarget(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if id != userID {
		fail(rw, l, errNotYourProfile)
		return
	}
	if err := h.svc.DeleteProfile(r.Context(), userID); err != nil {
		fail(rw, l, err)
		return
	}
	h.endSession(rw, r)
	writeJSON(rw, http.StatusOK, envelope{"message": "Account deleted"})
}
