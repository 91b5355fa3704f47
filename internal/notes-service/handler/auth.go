package handler

import (
	"net/http"
	"time"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/handler/middleware"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/session"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

func (h *handler) setSessionCookie(rw http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(rw, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handler) clearSessionCookie(rw http.ResponseWriter) {
	http.SetCookie(rw, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// startSession issues a token for u and sets it as the session cookie.
func (h *handler) startSession(rw http.ResponseWriter, u *database.User) error {
	token, expires, err := h.sessions.Issue(u.ID, u.Username, string(u.Role))
	if err != nil {
		return apperrors.Internal(err, "can't issue token")
	}
	h.setSessionCookie(rw, token, expires)
	return nil
}

// endSession revokes the caller's token and clears the cookie.
func (h *handler) endSession(rw http.ResponseWriter, r *http.Request) {
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		if err := h.sessions.Revoke(r.Context(), c); err != nil {
			h.logger(r).WithError(err).Warn("can't revoke token")
		}
	}
	h.clearSessionCookie(rw)
}

func (h *handler) register(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	u, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.startSession(rw, u); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusCreated, envelope{"user": u, "message": "Registered"})
}

func (h *handler) login(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(rw, l, err)
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.startSession(rw, u); err != nil {
		fail(rw, l, err)
		return
	}
	l.WithField(fieldNameUserID, u.ID).Info("user logged in")
	writeJSON(rw, http.StatusOK, envelope{"user": u, "message": "Logged in"})
}

func (h *handler) logout(rw http.ResponseWriter, r *http.Request) {
	h.endSession(rw, r)
	writeJSON(rw, http.StatusOK, envelope{"message": "Logged out"})
}
