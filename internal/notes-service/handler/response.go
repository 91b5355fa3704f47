package handler

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type envelope map[string]any

func writeJSON(rw http.ResponseWriter, status int, body any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(body)
}

// fail answers with the error envelope. Internal errors are logged with their cause.
func fail(rw http.ResponseWriter, l *log.Entry, err error) {
	code := apperrors.CodeOf(err)
	status := apperrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		l.WithError(err).Error("request failed")
	}
	writeJSON(rw, status, envelope{"error": apperrors.PublicMessage(err)})
}
