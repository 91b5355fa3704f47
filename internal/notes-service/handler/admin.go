package handler

import (
	"net/http"
	"strings"
)

const tablePrefix = "all-"

func (h *handler) dump(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	table := strings.TrimPrefix(r.PathValue(fieldNameTable), tablePrefix)
	rows, err := h.svc.Dump(r.Context(), userID, table)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{table: rows})
}

func (h *handler) dumpAll(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	all, err := h.svc.DumpAll(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, all)
}
