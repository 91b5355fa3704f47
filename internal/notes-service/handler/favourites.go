package handler

import "net/http"

func (h *handler) listFavourites(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, err := currentUser(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	list, err := h.svc.ListFavourites(r.Context(), userID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"favourites": list})
}

func (h *handler) addFavourite(rw http.ResponseWriter, r *http.Request) {
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
	fav, err := h.svc.AddFavourite(r.Context(), userID, req.FileID)
	if err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusCreated, envelope{"favourite": fav, "message": "Added to favourites"})
}

func (h *handler) removeFavourite(rw http.ResponseWriter, r *http.Request) {
	l := h.logger(r)
	userID, favID, err := target(r)
	if err != nil {
		fail(rw, l, err)
		return
	}
	if err := h.svc.RemoveFavourite(r.Context(), userID, favID); err != nil {
		fail(rw, l, err)
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"message": "Removed from favourites"})
}
