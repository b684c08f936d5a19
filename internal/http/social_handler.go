package httpapi

import (
	"net/http"
)

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.catalog.GetProduct(r.Context(), productID); err != nil {
		h.writeError(w, r, err)
		return
	}
	comments, err := h.social.ListComments(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.social.AddComment(r.Context(), currentUser(r).ID, productID, req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) CreateLike(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	l, err := h.social.AddLike(r.Context(), currentUser(r).ID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rt, err := h.social.AddRating(r.Context(), currentUser(r).ID, productID, req.Stars)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}
