package httpapi

import (
	"net/http"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), *currentUser(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.profiles.UpdateBio(r.Context(), *currentUser(r), req.Bio)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.profiles.Wishlist(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID := currentUser(r).ID
	if err := h.profiles.AddToWishlist(r.Context(), userID, req.ProductID); err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.profiles.Wishlist(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

// RemoveFromWishlist succeeds whether or not the product was wishlisted.
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		// A malformed id cannot be on the wishlist either.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.profiles.RemoveFromWishlist(r.Context(), currentUser(r).ID, productID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
