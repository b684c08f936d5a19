package httpapi

import (
	"net/http"
)

type addCartItemResponse struct {
	Status   string `json:"status"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.List(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.carts.AddOrIncrement(r.Context(), currentUser(r).ID, req.ProductID, req.quantity())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addCartItemResponse{
		Status:   "added",
		ItemID:   item.ID,
		Quantity: item.Quantity,
	})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.carts.Remove(r.Context(), currentUser(r).ID, productID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
