package httpapi

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/middleware"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId", "order")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.orders.GetByID(r.Context(), currentUser(r).ID, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.Checkout(r.Context(), currentUser(r).ID, middleware.GetCorrelationID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) SetOrderPaid(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId", "order")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req paidRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	o, err := h.orders.SetPaid(r.Context(), orderID, *req.IsPaid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
