package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/darzi/internal/model"
	"github.com/dukerupert/darzi/internal/store"
	"github.com/dukerupert/darzi/internal/websocket"
)

type OrderHandler struct {
	orders    *store.OrderStore
	customers *store.CustomerStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewOrderHandler(os *store.OrderStore, cs *store.CustomerStore, hub *websocket.Hub, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: os, customers: cs, hub: hub, logger: logger}
}

func (h *OrderHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

var validStatuses = map[model.OrderStatus]bool{
	model.OrderStatusPending:   true,
	model.OrderStatusCompleted: true,
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !validStatuses[model.OrderStatus(status)] {
		errorJSON(w, http.StatusBadRequest, "status must be pending or completed")
		return
	}

	orders, err := h.orders.List(status)
	if err != nil {
		h.logger.Error("list orders", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if order == nil {
		errorJSON(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Order
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.CustomerID == "" {
		errorJSON(w, http.StatusBadRequest, "customer_id is required")
		return
	}
	customer, err := h.customers.GetByID(req.CustomerID)
	if err != nil {
		h.logger.Error("get customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get customer")
		return
	}
	if customer == nil {
		errorJSON(w, http.StatusBadRequest, "customer does not exist")
		return
	}

	order, err := h.orders.Create(&req)
	if err != nil {
		h.logger.Error("create order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	h.broadcast(websocket.NewMessage("order", "created", order.ID, nil))

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.orders.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if existing == nil {
		errorJSON(w, http.StatusNotFound, "order not found")
		return
	}

	var req model.Order
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	order, err := h.orders.Update(id, &req)
	if err != nil {
		h.logger.Error("update order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	h.broadcast(websocket.NewMessage("order", "updated", id, nil))

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validStatuses[req.Status] {
		errorJSON(w, http.StatusBadRequest, "status must be pending or completed")
		return
	}

	existing, err := h.orders.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if existing == nil {
		errorJSON(w, http.StatusNotFound, "order not found")
		return
	}

	order, err := h.orders.UpdateStatus(id, req.Status)
	if err != nil {
		h.logger.Error("update order status", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	h.broadcast(websocket.NewMessage("order", "updated", id, nil))

	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.orders.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	if existing == nil {
		errorJSON(w, http.StatusNotFound, "order not found")
		return
	}

	if err := h.orders.Delete(id); err != nil {
		h.logger.Error("delete order", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	h.broadcast(websocket.NewMessage("order", "deleted", id, nil))

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
