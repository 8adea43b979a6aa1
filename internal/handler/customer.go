package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/darzi/internal/model"
	"github.com/dukerupert/darzi/internal/store"
	"github.com/dukerupert/darzi/internal/websocket"
)

type CustomerHandler struct {
	customers *store.CustomerStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewCustomerHandler(cs *store.CustomerStore, hub *websocket.Hub, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{customers: cs, hub: hub, logger: logger}
}

func (h *CustomerHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("list customers", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get customer")
		return
	}
	if customer == nil {
		errorJSON(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Customer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}

	customer, err := h.customers.Create(&req)
	if err != nil {
		h.logger.Error("create customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	h.broadcast(websocket.NewMessage("customer", "created", customer.ID, nil))

	writeJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.customers.GetByID(id)
	if err != nil {
		h.logger.Error("get customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get customer")
		return
	}
	if existing == nil {
		errorJSON(w, http.StatusNotFound, "customer not found")
		return
	}

	var req model.Customer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "name is required")
		return
	}

	customer, err := h.customers.Update(id, &req)
	if err != nil {
		h.logger.Error("update customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to update customer")
		return
	}

	h.broadcast(websocket.NewMessage("customer", "updated", id, nil))

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.customers.GetByID(id)
	if err != nil {
		h.logger.Error("get customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to get customer")
		return
	}
	if existing == nil {
		errorJSON(w, http.StatusNotFound, "customer not found")
		return
	}

	// Orders cascade with the customer at the schema level
	if err := h.customers.Delete(id); err != nil {
		h.logger.Error("delete customer", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}

	h.broadcast(websocket.NewMessage("customer", "deleted", id, nil))

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
