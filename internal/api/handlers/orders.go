package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fleet-route-tracker/internal/api/dto"
	"fleet-route-tracker/internal/domain"
	"fleet-route-tracker/internal/ports"
	"fleet-route-tracker/internal/tracking"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// OrderActions are the explicit pickup and delivery transitions.
type OrderActions interface {
	MarkPickedUp(ctx context.Context, orderID, agentID int64) error
	MarkDelivered(ctx context.Context, orderID, agentID int64) error
}

type OrderHandler struct {
	Actions OrderActions
	// Refresh, when set, requests a fleet refresh after a successful action.
	Refresh func()
}

func (h *OrderHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.Actions.MarkPickedUp, domain.OrderPickedUp)
}

func (h *OrderHandler) Delivered(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.Actions.MarkDelivered, domain.OrderDelivered)
}

func (h *OrderHandler) handle(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, orderID, agentID int64) error,
	status domain.OrderStatus,
) {
	orderID, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	agentID, err := agentIDFrom(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := action(r.Context(), orderID, agentID); err != nil {
		code, msg := actionErrorStatus(err)
		if code >= 500 {
			log.Printf("order action failed: order_id=%d agent_id=%d status=%s err=%v", orderID, agentID, status, err)
		}
		writeError(w, r, code, msg)
		return
	}

	if h.Refresh != nil {
		h.Refresh()
	}

	writeJSON(w, r, http.StatusOK, dto.OrderActionResponse{
		OrderID: orderID,
		AgentID: agentID,
		Status:  string(status),
	})
}

// agentIDFrom reads agentId from the query string, falling back to a JSON body.
func agentIDFrom(r *http.Request) (int64, error) {
	if q := strings.TrimSpace(r.URL.Query().Get("agentId")); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil || id <= 0 {
			return 0, errors.New("agentId must be a positive integer")
		}
		return id, nil
	}

	if r.Body == nil {
		return 0, errors.New("agentId is required")
	}
	defer r.Body.Close()

	var req dto.OrderActionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("agentId is required")
		}
		return 0, errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return 0, errors.New("body must contain only one JSON object")
	}
	if req.AgentID <= 0 {
		return 0, errors.New("agent_id must be a positive integer")
	}
	return req.AgentID, nil
}

func actionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tracking.ErrNotNearWarehouse):
		return http.StatusConflict, "agent must be within pickup range of the warehouse"
	case errors.Is(err, tracking.ErrOrderNotAssigned):
		return http.StatusConflict, "order is not assigned to this agent"
	case errors.Is(err, tracking.ErrUnknownOrder), errors.Is(err, ports.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, tracking.ErrUnknownAgent):
		return http.StatusNotFound, "agent not found"
	case errors.Is(err, tracking.ErrUnknownWarehouse):
		return http.StatusUnprocessableEntity, "order has no known warehouse"
	case errors.Is(err, tracking.ErrNoSnapshot):
		return http.StatusServiceUnavailable, "fleet data not loaded yet"
	default:
		return http.StatusBadGateway, "fleet store unavailable"
	}
}
