package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Richard-mb9/pedidos-service/internal/order/app"
	"github.com/Richard-mb9/pedidos-service/internal/order/domain"
	"github.com/Richard-mb9/pedidos-service/pkg/idempotency"
	"github.com/Richard-mb9/pedidos-service/pkg/metrics"
)

var statusCodeByCategory = map[domain.Category]int{
	domain.CategoryNotFound:   http.StatusNotFound,
	domain.CategoryConflict:   http.StatusConflict,
	domain.CategoryValidation: http.StatusUnprocessableEntity,
	domain.CategoryForbidden:  http.StatusForbidden,
	domain.CategoryInternal:   http.StatusInternalServerError,
}

// Handler wires the order routes to the use cases.
type Handler struct {
	CreateOrder *app.CreateOrder
	ChangeOrder *app.ChangeOrderStatus
	FindOrder   *app.FindOrderByID
	Idempotency app.IdempotencyStore
	Metrics     *metrics.ServerMetrics
}

// Routes builds the chi router for the order API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/orders", h.instrument("create_order", h.create))
	r.Get("/orders/{orderID}", h.instrument("find_order", h.find))
	r.Patch("/orders/{orderID}", h.instrument("update_order_status", h.updateStatus))
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid json"})
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"customerId": "must be a valid uuid"}})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"items": "at least one item is required"}})
		return
	}

	items := make([]app.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"productId": "must be a valid uuid"}})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"quantity": "must be greater than zero"}})
			return
		}
		price, err := decimal.NewFromString(item.UnityPrice)
		if err != nil || price.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"unityPrice": "must be a non-negative decimal"}})
			return
		}
		items = append(items, app.CreateOrderItem{
			ProductID:   productID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   price,
		})
	}

	// Idempotent replay returns the order id from the first attempt.
	idemKey := idempotency.Key(r)
	if idemKey != "" && h.Idempotency != nil {
		if existing, found, err := h.Idempotency.Lookup(r.Context(), idemKey); err == nil && found {
			writeJSON(w, http.StatusOK, CreateOrderResponse{OrderID: existing.String()})
			return
		}
	}

	order, err := h.CreateOrder.Execute(r.Context(), app.CreateOrderInput{
		CustomerID:      customerID,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if idemKey != "" && h.Idempotency != nil {
		if err := h.Idempotency.Remember(r.Context(), idemKey, order.ID); err != nil {
			if existing, found, lerr := h.Idempotency.Lookup(r.Context(), idemKey); lerr == nil && found {
				writeJSON(w, http.StatusOK, CreateOrderResponse{OrderID: existing.String()})
				return
			}
		}
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{OrderID: order.ID.String()})
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"orderId": "must be a valid uuid"}})
		return
	}

	order, err := h.FindOrder.Execute(r.Context(), orderID, true)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]ItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnityPrice:  item.UnitPrice.String(),
		})
	}
	writeJSON(w, http.StatusOK, OrderResponse{
		ID:              order.ID.String(),
		CustomerID:      order.CustomerID.String(),
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status.String(),
		CreatedAt:       order.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:       order.UpdatedAt.Format(time.RFC3339Nano),
		Items:           items,
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"orderId": "must be a valid uuid"}})
		return
	}
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid json"})
		return
	}
	next, err := domain.ParseStatus(req.NewStatus)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": map[string]string{"newStatus": err.Error()}})
		return
	}

	var opts []domain.StatusChangeOption
	if req.ChangedBy != "" {
		opts = append(opts, domain.WithChangedBy(req.ChangedBy))
	}
	if req.Reason != "" {
		opts = append(opts, domain.WithReason(req.Reason))
	}

	if err := h.ChangeOrder.Execute(r.Context(), orderID, next, opts...); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var categorized domain.Categorized
	if errors.As(err, &categorized) {
		code, ok := statusCodeByCategory[categorized.Category()]
		if !ok {
			code = http.StatusInternalServerError
		}
		writeJSON(w, code, map[string]any{"detail": categorized.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
}

func (h *Handler) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Metrics == nil {
			next(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		h.Metrics.Requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		h.Metrics.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
