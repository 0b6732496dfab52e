package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/shop-orders/internal/service"
)

// UpdateStatusRequest — входной JSON для смены статуса заказа
type UpdateStatusRequest struct {
	OrderStatus string `json:"order_status" validate:"required"`
}

// AdminListOrdersHandler обрабатывает запрос GET /api/admin/orders?page=N&status=S
func AdminListOrdersHandler(log *slog.Logger, adminService service.AdminOrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListOrdersHandler"
		logger := log.With(slog.String("op", op))

		if _, ok := jwtmiddleware.AdminFromContext(r.Context()); !ok {
			logger.Error("adminID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var status *models.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			s := models.OrderStatus(raw)
			if !s.Valid() {
				http.Error(w, "invalid status filter", http.StatusBadRequest)
				return
			}
			status = &s
		}

		orders, err := adminService.ListOrders(r.Context(), status, pageParam(r))
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, orders)
	}
}

// AdminGetOrderHandler обрабатывает запрос GET /api/admin/orders/{orderID}
func AdminGetOrderHandler(log *slog.Logger, adminService service.AdminOrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminGetOrderHandler"
		logger := log.With(slog.String("op", op))

		if _, ok := jwtmiddleware.AdminFromContext(r.Context()); !ok {
			logger.Error("adminID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		order, err := adminService.GetOrder(r.Context(), orderID)
		if err != nil {
			logger.Error("failed to get order", slog.Any("error", err))
			http.Error(w, err.Error(), orderErrorStatus(err))
			return
		}

		writeJSON(w, logger, order)
	}
}

// ClaimOrderHandler обрабатывает запрос POST /api/admin/orders/{orderID}/claim
func ClaimOrderHandler(log *slog.Logger, adminService service.AdminOrderService) http.HandlerFunc {
	return adminTransitionHandler(log, "handlers.ClaimOrderHandler",
		func(r *http.Request, orderID, adminID int64, adminService service.AdminOrderService) (*models.Order, error) {
			return adminService.ClaimForProcessing(r.Context(), orderID, adminID)
		}, adminService)
}

// ReleaseOrderHandler обрабатывает запрос POST /api/admin/orders/{orderID}/release
func ReleaseOrderHandler(log *slog.Logger, adminService service.AdminOrderService) http.HandlerFunc {
	return adminTransitionHandler(log, "handlers.ReleaseOrderHandler",
		func(r *http.Request, orderID, adminID int64, adminService service.AdminOrderService) (*models.Order, error) {
			return adminService.ReleaseProcessing(r.Context(), orderID, adminID)
		}, adminService)
}

// UpdateStatusHandler обрабатывает запрос PUT /api/admin/orders/{orderID}/status
func UpdateStatusHandler(log *slog.Logger, adminService service.AdminOrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateStatusHandler"
		logger := log.With(slog.String("op", op))

		adminID, ok := jwtmiddleware.AdminFromContext(r.Context())
		if !ok {
			logger.Error("adminID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		order, err := adminService.UpdateStatus(r.Context(), orderID,
			models.OrderStatus(req.OrderStatus), adminID)
		if err != nil {
			logger.Error("failed to update status", slog.Any("error", err))
			http.Error(w, err.Error(), orderErrorStatus(err))
			return
		}

		writeJSON(w, logger, order)
	}
}

func adminTransitionHandler(
	log *slog.Logger,
	op string,
	call func(r *http.Request, orderID, adminID int64, adminService service.AdminOrderService) (*models.Order, error),
	adminService service.AdminOrderService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", op))

		adminID, ok := jwtmiddleware.AdminFromContext(r.Context())
		if !ok {
			logger.Error("adminID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		order, err := call(r, orderID, adminID, adminService)
		if err != nil {
			logger.Error("transition failed", slog.Any("error", err))
			http.Error(w, err.Error(), orderErrorStatus(err))
			return
		}

		writeJSON(w, logger, order)
	}
}
