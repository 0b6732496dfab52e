package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/gateway"
	"github.com/linemk/shop-orders/internal/notify"
	"github.com/linemk/shop-orders/internal/storage"
)

// CreateOrderResult — то, что нужно клиенту для оплаты на своей стороне
type CreateOrderResult struct {
	OrderID        int64   `json:"order_id"`
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

// OrderService — пользовательская часть жизненного цикла заказа:
// создание заказа у шлюза и подтверждение оплаты
type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, address, phone string) (*CreateOrderResult, error)
	VerifyPayment(ctx context.Context, userID int64, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error)
	ListOrders(ctx context.Context, userID int64, page int) ([]*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

// orderService — конкретная реализация OrderService.
type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	cart      CartSnapshotService
	gw        gateway.PaymentGateway
	pub       notify.Publisher
	currency  string
}

func NewOrderService(
	log *slog.Logger,
	orderRepo storage.OrderStorage,
	cart CartSnapshotService,
	gw gateway.PaymentGateway,
	pub notify.Publisher,
	currency string,
) OrderService {
	return &orderService{
		log:       log,
		orderRepo: orderRepo,
		cart:      cart,
		gw:        gw,
		pub:       pub,
		currency:  currency,
	}
}

// CreateOrder оформляет заказ: снимок корзины, заказ у шлюза, запись в REQUESTED.
// Если шлюз недоступен, заказ не сохраняется вовсе
func (s *orderService) CreateOrder(ctx context.Context, userID int64, address, phone string) (*CreateOrderResult, error) {
	const op = "service.OrderService.CreateOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("creating order")

	snapshot, err := s.cart.GetPricedSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Шлюз принимает сумму в минимальных единицах валюты
	amountMinor := int64(math.Round(snapshot.TotalPrice * 100))
	receiptID := "rcpt_" + uuid.NewString()

	gatewayOrderID, err := s.gw.OpenOrder(ctx, amountMinor, s.currency, receiptID)
	if err != nil {
		logger.Error("failed to open gateway order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to open gateway order: %w", op, err)
	}

	order := &models.Order{
		UserID:          userID,
		OrderDetails:    *snapshot,
		Address:         address,
		Phone:           phone,
		Amount:          snapshot.TotalPrice,
		PaymentVerified: false,
		GatewayOrderID:  gatewayOrderID,
		OrderStatus:     models.StatusRequested,
	}
	order, err = s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error("failed to persist order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to persist order: %w", op, err)
	}

	logger.Info("order created",
		slog.Int64("orderID", order.ID),
		slog.String("gatewayOrderID", gatewayOrderID),
		slog.Int64("amountMinor", amountMinor),
	)
	return &CreateOrderResult{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrderID,
		Amount:         order.Amount,
		Currency:       s.currency,
	}, nil
}

// VerifyPayment проверяет подпись колбэка и помечает заказ оплаченным.
// Поиск ограничен владельцем: чужой заказ подтвердить нельзя.
// Повторный вызов по уже оплаченному заказу — no-op
func (s *orderService) VerifyPayment(ctx context.Context, userID int64, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error) {
	const op = "service.OrderService.VerifyPayment"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("userID", userID),
		slog.String("gatewayOrderID", gatewayOrderID),
	)

	order, err := s.orderRepo.GetOrderByGatewayID(ctx, userID, gatewayOrderID)
	if err != nil {
		logger.Warn("order lookup failed", slog.Any("error", err))
		return nil, err
	}

	if order.PaymentVerified {
		logger.Info("payment already verified")
		return order, nil
	}

	if !s.gw.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		logger.Warn("signature mismatch")
		return nil, ErrPaymentVerificationFailed
	}

	order.GatewayPaymentID = &gatewayPaymentID
	order.PaymentVerified = true
	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to save order: %w", op, err)
	}

	// уведомление отправляется только после успешного сохранения
	if err := s.pub.Publish(ctx, notify.AdminChannel, notify.EventOrderPaid, order); err != nil {
		logger.Warn("failed to publish notification", slog.Any("error", err))
	}

	logger.Info("payment verified", slog.Int64("orderID", order.ID))
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID int64, page int) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.ListOrdersByUserID(ctx, userID, page)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

// GetOrder отдаёт заказ только его владельцу
func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		s.log.Warn("order belongs to another user",
			slog.String("op", op), slog.Int64("orderID", orderID), slog.Int64("userID", userID))
		return nil, storage.ErrOrderNotFound
	}
	return order, nil
}
