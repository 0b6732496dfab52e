package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/notify"
	"github.com/linemk/shop-orders/internal/storage"
)

// AdminOrderService — административная часть жизненного цикла:
// взятие заказа в обработку, освобождение и смена статуса.
// Взаимное исключение администраторов держится на атомарном TryClaim,
// внутрипроцессные блокировки не используются: сервис может работать
// в нескольких экземплярах
type AdminOrderService interface {
	ListOrders(ctx context.Context, status *models.OrderStatus, page int) ([]*models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ClaimForProcessing(ctx context.Context, orderID, adminID int64) (*models.Order, error)
	ReleaseProcessing(ctx context.Context, orderID, adminID int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, adminID int64) (*models.Order, error)
}

// adminOrderService — конкретная реализация AdminOrderService.
type adminOrderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
	claimRepo storage.ClaimStorage
	pub       notify.Publisher
}

func NewAdminOrderService(
	log *slog.Logger,
	orderRepo storage.OrderStorage,
	claimRepo storage.ClaimStorage,
	pub notify.Publisher,
) AdminOrderService {
	return &adminOrderService{
		log:       log,
		orderRepo: orderRepo,
		claimRepo: claimRepo,
		pub:       pub,
	}
}

func (s *adminOrderService) ListOrders(ctx context.Context, status *models.OrderStatus, page int) ([]*models.Order, error) {
	const op = "service.AdminOrderService.ListOrders"

	orders, err := s.orderRepo.ListOrders(ctx, status, page)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *adminOrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

// ClaimForProcessing берёт заказ в обработку. Статус читается до TryClaim и
// может устареть: между чтением и вставкой другой админ может успеть занять
// заказ. Взаимное исключение от этого не страдает — проигравший TryClaim
// не меняет ни одной строки и до SaveOrder не доходит
func (s *adminOrderService) ClaimForProcessing(ctx context.Context, orderID, adminID int64) (*models.Order, error) {
	const op = "service.AdminOrderService.ClaimForProcessing"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.Int64("adminID", adminID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.OrderStatus == models.StatusProcessing {
		if order.ProcessingAdmin == nil || *order.ProcessingAdmin != adminID {
			logger.Warn("order already claimed by another admin")
			return nil, ErrAlreadyClaimed
		}
	} else if !order.OrderStatus.Claimable() {
		logger.Warn("order is not claimable", slog.String("status", string(order.OrderStatus)))
		return nil, ErrInvalidTransition
	}

	claimed, err := s.claimRepo.TryClaim(ctx, orderID, adminID)
	if err != nil {
		logger.Error("failed to claim order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to claim order: %w", op, err)
	}
	if !claimed {
		logger.Warn("claim already exists")
		return nil, ErrAlreadyClaimed
	}

	order.OrderStatus = models.StatusProcessing
	order.ProcessingAdmin = &adminID
	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to save order: %w", op, err)
	}

	s.broadcast(ctx, logger, order, false)
	logger.Info("order claimed")
	return order, nil
}

// ReleaseProcessing возвращает заказ из PROCESSING в REQUESTED.
// Снять может только тот, кто держит запись: удаление сверяет admin_id
func (s *adminOrderService) ReleaseProcessing(ctx context.Context, orderID, adminID int64) (*models.Order, error) {
	const op = "service.AdminOrderService.ReleaseProcessing"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.Int64("adminID", adminID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != models.StatusProcessing {
		logger.Warn("order is not being processed")
		return nil, ErrNotCurrentlyProcessing
	}

	released, err := s.claimRepo.ReleaseClaim(ctx, orderID, adminID)
	if err != nil {
		logger.Error("failed to release claim", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to release claim: %w", op, err)
	}
	if !released {
		logger.Warn("claim is held by another admin")
		return nil, ErrNotClaimHolder
	}

	order.OrderStatus = models.StatusRequested
	order.ProcessingAdmin = nil
	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to save order: %w", op, err)
	}

	s.broadcast(ctx, logger, order, true)
	logger.Info("order released")
	return order, nil
}

// UpdateStatus переводит заказ в новый статус по таблице переходов.
// Если заказ держит этот же админ, запись об обработке снимается попутно:
// смена статуса завершает сессию обработки
func (s *adminOrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus models.OrderStatus, adminID int64) (*models.Order, error) {
	const op = "service.AdminOrderService.UpdateStatus"
	logger := s.log.With(
		slog.String("op", op),
		slog.Int64("orderID", orderID),
		slog.Int64("adminID", adminID),
		slog.String("newStatus", string(newStatus)),
	)

	if !newStatus.Valid() {
		return nil, ErrInvalidTransition
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	holder := int64(0)
	if order.ProcessingAdmin != nil {
		holder = *order.ProcessingAdmin
	}
	if order.OrderStatus == models.StatusProcessing && holder != adminID {
		logger.Warn("order is processed by another admin", slog.Int64("holder", holder))
		return nil, ErrAlreadyClaimed
	}

	if !order.OrderStatus.CanTransitionTo(newStatus) {
		logger.Warn("transition not allowed", slog.String("from", string(order.OrderStatus)))
		return nil, ErrInvalidTransition
	}

	if order.OrderStatus == models.StatusProcessing {
		released, err := s.claimRepo.ReleaseClaim(ctx, orderID, adminID)
		if err != nil {
			logger.Error("failed to release claim", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to release claim: %w", op, err)
		}
		if !released {
			// запись могла не существовать при рассинхроне статуса и таблицы
			logger.Warn("no claim row to release")
		}
	}

	order.OrderStatus = newStatus
	order.ProcessingAdmin = nil
	if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
		logger.Error("failed to save order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to save order: %w", op, err)
	}

	s.broadcast(ctx, logger, order, true)
	logger.Info("order status updated")
	return order, nil
}

// broadcast рассылает событие после успешного сохранения; наблюдатели видят
// только то состояние, которое реально записано. Ошибки доставки не
// прерывают операцию
func (s *adminOrderService) broadcast(ctx context.Context, logger *slog.Logger, order *models.Order, toCustomer bool) {
	if err := s.pub.Publish(ctx, notify.AdminChannel, notify.EventOrderUpdated, order); err != nil {
		logger.Warn("failed to publish to admin channel", slog.Any("error", err))
	}
	if toCustomer {
		if err := s.pub.Publish(ctx, notify.UserChannel(order.UserID), notify.EventOrderUpdated, order); err != nil {
			logger.Warn("failed to publish to user channel", slog.Any("error", err))
		}
	}
}
