package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/storage"
)

// CartSnapshotService строит ценовой снимок корзины пользователя.
// Снимок становится неизменяемым order_details при создании заказа
type CartSnapshotService interface {
	GetPricedSnapshot(ctx context.Context, userID int64) (*models.CartSnapshot, error)
}

// cartSnapshotService — конкретная реализация CartSnapshotService.
type cartSnapshotService struct {
	log      *slog.Logger
	cartRepo storage.CartStorage
}

func NewCartSnapshotService(log *slog.Logger, cartRepo storage.CartStorage) CartSnapshotService {
	return &cartSnapshotService{
		log:      log,
		cartRepo: cartRepo,
	}
}

// GetPricedSnapshot собирает снимок: позиции копируются по значению,
// итоги считает БД, сумма округляется до 2 знаков.
// Корзина при этом не изменяется
func (s *cartSnapshotService) GetPricedSnapshot(ctx context.Context, userID int64) (*models.CartSnapshot, error) {
	const op = "service.CartSnapshotService.GetPricedSnapshot"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	totalPrice, totalCount, err := s.cartRepo.CartTotals(ctx, userID)
	if err != nil {
		logger.Error("failed to compute cart totals", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to compute cart totals: %w", op, err)
	}
	if totalCount == 0 {
		logger.Warn("cart is empty")
		return nil, ErrEmptyCart
	}

	items, err := s.cartRepo.ListCartItems(ctx, userID)
	if err != nil {
		logger.Error("failed to list cart items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list cart items: %w", op, err)
	}

	snapshot := &models.CartSnapshot{
		Items:      make([]models.SnapshotItem, 0, len(items)),
		TotalPrice: roundPrice(totalPrice),
		TotalCount: totalCount,
	}
	for _, item := range items {
		snapshot.Items = append(snapshot.Items, models.SnapshotItem{
			Title:    item.Title,
			Price:    item.Price,
			Size:     item.Size,
			Quantity: item.Quantity,
			ImageURL: item.ImageURL,
		})
	}
	return snapshot, nil
}

// roundPrice округляет сумму до двух знаков после запятой
func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
