package storage

import (
	"context"
	"database/sql"

	"github.com/linemk/shop-orders/internal/domain/models"
)

// CartStorage описывает методы чтения корзины для построения снимка.
// Корзину подсистема заказов не изменяет
type CartStorage interface {
	// ListCartItems возвращает все позиции корзины пользователя, новые первыми
	ListCartItems(ctx context.Context, userID int64) ([]*models.CartItem, error)
	// CartTotals считает сумму и количество на стороне БД
	CartTotals(ctx context.Context, userID int64) (totalPrice float64, totalCount int, err error)
}

// cartRepository — конкретная реализация CartStorage.
type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт новый репозиторий корзины.
func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) ListCartItems(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	query := `SELECT id, user_id, title, price, size, quantity, image_url, created_at
	          FROM cart_items WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.Title, &item.Price,
			&item.Size, &item.Quantity, &item.ImageURL, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) CartTotals(ctx context.Context, userID int64) (float64, int, error) {
	var (
		totalPrice float64
		totalCount int
	)
	query := `SELECT COALESCE(SUM(price * quantity), 0), COALESCE(SUM(quantity), 0)
	          FROM cart_items WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)
	if err := row.Scan(&totalPrice, &totalCount); err != nil {
		return 0, 0, err
	}
	return totalPrice, totalCount, nil
}
