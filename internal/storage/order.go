package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/shop-orders/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// ErrDuplicateGatewayOrder — нарушение уникальности gateway_order_id
var ErrDuplicateGatewayOrder = errors.New("gateway order id already exists")

// Заказы отдаются страницами по 20, как и в админке
const OrdersPageLimit = 20

// OrderStorage описывает методы для работы с заказами.
// Каждая операция атомарна на уровне одного документа (одной строки)
type OrderStorage interface {
	// CreateOrder вставляет новый заказ и возвращает его с проставленным id
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID возвращает заказ по системному идентификатору
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// GetOrderByGatewayID ищет заказ по паре (пользователь, id заказа шлюза):
	// пользователь не может подтвердить оплату чужого заказа
	GetOrderByGatewayID(ctx context.Context, userID int64, gatewayOrderID string) (*models.Order, error)
	// SaveOrder перезаписывает изменяемые поля заказа одной командой
	SaveOrder(ctx context.Context, order *models.Order) error
	// ListOrdersByUserID возвращает страницу заказов пользователя, новые первыми
	ListOrdersByUserID(ctx context.Context, userID int64, page int) ([]*models.Order, error)
	// ListOrders возвращает страницу всех заказов с необязательным фильтром по статусу
	ListOrders(ctx context.Context, status *models.OrderStatus, page int) ([]*models.Order, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, order_details, address, phone, amount, payment_verified,
	gateway_order_id, gateway_payment_id, order_status, processing_admin, created_at, updated_at`

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	details, err := json.Marshal(order.OrderDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order details: %w", err)
	}

	query := `INSERT INTO orders (user_id, order_details, address, phone, amount, payment_verified,
	          gateway_order_id, order_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		order.UserID, details, order.Address, order.Phone, order.Amount,
		order.PaymentVerified, order.GatewayOrderID, order.OrderStatus,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateGatewayOrder
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *orderRepository) GetOrderByGatewayID(ctx context.Context, userID int64, gatewayOrderID string) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE user_id = $1 AND gateway_order_id = $2", orderColumns)
	return r.scanOrder(r.db.QueryRowContext(ctx, query, userID, gatewayOrderID))
}

// SaveOrder не трогает user_id, order_details, amount и created_at:
// снимок и сумма фиксируются при создании
func (r *orderRepository) SaveOrder(ctx context.Context, order *models.Order) error {
	query := `UPDATE orders
	          SET payment_verified = $1, gateway_payment_id = $2, order_status = $3,
	              processing_admin = $4, address = $5, phone = $6, updated_at = NOW()
	          WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		order.PaymentVerified, order.GatewayPaymentID, order.OrderStatus,
		order.ProcessingAdmin, order.Address, order.Phone, order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ListOrdersByUserID(ctx context.Context, userID int64, page int) ([]*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`, orderColumns)
	rows, err := r.db.QueryContext(ctx, query, userID, OrdersPageLimit, pageOffset(page))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanOrders(rows)
}

func (r *orderRepository) ListOrders(ctx context.Context, status *models.OrderStatus, page int) ([]*models.Order, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status != nil {
		query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_status = $1
		          ORDER BY created_at DESC LIMIT $2 OFFSET $3`, orderColumns)
		rows, err = r.db.QueryContext(ctx, query, *status, OrdersPageLimit, pageOffset(page))
	} else {
		query := fmt.Sprintf(`SELECT %s FROM orders
		          ORDER BY created_at DESC LIMIT $1 OFFSET $2`, orderColumns)
		rows, err = r.db.QueryContext(ctx, query, OrdersPageLimit, pageOffset(page))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanOrders(rows)
}

func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * OrdersPageLimit
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var details []byte
	err := row.Scan(
		&order.ID, &order.UserID, &details, &order.Address, &order.Phone,
		&order.Amount, &order.PaymentVerified, &order.GatewayOrderID,
		&order.GatewayPaymentID, &order.OrderStatus, &order.ProcessingAdmin,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(details, &order.OrderDetails); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order details: %w", err)
	}
	return order, nil
}

func (r *orderRepository) scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
