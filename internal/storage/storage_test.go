package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/storage"
	"github.com/stretchr/testify/assert"
)

var orderCols = []string{
	"id", "user_id", "order_details", "address", "phone", "amount", "payment_verified",
	"gateway_order_id", "gateway_payment_id", "order_status", "processing_admin",
	"created_at", "updated_at",
}

func detailsJSON(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(models.CartSnapshot{
		Items:      []models.SnapshotItem{{Title: "sneakers", Price: 150, Size: "42", Quantity: 3}},
		TotalPrice: 450.00,
		TotalCount: 3,
	})
	assert.NoError(t, err)
	return b
}

func TestGetOrderByID_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	now := time.Now()
	rows := sqlmock.NewRows(orderCols).
		AddRow(int64(1), int64(7), detailsJSON(t), "10 Main St", "+79990001122", 450.00, false,
			"order_abc", nil, "REQUESTED", nil, now, now)

	mock.ExpectQuery("FROM orders WHERE id = \\$1").
		WithArgs(int64(1)).WillReturnRows(rows)

	order, err := repo.GetOrderByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, "order_abc", order.GatewayOrderID)
	assert.Equal(t, models.StatusRequested, order.OrderStatus)
	assert.Nil(t, order.ProcessingAdmin)
	// снимок восстанавливается из JSONB
	assert.Equal(t, 450.00, order.OrderDetails.TotalPrice)
	assert.Len(t, order.OrderDetails.Items, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectQuery("FROM orders WHERE id = \\$1").
		WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows(orderCols))

	order, err := repo.GetOrderByID(context.Background(), 2)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	assert.Nil(t, order)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByGatewayID_UserScoped(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	// запрос обязан фильтровать и по пользователю, и по id шлюза
	mock.ExpectQuery("FROM orders WHERE user_id = \\$1 AND gateway_order_id = \\$2").
		WithArgs(int64(7), "order_abc").WillReturnRows(sqlmock.NewRows(orderCols))

	_, err = repo.GetOrderByGatewayID(context.Background(), 7, "order_abc")
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOrder_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveOrder(context.Background(), &models.Order{ID: 404, OrderStatus: models.StatusRequested})
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryClaim_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewClaimRepository(db)

	mock.ExpectExec("INSERT INTO processing_claims").
		WithArgs(int64(1), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.TryClaim(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.True(t, claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryClaim_AlreadyClaimed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewClaimRepository(db)

	// ON CONFLICT DO NOTHING: проигравшая вставка не меняет строк
	mock.ExpectExec("INSERT INTO processing_claims").
		WithArgs(int64(1), int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.TryClaim(context.Background(), 1, 20)
	assert.NoError(t, err)
	assert.False(t, claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryClaim_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewClaimRepository(db)

	mock.ExpectExec("INSERT INTO processing_claims").
		WithArgs(int64(1), int64(10)).
		WillReturnError(errors.New("connection reset"))

	// транспортная ошибка не превращается в "занято" — состояние неизвестно
	claimed, err := repo.TryClaim(context.Background(), 1, 10)
	assert.Error(t, err)
	assert.False(t, claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseClaim_WrongAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewClaimRepository(db)

	// удаление сверяет admin_id: чужую запись снять нельзя
	mock.ExpectExec("DELETE FROM processing_claims WHERE order_id = \\$1 AND admin_id = \\$2").
		WithArgs(int64(1), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	released, err := repo.ReleaseClaim(context.Background(), 1, 99)
	assert.NoError(t, err)
	assert.False(t, released)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseClaim_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewClaimRepository(db)

	mock.ExpectExec("DELETE FROM processing_claims WHERE order_id = \\$1 AND admin_id = \\$2").
		WithArgs(int64(1), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	released, err := repo.ReleaseClaim(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.True(t, released)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetClaim_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewClaimRepository(db)

	mock.ExpectQuery("SELECT order_id, admin_id, claimed_at FROM processing_claims WHERE order_id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "admin_id", "claimed_at"}))

	claim, err := repo.GetClaim(context.Background(), 5)
	assert.ErrorIs(t, err, storage.ErrClaimNotFound)
	assert.Nil(t, claim)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)

	rows := sqlmock.NewRows([]string{"sum_price", "sum_quantity"}).AddRow(450.00, 3)
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(7)).WillReturnRows(rows)

	totalPrice, totalCount, err := repo.CartTotals(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, 450.00, totalPrice)
	assert.Equal(t, 3, totalCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_PersistsSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	order := &models.Order{
		UserID: 7,
		OrderDetails: models.CartSnapshot{
			Items:      []models.SnapshotItem{{Title: "sneakers", Price: 150, Quantity: 3}},
			TotalPrice: 450.00,
			TotalCount: 3,
		},
		Address:        "10 Main St",
		Phone:          "+79990001122",
		Amount:         450.00,
		GatewayOrderID: "order_abc",
		OrderStatus:    models.StatusRequested,
	}
	created, err := repo.CreateOrder(context.Background(), order)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
