package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/shop-orders/internal/domain/models"
)

var ErrClaimNotFound = errors.New("processing claim not found")

// ClaimStorage описывает методы для работы с записями об обработке заказов.
// TryClaim — единственная операция подсистемы, обязанная быть атомарным
// test-and-set: именно она гарантирует взаимное исключение администраторов
type ClaimStorage interface {
	// TryClaim атомарно вставляет запись, если для заказа её ещё нет.
	// Возвращает false, если заказ уже кем-то обрабатывается
	TryClaim(ctx context.Context, orderID, adminID int64) (bool, error)
	// ReleaseClaim удаляет запись, только если её держит именно этот админ
	ReleaseClaim(ctx context.Context, orderID, adminID int64) (bool, error)
	// GetClaim возвращает текущую запись по заказу
	GetClaim(ctx context.Context, orderID int64) (*models.ProcessingClaim, error)
}

// claimRepository — конкретная реализация ClaimStorage.
type claimRepository struct {
	db *sql.DB
}

// NewClaimRepository создаёт новый репозиторий записей об обработке.
func NewClaimRepository(db *sql.DB) ClaimStorage {
	return &claimRepository{db: db}
}

// TryClaim опирается на уникальность order_id: проигравшая вставка
// не меняет ни одной строки
func (r *claimRepository) TryClaim(ctx context.Context, orderID, adminID int64) (bool, error) {
	query := `INSERT INTO processing_claims (order_id, admin_id, claimed_at)
	          VALUES ($1, $2, NOW())
	          ON CONFLICT (order_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, orderID, adminID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return false, nil
		}
		return false, fmt.Errorf("failed to claim order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *claimRepository) ReleaseClaim(ctx context.Context, orderID, adminID int64) (bool, error) {
	query := `DELETE FROM processing_claims WHERE order_id = $1 AND admin_id = $2`
	res, err := r.db.ExecContext(ctx, query, orderID, adminID)
	if err != nil {
		return false, fmt.Errorf("failed to release claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *claimRepository) GetClaim(ctx context.Context, orderID int64) (*models.ProcessingClaim, error) {
	claim := &models.ProcessingClaim{}
	row := r.db.QueryRowContext(ctx,
		"SELECT order_id, admin_id, claimed_at FROM processing_claims WHERE order_id = $1", orderID)
	if err := row.Scan(&claim.OrderID, &claim.AdminID, &claim.ClaimedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return claim, nil
}
