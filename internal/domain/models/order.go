package models

import "time"

// OrderStatus — статус жизненного цикла заказа
type OrderStatus string

const (
	StatusRequested  OrderStatus = "REQUESTED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
)

// allowedTransitions — таблица допустимых переходов,
// DELIVERED — терминальный статус
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusRequested:  {StatusProcessing},
	StatusProcessing: {StatusRequested, StatusShipped, StatusDelivered},
	StatusShipped:    {StatusProcessing, StatusDelivered},
	StatusDelivered:  {},
}

// Valid проверяет, что статус — один из известных
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo проверяет допустимость перехода в целевой статус
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Claimable — можно ли администратору взять заказ в обработку из этого статуса
func (s OrderStatus) Claimable() bool {
	return s == StatusRequested || s == StatusShipped
}

// Order представляет заказ пользователя.
// OrderDetails — неизменяемый снимок корзины, зафиксированный при создании;
// Amount берётся из снимка и после создания не пересчитывается
type Order struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	OrderDetails     CartSnapshot `json:"order_details"`
	Address          string       `json:"address"`
	Phone            string       `json:"phone"`
	Amount           float64      `json:"amount"`
	PaymentVerified  bool         `json:"payment_verified"`
	GatewayOrderID   string       `json:"gateway_order_id"`
	GatewayPaymentID *string      `json:"gateway_payment_id,omitempty"`
	OrderStatus      OrderStatus  `json:"order_status"`
	ProcessingAdmin  *int64       `json:"processing_admin,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ProcessingClaim — запись о том, что администратор обрабатывает заказ.
// На один заказ может существовать не более одной записи
type ProcessingClaim struct {
	OrderID   int64     `json:"order_id"`
	AdminID   int64     `json:"admin_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}
