package notify

import (
	"context"
	"fmt"
)

// Имя канала администраторов; у каждого пользователя — свой канал
const AdminChannel = "orders:admin"

// UserChannel возвращает имя канала конкретного пользователя
func UserChannel(userID int64) string {
	return fmt.Sprintf("orders:user:%d", userID)
}

// События, рассылаемые при изменении заказов
const (
	EventOrderPaid    = "order-paid"
	EventOrderUpdated = "order-updated"
)

// Publisher — транспорт уведомлений о смене состояния заказа.
// Доставка best-effort: ошибки публикации логируются вызывающей стороной
// и не влияют на результат перехода
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}
