package gateway

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable возвращается при транспортных ошибках платёжного провайдера
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PaymentGateway — узкий интерфейс платёжного шлюза: открыть заказ у провайдера
// и проверить подпись колбэка об оплате. Других операций ядру не нужно
type PaymentGateway interface {
	// OpenOrder создаёт заказ у провайдера; amountMinor — сумма в минимальных
	// единицах валюты (копейки/пайсы). Возвращает идентификатор заказа шлюза
	OpenOrder(ctx context.Context, amountMinor int64, currency, receiptID string) (string, error)
	// VerifySignature проверяет подпись пары (orderID, paymentID).
	// На любом некорректном входе возвращает false, не паникует
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}
