package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway — адаптер поверх SDK Razorpay.
// Конструируется явно и передаётся в сервисы через DI, без глобального клиента
type RazorpayGateway struct {
	client    *razorpay.Client
	keySecret string
}

var _ PaymentGateway = (*RazorpayGateway)(nil)

// NewRazorpayGateway создаёт адаптер с собственным экземпляром клиента
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

// OpenOrder открывает заказ у провайдера с автосписанием после оплаты
func (g *RazorpayGateway) OpenOrder(ctx context.Context, amountMinor int64, currency, receiptID string) (string, error) {
	data := map[string]interface{}{
		"amount":          amountMinor,
		"currency":        currency,
		"receipt":         receiptID,
		"payment_capture": 1,
	}
	resp, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	id, ok := resp["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: order id missing in response", ErrGatewayUnavailable)
	}
	return id, nil
}

// VerifySignature пересчитывает HMAC-SHA256 от "{order_id}|{payment_id}"
// и сравнивает с присланной подписью за константное время
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := GenerateSignature(g.keySecret, gatewayOrderID, gatewayPaymentID)

	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	return hmac.Equal(sig, want)
}

// GenerateSignature считает hex-подпись пары идентификаторов общим секретом
func GenerateSignature(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
