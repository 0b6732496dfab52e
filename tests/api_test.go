package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseURL = "http://localhost:8080"

// AuthResponse структура ответа при аутентификации
type AuthResponse struct {
	Token string `json:"token"`
}

// CreateOrderRequest структура запроса на оформление заказа
type CreateOrderRequest struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// CreateOrderResponse – ответ на оформление заказа
type CreateOrderResponse struct {
	OrderID        int64   `json:"order_id"`
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

// OrderResponse – заказ в ответах API
type OrderResponse struct {
	ID              int64   `json:"id"`
	OrderStatus     string  `json:"order_status"`
	PaymentVerified bool    `json:"payment_verified"`
	Amount          float64 `json:"amount"`
}

func authenticateUser(t *testing.T, username, password string) string {
	reqBody := []byte(`{"username": "` + username + `", "password": "` + password + `"}`)
	resp, err := http.Post(baseURL+"/api/auth", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err, "Auth request should not error")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid auth")

	var authResp AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	assert.NoError(t, err, "Decoding auth response should succeed")
	assert.NotEmpty(t, authResp.Token, "Token should not be empty")
	return authResp.Token
}

// сценарий с успешной аутентификацией пользователя
func TestAuth(t *testing.T) {
	token := authenticateUser(t, "testuser@gmail.com", "testpass123")
	assert.NotEmpty(t, token, "token should be obtained")
}

// сценарий с безуспешной аутентификацией пользователя
func TestAuthInvalid(t *testing.T) {
	reqBody := []byte(`{"username": "", "password": ""}`)
	resp, err := http.Post(baseURL+"/api/auth", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for invalid auth")
}

// сценарий с получением списка заказов
func TestListOrders(t *testing.T) {
	token := authenticateUser(t, "orderlist@test.com", "testpass123")
	req, err := http.NewRequest("GET", baseURL+"/api/orders", nil)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 OK for /api/orders")
}

// сценарий с получением списка заказов (пользователь не авторизован)
func TestListOrdersUnauthorized(t *testing.T) {
	req, err := http.NewRequest("GET", baseURL+"/api/orders", nil)
	assert.NoError(t, err)
	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 unauthorized for missing token")
}

// сценарий оформления заказа с пустой корзиной
func TestCreateOrderEmptyCart(t *testing.T) {
	token := authenticateUser(t, "emptycart@test.com", "testpass123")

	requestBody := CreateOrderRequest{Address: "10 Main St", Phone: "+79990001122"}
	jsonBody, err := json.Marshal(requestBody)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", baseURL+"/api/orders", bytes.NewBuffer(jsonBody))
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	// у свежезарегистрированного пользователя корзина пуста
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for empty cart")
}

// сценарий оформления заказа без адреса
func TestCreateOrderInvalid(t *testing.T) {
	token := authenticateUser(t, "invalidorder@test.com", "testpass123")

	requestBody := CreateOrderRequest{Address: "", Phone: ""}
	jsonBody, err := json.Marshal(requestBody)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", baseURL+"/api/orders", bytes.NewBuffer(jsonBody))
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for invalid order data")
}

// сценарий подтверждения оплаты несуществующего заказа
func TestVerifyPaymentUnknownOrder(t *testing.T) {
	token := authenticateUser(t, "verifyunknown@test.com", "testpass123")

	reqBody := []byte(`{"gateway_order_id": "order_missing", "gateway_payment_id": "pay_1", "signature": "deadbeef"}`)
	req, err := http.NewRequest("POST", baseURL+"/api/orders/verify-payment", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for unknown gateway order")
}

// сценарий доступа к чужому заказу
func TestGetOrderNotOwned(t *testing.T) {
	token := authenticateUser(t, "notowner@test.com", "testpass123")

	req, err := http.NewRequest("GET", baseURL+"/api/orders/999999", nil)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	// чужой и несуществующий заказ неразличимы в ответе
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for order of another user")
}

// сценарий доступа пользовательского токена к админскому API
func TestAdminAPIForbiddenForUser(t *testing.T) {
	token := authenticateUser(t, "plainuser@test.com", "testpass123")

	req, err := http.NewRequest("GET", baseURL+"/api/admin/orders", nil)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "expected 403 for user token on admin API")
}

// сценарий безуспешной аутентификации администратора:
// саморегистрации для админов нет
func TestAdminAuthUnknownAdmin(t *testing.T) {
	reqBody := []byte(`{"username": "noadmin@test.com", "password": "testpass123"}`)
	resp, err := http.Post(baseURL+"/api/admin/auth", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 for unknown admin")
}
