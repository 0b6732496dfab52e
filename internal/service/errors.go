package service

import "errors"

// Типизированные ошибки ядра; наружу отдаются как есть,
// транспортный слой превращает их в HTTP-статусы через errors.Is
var (
	// ErrEmptyCart — попытка оформить заказ с пустой корзиной
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentVerificationFailed — подпись колбэка не прошла проверку
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	// ErrAlreadyClaimed — заказ уже обрабатывается другим администратором
	ErrAlreadyClaimed = errors.New("order is already being processed by another admin")
	// ErrNotClaimHolder — заказ обрабатывает не этот администратор
	ErrNotClaimHolder = errors.New("order is processed by another admin")
	// ErrNotCurrentlyProcessing — заказ не находится в обработке
	ErrNotCurrentlyProcessing = errors.New("order is not being processed")
	// ErrInvalidTransition — недопустимый переход статуса
	ErrInvalidTransition = errors.New("invalid order status transition")
)
