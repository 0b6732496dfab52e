package models

import "time"

// CartItem — позиция в корзине пользователя
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotItem — позиция снимка корзины; все поля копируются по значению,
// последующие изменения каталога на снимок не влияют
type SnapshotItem struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	ImageURL string  `json:"image_url"`
}

// CartSnapshot — зафиксированное содержимое корзины на момент создания заказа
type CartSnapshot struct {
	Items      []SnapshotItem `json:"items"`
	TotalPrice float64        `json:"total_price"`
	TotalCount int            `json:"total_count"`
}
