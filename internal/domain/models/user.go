package models

// User представляет покупателя
type User struct {
	ID       int64
	Email    string
	PassHash []byte
}

// Admin представляет администратора магазина
type Admin struct {
	ID       int64
	Email    string
	PassHash []byte
}
