package model

import (
	"time"

	"github.com/google/uuid"
)

type AdminUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"` // bcrypt-хеш; при экспорте поле очищается
	Role      string    `json:"role"`
	LastLogin time.Time `json:"last_login"`
}

type ATMLoginRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
	PIN        string `json:"pin" validate:"required,len=4"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthenticatedAccount — результат входа по карте: счёт и его история операций,
// отсортированная от новых к старым.
type AuthenticatedAccount struct {
	Account      Account       `json:"account"`
	Transactions []Transaction `json:"transactions"`
}
