package model

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking" // расчётный счёт
	AccountTypeSavings  AccountType = "savings"  // сберегательный счёт
	AccountTypeCredit   AccountType = "credit"   // кредитный счёт
)

type Account struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	AccountNumber string      `json:"account_number"`
	CardNumber    string      `json:"card_number"`
	PIN           string      `json:"pin"`
	Balance       float64     `json:"balance"`
	AccountType   AccountType `json:"account_type"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type CreateAccountRequest struct {
	Name           string      `json:"name" validate:"required"`
	AccountNumber  string      `json:"account_number" validate:"required"`
	CardNumber     string      `json:"card_number" validate:"required,len=16"`
	PIN            string      `json:"pin" validate:"required,len=4"`
	InitialBalance float64     `json:"initial_balance" validate:"gte=0"`
	AccountType    AccountType `json:"account_type"`
}

// AccountPatch — частичное обновление счёта; nil-поля не изменяются.
type AccountPatch struct {
	Name          *string      `json:"name"`
	AccountNumber *string      `json:"account_number"`
	CardNumber    *string      `json:"card_number"`
	PIN           *string      `json:"pin"`
	Balance       *float64     `json:"balance"`
	AccountType   *AccountType `json:"account_type"`
}

type AmountRequest struct {
	CardNumber string  `json:"card_number" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

type TransferRequest struct {
	CardNumber      string  `json:"card_number" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	ToAccountNumber string  `json:"to_account_number" validate:"required"`
}

// OperationResult — результат денежной операции: новый баланс и запись в журнале.
type OperationResult struct {
	NewBalance  float64     `json:"new_balance"`
	Transaction Transaction `json:"transaction"`
}
