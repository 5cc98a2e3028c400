package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "Deposit"         // пополнение счёта
	TransactionTypeWithdrawal     TransactionType = "Withdrawal"      // снятие средств
	TransactionTypeTransfer       TransactionType = "Transfer"        // перевод между счетами
	TransactionTypeInitialDeposit TransactionType = "Initial Deposit" // первоначальный взнос при открытии
	TransactionTypeAccountClosure TransactionType = "Account Closure" // закрытие счёта администратором
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

// Transaction — запись журнала операций. После создания изменяются только
// поля ReceiptPrinted и ReceiptPrintDate, всё остальное неизменяемо.
type Transaction struct {
	ID               uuid.UUID         `json:"id"`
	TransactionID    string            `json:"transaction_id"` // человекочитаемый номер вида TX123456
	Date             time.Time         `json:"date"`
	UserID           uuid.UUID         `json:"user_id"`
	AccountNumber    string            `json:"account_number"`
	UserName         string            `json:"user_name"`
	Type             TransactionType   `json:"type"`
	Amount           float64           `json:"amount"`
	ToAccount        string            `json:"to_account,omitempty"`
	ToUserName       string            `json:"to_user_name,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Status           TransactionStatus `json:"status"`
	ReceiptPrinted   bool              `json:"receipt_printed,omitempty"`
	ReceiptPrintDate *time.Time        `json:"receipt_print_date,omitempty"`
}

type ReceiptRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}
