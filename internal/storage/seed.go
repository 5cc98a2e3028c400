package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"atm-api/internal/model"
)

// Seed строит начальное состояние системы: демонстрационные счета с
// корректными по Луну номерами карт, соответствующие записи о
// первоначальных взносах и администратор по умолчанию.
func Seed(adminPassword string) (*model.Snapshot, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now()

	accounts := []model.Account{
		{
			ID:            uuid.MustParse("7b54f5c2-9a1e-4f6d-8c3b-2e1d0a9f4b61"),
			Name:          "Иван Петров",
			AccountNumber: "1000000001",
			CardNumber:    "4111111111111111",
			PIN:           "1234",
			Balance:       1500.00,
			AccountType:   model.AccountTypeChecking,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.MustParse("3e8c1a57-6d2f-44b9-9f0e-5a7c8b3d1e24"),
			Name:          "Мария Смирнова",
			AccountNumber: "1000000002",
			CardNumber:    "4012888888881881",
			PIN:           "4321",
			Balance:       2750.50,
			AccountType:   model.AccountTypeSavings,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            uuid.MustParse("c91d4e06-3b8a-4572-a6f1-8d2e7c5b0a93"),
			Name:          "Алексей Козлов",
			AccountNumber: "1000000003",
			CardNumber:    "5555555555554444",
			PIN:           "9876",
			Balance:       500.00,
			AccountType:   model.AccountTypeChecking,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	transactions := make([]model.Transaction, 0, len(accounts))
	for i, a := range accounts {
		if a.Balance <= 0 {
			continue
		}
		transactions = append(transactions, model.Transaction{
			ID:            uuid.New(),
			TransactionID: fmt.Sprintf("TX10000%d", i+1),
			Date:          now,
			UserID:        a.ID,
			AccountNumber: a.AccountNumber,
			UserName:      a.Name,
			Type:          model.TransactionTypeInitialDeposit,
			Amount:        a.Balance,
			Status:        model.TransactionStatusCompleted,
		})
	}

	admins := []model.AdminUser{
		{
			ID:        uuid.MustParse("a1f2e3d4-c5b6-4789-9abc-def012345678"),
			Username:  "admin",
			Password:  string(hash),
			Role:      "administrator",
			LastLogin: now,
		},
	}

	return &model.Snapshot{
		Accounts:     accounts,
		Transactions: transactions,
		Admins:       admins,
		SystemInfo: model.SystemInfo{
			Name:          "ATM Backend",
			Version:       "1.0.0",
			SchemaVersion: model.SchemaVersion,
			LastUpdated:   now,
		},
	}, nil
}
