package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atm-api/internal/model"
)

func ledgerEntry(userID uuid.UUID, txType model.TransactionType, amount float64, date time.Time) model.Transaction {
	return model.Transaction{
		ID:            uuid.New(),
		TransactionID: "TX" + uuid.NewString()[:6],
		Date:          date,
		UserID:        userID,
		AccountNumber: "1000000001",
		UserName:      "Иван Петров",
		Type:          txType,
		Amount:        amount,
		Status:        model.TransactionStatusCompleted,
	}
}

func TestSystemStats(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1000)
	env.addAccount(t, "Мария Смирнова", "4012888888881881", "1000000002", "4321", 500)

	now := time.Now()
	env.ledger.Restore([]model.Transaction{
		ledgerEntry(a.ID, model.TransactionTypeInitialDeposit, 1000, now.AddDate(0, 0, -3)),
		ledgerEntry(a.ID, model.TransactionTypeDeposit, 200, now.AddDate(0, 0, -1)),
		ledgerEntry(a.ID, model.TransactionTypeWithdrawal, 50, now),
		ledgerEntry(a.ID, model.TransactionTypeTransfer, 75, now),
		ledgerEntry(a.ID, model.TransactionTypeAccountClosure, 0, now),
	})

	stats := NewAnalyticService(env.accounts, env.ledger, env.logger).SystemStats(context.Background())

	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 5, stats.TotalTransactions)
	assert.InDelta(t, 1200, stats.TotalDeposits, 1e-9, "Initial Deposit входит в сумму пополнений")
	assert.InDelta(t, 50, stats.TotalWithdrawals, 1e-9)
	assert.InDelta(t, 75, stats.TotalTransfers, 1e-9)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestSystemStatsHistogram(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1000)

	now := time.Now()
	env.ledger.Restore([]model.Transaction{
		ledgerEntry(a.ID, model.TransactionTypeDeposit, 10, now),
		ledgerEntry(a.ID, model.TransactionTypeDeposit, 10, now),
		ledgerEntry(a.ID, model.TransactionTypeWithdrawal, 5, now.AddDate(0, 0, -6)),
		// Старше окна: в итогах есть, в гистограмме нет.
		ledgerEntry(a.ID, model.TransactionTypeDeposit, 100, now.AddDate(0, 0, -30)),
	})

	stats := NewAnalyticService(env.accounts, env.ledger, env.logger).SystemStats(context.Background())

	require.Len(t, stats.TransactionsByDay, 7, "всегда ровно 7 дней, включая нулевые")
	assert.Equal(t, 2, stats.TransactionsByDay[now.Format("2006-01-02")])
	assert.Equal(t, 1, stats.TransactionsByDay[now.AddDate(0, 0, -6).Format("2006-01-02")])
	for i := 1; i <= 5; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		assert.Contains(t, stats.TransactionsByDay, day)
	}

	sum := 0
	for _, n := range stats.TransactionsByDay {
		sum += n
	}
	assert.Equal(t, 3, sum, "операция за пределами окна не учтена в гистограмме")
	assert.InDelta(t, 120, stats.TotalDeposits, 1e-9, "но учтена в итоговых суммах")
}

func TestSystemStatsIgnoresBrokenAmounts(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1000)

	now := time.Now()
	env.ledger.Restore([]model.Transaction{
		ledgerEntry(a.ID, model.TransactionTypeDeposit, math.NaN(), now),
		ledgerEntry(a.ID, model.TransactionTypeWithdrawal, math.Inf(1), now),
		ledgerEntry(a.ID, model.TransactionTypeDeposit, 40, now),
	})

	stats := NewAnalyticService(env.accounts, env.ledger, env.logger).SystemStats(context.Background())

	assert.InDelta(t, 40, stats.TotalDeposits, 1e-9)
	assert.InDelta(t, 0, stats.TotalWithdrawals, 1e-9)
	assert.Equal(t, 3, stats.TotalTransactions, "битые записи по-прежнему считаются штуками")
}

func TestSystemStatsEmpty(t *testing.T) {
	env := newTestEnv(t)

	stats := NewAnalyticService(env.accounts, env.ledger, env.logger).SystemStats(context.Background())

	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalTransactions)
	assert.Zero(t, stats.TotalDeposits)
	require.Len(t, stats.TransactionsByDay, 7)
	for day, n := range stats.TransactionsByDay {
		assert.Zero(t, n, "день %s", day)
	}
}
