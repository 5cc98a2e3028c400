package service

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
	"atm-api/internal/repository"
)

// AnalyticService строит сводную статистику по каталогу и журналу.
// Только чтение, состояние не меняется.
type AnalyticService struct {
	accounts *repository.AccountDirectory
	ledger   *repository.Ledger
	logger   *logrus.Logger
}

func NewAnalyticService(accounts *repository.AccountDirectory, ledger *repository.Ledger, logger *logrus.Logger) *AnalyticService {
	return &AnalyticService{accounts: accounts, ledger: ledger, logger: logger}
}

// SystemStats считает итоги по типам операций и гистограмму количества
// операций за последние 7 календарных дней, включая сегодняшний.
func (s *AnalyticService) SystemStats(ctx context.Context) *model.SystemStats {
	transactions := s.ledger.Snapshot()

	stats := &model.SystemStats{
		TotalUsers:        s.accounts.Count(),
		TotalTransactions: len(transactions),
		TransactionsByDay: make(map[string]int, 7),
		LastUpdated:       time.Now(),
	}

	now := time.Now()
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		stats.TransactionsByDay[day] = 0
	}

	for _, tx := range transactions {
		amount := tx.Amount
		// Некорректно сохранённая сумма учитывается как ноль, а не валит отчёт.
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			amount = 0
		}

		switch tx.Type {
		case model.TransactionTypeDeposit, model.TransactionTypeInitialDeposit:
			stats.TotalDeposits += amount
		case model.TransactionTypeWithdrawal:
			stats.TotalWithdrawals += amount
		case model.TransactionTypeTransfer:
			stats.TotalTransfers += amount
		}

		day := tx.Date.Format("2006-01-02")
		if _, ok := stats.TransactionsByDay[day]; ok {
			stats.TransactionsByDay[day]++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"total_users":        stats.TotalUsers,
		"total_transactions": stats.TotalTransactions,
	}).Debug("Сводная статистика рассчитана")
	return stats
}
