package model

import "time"

// SystemStats - сводная статистика по системе
type SystemStats struct {
	TotalUsers        int            `json:"total_users"`
	TotalTransactions int            `json:"total_transactions"`
	TotalDeposits     float64        `json:"total_deposits"`
	TotalWithdrawals  float64        `json:"total_withdrawals"`
	TotalTransfers    float64        `json:"total_transfers"`
	TransactionsByDay map[string]int `json:"transactions_by_day"` // ключ — дата YYYY-MM-DD, последние 7 дней
	LastUpdated       time.Time      `json:"last_updated"`
}
