package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
)

// Ledger — журнал операций, только добавление. Записи после создания не
// редактируются и не удаляются; единственное исключение — отметка о печати
// чека. DropByID существует исключительно для отката незафиксированной записи.
type Ledger struct {
	mu      sync.RWMutex
	entries []model.Transaction
	byTxID  map[string]int // человекочитаемый номер -> позиция в entries
	logger  *logrus.Logger
}

func NewLedger(logger *logrus.Logger) *Ledger {
	return &Ledger{
		byTxID: make(map[string]int),
		logger: logger,
	}
}

// Restore заменяет журнал записями из снимка, восстанавливая хронологию.
func (l *Ledger) Restore(transactions []model.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make([]model.Transaction, len(transactions))
	copy(l.entries, transactions)
	sort.Slice(l.entries, func(i, j int) bool { return l.entries[i].Date.Before(l.entries[j].Date) })

	l.byTxID = make(map[string]int, len(l.entries))
	for i := range l.entries {
		l.byTxID[l.entries[i].TransactionID] = i
	}
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Append добавляет запись в журнал.
func (l *Ledger) Append(tx model.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, tx)
	l.byTxID[tx.TransactionID] = len(l.entries) - 1

	l.logger.WithFields(logrus.Fields{
		"transaction_id": tx.TransactionID,
		"type":           tx.Type,
		"amount":         tx.Amount,
		"account_number": tx.AccountNumber,
	}).Info("Запись добавлена в журнал операций")
}

// All возвращает копии всех записей от новых к старым.
func (l *Ledger) All() []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Transaction, len(l.entries))
	for i := range l.entries {
		out[len(l.entries)-1-i] = l.entries[i]
	}
	return out
}

// Snapshot возвращает записи в хронологическом порядке для сериализации.
func (l *Ledger) Snapshot() []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByUser возвращает записи владельца счёта от новых к старым.
func (l *Ledger) ByUser(userID uuid.UUID) []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Transaction
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}
	return out
}

func (l *Ledger) HasTransactionID(transactionID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byTxID[transactionID]
	return ok
}

// MarkReceiptPrinted отмечает запись как напечатанную; неизвестный номер — не ошибка.
func (l *Ledger) MarkReceiptPrinted(transactionID string, at time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.byTxID[transactionID]
	if !ok {
		return false
	}
	l.entries[i].ReceiptPrinted = true
	l.entries[i].ReceiptPrintDate = &at
	return true
}

// UnmarkReceiptPrinted снимает отметку о печати (откат незафиксированной мутации).
func (l *Ledger) UnmarkReceiptPrinted(transactionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.byTxID[transactionID]; ok {
		l.entries[i].ReceiptPrinted = false
		l.entries[i].ReceiptPrintDate = nil
	}
}

// DropByID убирает последнюю добавленную запись с данным id. Применяется
// только при откате операции, чей снимок не удалось сохранить.
func (l *Ledger) DropByID(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].ID == id {
			delete(l.byTxID, l.entries[i].TransactionID)
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			for j := i; j < len(l.entries); j++ {
				l.byTxID[l.entries[j].TransactionID] = j
			}
			return
		}
	}
}
