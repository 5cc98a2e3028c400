package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"atm-api/internal/card"
	"atm-api/internal/model"
	"atm-api/internal/repository"
	"atm-api/internal/storage"
)

// AccountService — административное управление счетами: создание,
// частичное обновление, закрытие, списки и экспорт снимка.
type AccountService struct {
	accounts  *repository.AccountDirectory
	ledger    *repository.Ledger
	persister *Persister
	logger    *logrus.Logger
}

func NewAccountService(
	accounts *repository.AccountDirectory,
	ledger *repository.Ledger,
	persister *Persister,
	logger *logrus.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		ledger:    ledger,
		persister: persister,
		logger:    logger,
	}
}

// AddAccount открывает новый счёт. При положительном начальном балансе в
// журнал добавляется запись Initial Deposit.
func (s *AccountService) AddAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	if math.IsNaN(req.InitialBalance) || math.IsInf(req.InitialBalance, 0) || req.InitialBalance < 0 {
		return nil, fmt.Errorf("%w: initial balance must be non-negative", model.ErrValidation)
	}

	accountType := req.AccountType
	if accountType == "" {
		accountType = model.AccountTypeChecking
	}
	switch accountType {
	case model.AccountTypeChecking, model.AccountTypeSavings, model.AccountTypeCredit:
	default:
		return nil, fmt.Errorf("%w: unknown account type %q", model.ErrValidation, accountType)
	}

	now := time.Now()
	account := model.Account{
		ID:            uuid.New(),
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		CardNumber:    card.Normalize(req.CardNumber),
		PIN:           req.PIN,
		Balance:       req.InitialBalance,
		AccountType:   accountType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.persister.Lock()
	defer s.persister.Unlock()

	if err := s.accounts.Add(account); err != nil {
		s.logger.WithError(err).Warn("Не удалось открыть счёт")
		return nil, err
	}

	var initialTx *model.Transaction
	if account.Balance > 0 {
		tx := model.Transaction{
			ID:            uuid.New(),
			TransactionID: s.freeTransactionID(),
			Date:          now,
			UserID:        account.ID,
			AccountNumber: account.AccountNumber,
			UserName:      account.Name,
			Type:          model.TransactionTypeInitialDeposit,
			Amount:        account.Balance,
			Status:        model.TransactionStatusCompleted,
		}
		s.ledger.Append(tx)
		initialTx = &tx
	}

	if err := s.persister.Save(); err != nil {
		s.accounts.Remove(account.ID)
		if initialTx != nil {
			s.ledger.DropByID(initialTx.ID)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id":     account.ID,
		"account_number": account.AccountNumber,
	}).Info("Открыт новый счёт")
	return &account, nil
}

// UpdateAccount применяет частичное обновление счёта. Правка баланса
// администратором не оставляет записи в журнале, как и в исходной системе.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, patch model.AccountPatch) (*model.Account, error) {
	if patch.CardNumber != nil {
		normalized := card.Normalize(*patch.CardNumber)
		patch.CardNumber = &normalized
	}
	if patch.Balance != nil && (math.IsNaN(*patch.Balance) || math.IsInf(*patch.Balance, 0)) {
		return nil, fmt.Errorf("%w: balance must be a finite number", model.ErrValidation)
	}

	s.persister.Lock()
	defer s.persister.Unlock()

	old, err := s.accounts.GetByID(id)
	if err != nil {
		return nil, err
	}

	updated, err := s.accounts.Update(id, patch)
	if err != nil {
		s.logger.WithError(err).Warn("Не удалось обновить счёт")
		return nil, err
	}

	if err := s.persister.Save(); err != nil {
		s.accounts.Put(*old)
		return nil, err
	}

	s.logger.WithField("account_id", id).Info("Счёт обновлён")
	return updated, nil
}

// DeleteAccount закрывает счёт. Удаление — единственная операция каталога,
// обязанная оставить след в журнале: запись Account Closure с нулевой суммой.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) (*model.Account, *model.Transaction, error) {
	s.persister.Lock()
	defer s.persister.Unlock()

	removed, err := s.accounts.Remove(id)
	if err != nil {
		return nil, nil, err
	}

	tx := model.Transaction{
		ID:            uuid.New(),
		TransactionID: s.freeTransactionID(),
		Date:          time.Now(),
		UserID:        removed.ID,
		AccountNumber: removed.AccountNumber,
		UserName:      removed.Name,
		Type:          model.TransactionTypeAccountClosure,
		Amount:        0,
		Notes:         "Account closed by administrator",
		Status:        model.TransactionStatusCompleted,
	}
	s.ledger.Append(tx)

	if err := s.persister.Save(); err != nil {
		s.accounts.Put(*removed)
		s.ledger.DropByID(tx.ID)
		return nil, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id":     removed.ID,
		"account_number": removed.AccountNumber,
	}).Info("Счёт закрыт администратором")
	return removed, &tx, nil
}

// ListAccounts возвращает все счета.
func (s *AccountService) ListAccounts(ctx context.Context) []model.Account {
	return s.accounts.All()
}

// ListTransactions возвращает весь журнал от новых записей к старым.
func (s *AccountService) ListTransactions(ctx context.Context) []model.Transaction {
	return s.ledger.All()
}

// AccountTransactions возвращает операции владельца счёта от новых к старым.
// История закрытых счетов остаётся доступной.
func (s *AccountService) AccountTransactions(ctx context.Context, id uuid.UUID) []model.Transaction {
	return s.ledger.ByUser(id)
}

// ExportSnapshot возвращает снимок состояния с вычищенными паролями
// администраторов. Только эта форма пригодна для внешней выгрузки.
func (s *AccountService) ExportSnapshot(ctx context.Context) *model.Snapshot {
	return storage.Export(s.persister.SnapshotNow())
}

func (s *AccountService) freeTransactionID() string {
	for {
		id := fmt.Sprintf("TX%06d", 100000+rand.Intn(900000))
		if !s.ledger.HasTransactionID(id) {
			return id
		}
	}
}
