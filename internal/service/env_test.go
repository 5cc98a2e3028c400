package service

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"atm-api/internal/model"
	"atm-api/internal/repository"
	"atm-api/internal/storage"
)

// testEnv собирает полный стек сервисов поверх временного файла снимка.
type testEnv struct {
	accounts  *repository.AccountDirectory
	admins    *repository.AdminDirectory
	ledger    *repository.Ledger
	store     *storage.Store
	persister *Persister
	logger    *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAt(t, filepath.Join(t.TempDir(), "db.json"))
}

// newBrokenEnv строит окружение, в котором сохранение снимка всегда падает.
func newBrokenEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAt(t, filepath.Join(t.TempDir(), "missing", "\x00bad", "db.json"))
}

func newTestEnvAt(t *testing.T, path string) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	accounts := repository.NewAccountDirectory(logger)
	admins := repository.NewAdminDirectory(logger)
	ledger := repository.NewLedger(logger)
	store := storage.NewStore(path, logger)
	emails := NewEmailSender(logger) // без SMTP-настроек отправка отключена
	persister := NewPersister(accounts, admins, ledger, store, model.SystemInfo{Name: "test", Version: "1.0.0"}, emails, logger)

	return &testEnv{
		accounts:  accounts,
		admins:    admins,
		ledger:    ledger,
		store:     store,
		persister: persister,
		logger:    logger,
	}
}

func (e *testEnv) addAccount(t *testing.T, name, cardNumber, accountNumber, pin string, balance float64) model.Account {
	t.Helper()

	now := time.Now()
	account := model.Account{
		ID:            uuid.New(),
		Name:          name,
		AccountNumber: accountNumber,
		CardNumber:    cardNumber,
		PIN:           pin,
		Balance:       balance,
		AccountType:   model.AccountTypeChecking,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.accounts.Add(account))
	return account
}

func (e *testEnv) addAdmin(t *testing.T, username, password string) model.AdminUser {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	admin := model.AdminUser{
		ID:       uuid.New(),
		Username: username,
		Password: string(hash),
		Role:     "administrator",
	}
	e.admins.Restore([]model.AdminUser{admin})
	return admin
}

func (e *testEnv) newProcessor() *TransactionProcessor {
	return NewTransactionProcessor(e.accounts, e.ledger, e.persister, NewEmailSender(e.logger), 100000, e.logger)
}

func (e *testEnv) newAuthService(cooldown time.Duration) *AuthService {
	return NewAuthService(e.accounts, e.admins, e.ledger, e.persister, "test-secret", time.Hour, 3, cooldown, e.logger)
}

func (e *testEnv) newAccountService() *AccountService {
	return NewAccountService(e.accounts, e.ledger, e.persister, e.logger)
}
