package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
)

// AccountDirectory хранит счета в памяти с индексами по id, номеру карты и
// номеру счёта. Индексы и есть механизм уникальности: дубликат ключа
// обнаруживается до какой-либо мутации. Все методы чтения возвращают копии.
type AccountDirectory struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*model.Account
	byCard    map[string]uuid.UUID
	byAccount map[string]uuid.UUID
	logger    *logrus.Logger
}

func NewAccountDirectory(logger *logrus.Logger) *AccountDirectory {
	return &AccountDirectory{
		byID:      make(map[uuid.UUID]*model.Account),
		byCard:    make(map[string]uuid.UUID),
		byAccount: make(map[string]uuid.UUID),
		logger:    logger,
	}
}

// Restore заменяет содержимое каталога счетами из снимка.
func (d *AccountDirectory) Restore(accounts []model.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.byID = make(map[uuid.UUID]*model.Account, len(accounts))
	d.byCard = make(map[string]uuid.UUID, len(accounts))
	d.byAccount = make(map[string]uuid.UUID, len(accounts))
	for i := range accounts {
		a := accounts[i]
		d.byID[a.ID] = &a
		d.byCard[a.CardNumber] = a.ID
		d.byAccount[a.AccountNumber] = a.ID
	}
}

func (d *AccountDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// All возвращает копии всех счетов, отсортированные по дате создания.
func (d *AccountDirectory) All() []model.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.Account, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AccountNumber < out[j].AccountNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (d *AccountDirectory) GetByID(id uuid.UUID) (*model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (d *AccountDirectory) GetByCard(cardNumber string) (*model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byCard[cardNumber]
	if !ok {
		return nil, fmt.Errorf("card: %w", model.ErrNotFound)
	}
	cp := *d.byID[id]
	return &cp, nil
}

func (d *AccountDirectory) GetByAccountNumber(accountNumber string) (*model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byAccount[accountNumber]
	if !ok {
		return nil, fmt.Errorf("account number %s: %w", accountNumber, model.ErrNotFound)
	}
	cp := *d.byID[id]
	return &cp, nil
}

// Add регистрирует новый счёт. Порядок проверок фиксирован: формат карты,
// формат PIN, дубликат карты, дубликат номера счёта. Любая неудача
// происходит до мутации каталога.
func (d *AccountDirectory) Add(account model.Account) error {
	if !isDigits(account.CardNumber) || len(account.CardNumber) != 16 {
		return fmt.Errorf("%w: card number must be 16 digits", model.ErrValidation)
	}
	if !isDigits(account.PIN) || len(account.PIN) != 4 {
		return fmt.Errorf("%w: PIN must be 4 digits", model.ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byCard[account.CardNumber]; ok {
		return model.ErrDuplicateCard
	}
	if _, ok := d.byAccount[account.AccountNumber]; ok {
		return model.ErrDuplicateAccount
	}

	cp := account
	d.byID[cp.ID] = &cp
	d.byCard[cp.CardNumber] = cp.ID
	d.byAccount[cp.AccountNumber] = cp.ID

	d.logger.WithFields(logrus.Fields{
		"account_id":     cp.ID,
		"account_number": cp.AccountNumber,
	}).Info("Счёт добавлен в каталог")
	return nil
}

// Update применяет частичное обновление. Уникальность перепроверяется только
// для фактически изменяемых ключей; UpdatedAt обновляется всегда.
func (d *AccountDirectory) Update(id uuid.UUID, patch model.AccountPatch) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}

	if patch.CardNumber != nil && *patch.CardNumber != a.CardNumber {
		if !isDigits(*patch.CardNumber) || len(*patch.CardNumber) != 16 {
			return nil, fmt.Errorf("%w: card number must be 16 digits", model.ErrValidation)
		}
		if _, exists := d.byCard[*patch.CardNumber]; exists {
			return nil, model.ErrDuplicateCard
		}
	}
	if patch.AccountNumber != nil && *patch.AccountNumber != a.AccountNumber {
		if _, exists := d.byAccount[*patch.AccountNumber]; exists {
			return nil, model.ErrDuplicateAccount
		}
	}
	if patch.PIN != nil && (!isDigits(*patch.PIN) || len(*patch.PIN) != 4) {
		return nil, fmt.Errorf("%w: PIN must be 4 digits", model.ErrValidation)
	}
	if patch.Balance != nil && *patch.Balance < 0 {
		return nil, fmt.Errorf("%w: balance must be non-negative", model.ErrValidation)
	}

	if patch.CardNumber != nil && *patch.CardNumber != a.CardNumber {
		delete(d.byCard, a.CardNumber)
		a.CardNumber = *patch.CardNumber
		d.byCard[a.CardNumber] = id
	}
	if patch.AccountNumber != nil && *patch.AccountNumber != a.AccountNumber {
		delete(d.byAccount, a.AccountNumber)
		a.AccountNumber = *patch.AccountNumber
		d.byAccount[a.AccountNumber] = id
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.PIN != nil {
		a.PIN = *patch.PIN
	}
	if patch.Balance != nil {
		a.Balance = *patch.Balance
	}
	if patch.AccountType != nil {
		a.AccountType = *patch.AccountType
	}
	a.UpdatedAt = time.Now()

	cp := *a
	return &cp, nil
}

// Remove удаляет счёт и возвращает его копию. Запись о закрытии счёта в
// журнале создаёт сервисный слой, владеющий связкой каталог+журнал.
func (d *AccountDirectory) Remove(id uuid.UUID) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}

	delete(d.byID, id)
	delete(d.byCard, a.CardNumber)
	delete(d.byAccount, a.AccountNumber)

	d.logger.WithField("account_id", id).Info("Счёт удалён из каталога")
	cp := *a
	return &cp, nil
}

// Put безусловно вставляет счёт, восстанавливая индексы. Используется
// только для отката незафиксированных мутаций.
func (d *AccountDirectory) Put(account model.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.byID[account.ID]; ok {
		delete(d.byCard, old.CardNumber)
		delete(d.byAccount, old.AccountNumber)
	}
	cp := account
	d.byID[cp.ID] = &cp
	d.byCard[cp.CardNumber] = cp.ID
	d.byAccount[cp.AccountNumber] = cp.ID
}

// Credit зачисляет средства и возвращает новый баланс.
func (d *AccountDirectory) Credit(id uuid.UUID, amount float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}
	a.Balance += amount
	a.UpdatedAt = time.Now()
	return a.Balance, nil
}

// Debit списывает средства; баланс никогда не уходит в минус.
func (d *AccountDirectory) Debit(id uuid.UUID, amount float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return 0, fmt.Errorf("account %s: %w", id, model.ErrNotFound)
	}
	if a.Balance < amount {
		return a.Balance, model.ErrInsufficientFunds
	}
	a.Balance -= amount
	a.UpdatedAt = time.Now()
	return a.Balance, nil
}

// TransferBalances списывает с одного счёта и зачисляет на другой в одной
// критической секции: наблюдатель не увидит пару балансов наполовину применённой.
func (d *AccountDirectory) TransferBalances(fromID, toID uuid.UUID, amount float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, ok := d.byID[fromID]
	if !ok {
		return 0, fmt.Errorf("source account: %w", model.ErrNotFound)
	}
	to, ok := d.byID[toID]
	if !ok {
		return 0, fmt.Errorf("destination account: %w", model.ErrNotFound)
	}
	if from.Balance < amount {
		return from.Balance, model.ErrInsufficientFunds
	}

	now := time.Now()
	from.Balance -= amount
	to.Balance += amount
	from.UpdatedAt = now
	to.UpdatedAt = now
	return from.Balance, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
