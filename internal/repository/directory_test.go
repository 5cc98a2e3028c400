package repository

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atm-api/internal/model"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testAccount(card, accountNumber string) model.Account {
	now := time.Now()
	return model.Account{
		ID:            uuid.New(),
		Name:          "Test Holder",
		AccountNumber: accountNumber,
		CardNumber:    card,
		PIN:           "1234",
		Balance:       1000,
		AccountType:   model.AccountTypeChecking,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestDirectoryAddAndLookups(t *testing.T) {
	d := NewAccountDirectory(testLogger())
	acct := testAccount("4111111111111111", "1000000001")
	require.NoError(t, d.Add(acct))

	byCard, err := d.GetByCard("4111111111111111")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byCard.ID)

	byNumber, err := d.GetByAccountNumber("1000000001")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byNumber.ID)

	byID, err := d.GetByID(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000000001", byID.AccountNumber)

	_, err = d.GetByCard("4012888888881881")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDirectoryAddValidationOrder(t *testing.T) {
	d := NewAccountDirectory(testLogger())

	short := testAccount("411111111111111", "1000000001") // 15 цифр
	err := d.Add(short)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "card number must be 16 digits")
	assert.Zero(t, d.Count())

	badPIN := testAccount("4111111111111111", "1000000001")
	badPIN.PIN = "12"
	err = d.Add(badPIN)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "PIN must be 4 digits")
	assert.Zero(t, d.Count())
}

func TestDirectoryDuplicates(t *testing.T) {
	d := NewAccountDirectory(testLogger())
	require.NoError(t, d.Add(testAccount("4111111111111111", "1000000001")))

	dupCard := testAccount("4111111111111111", "1000000002")
	assert.ErrorIs(t, d.Add(dupCard), model.ErrDuplicateCard)
	assert.Equal(t, 1, d.Count(), "каталог не должен измениться после отклонённого добавления")

	dupAccount := testAccount("4012888888881881", "1000000001")
	assert.ErrorIs(t, d.Add(dupAccount), model.ErrDuplicateAccount)
	assert.Equal(t, 1, d.Count())
}

func TestDirectoryUpdate(t *testing.T) {
	d := NewAccountDirectory(testLogger())
	a := testAccount("4111111111111111", "1000000001")
	b := testAccount("4012888888881881", "1000000002")
	require.NoError(t, d.Add(a))
	require.NoError(t, d.Add(b))

	newName := "Renamed Holder"
	updated, err := d.Update(a.ID, model.AccountPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Holder", updated.Name)
	assert.True(t, updated.UpdatedAt.After(a.UpdatedAt) || updated.UpdatedAt.Equal(a.UpdatedAt))

	// Смена ключа на занятый отклоняется.
	taken := b.CardNumber
	_, err = d.Update(a.ID, model.AccountPatch{CardNumber: &taken})
	assert.ErrorIs(t, err, model.ErrDuplicateCard)

	// Смена ключа на свободный переиндексирует.
	free := "5555555555554444"
	updated, err = d.Update(a.ID, model.AccountPatch{CardNumber: &free})
	require.NoError(t, err)
	assert.Equal(t, free, updated.CardNumber)

	found, err := d.GetByCard(free)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
	_, err = d.GetByCard("4111111111111111")
	assert.ErrorIs(t, err, model.ErrNotFound)

	negative := -1.0
	_, err = d.Update(a.ID, model.AccountPatch{Balance: &negative})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = d.Update(uuid.New(), model.AccountPatch{Name: &newName})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDirectoryRemove(t *testing.T) {
	d := NewAccountDirectory(testLogger())
	a := testAccount("4111111111111111", "1000000001")
	require.NoError(t, d.Add(a))

	removed, err := d.Remove(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	assert.Zero(t, d.Count())

	_, err = d.GetByCard(a.CardNumber)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = d.Remove(a.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDirectoryBalanceOps(t *testing.T) {
	d := NewAccountDirectory(testLogger())
	a := testAccount("4111111111111111", "1000000001")
	b := testAccount("4012888888881881", "1000000002")
	a.Balance = 700
	b.Balance = 500
	require.NoError(t, d.Add(a))
	require.NoError(t, d.Add(b))

	balance, err := d.Credit(a.ID, 50)
	require.NoError(t, err)
	assert.InDelta(t, 750, balance, 1e-9)

	balance, err = d.Debit(a.ID, 50)
	require.NoError(t, err)
	assert.InDelta(t, 700, balance, 1e-9)

	_, err = d.Debit(a.ID, 700.01)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	// Перевод сохраняет суммарный объём средств.
	balance, err = d.TransferBalances(a.ID, b.ID, 200)
	require.NoError(t, err)
	assert.InDelta(t, 500, balance, 1e-9)

	fromAfter, _ := d.GetByID(a.ID)
	toAfter, _ := d.GetByID(b.ID)
	assert.InDelta(t, 500, fromAfter.Balance, 1e-9)
	assert.InDelta(t, 700, toAfter.Balance, 1e-9)
	assert.InDelta(t, 1200, fromAfter.Balance+toAfter.Balance, 1e-9)

	_, err = d.TransferBalances(a.ID, b.ID, 100000)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
}

func TestDirectoryReturnsCopies(t *testing.T) {
	d := NewAccountDirectory(testLogger())
	a := testAccount("4111111111111111", "1000000001")
	require.NoError(t, d.Add(a))

	got, err := d.GetByID(a.ID)
	require.NoError(t, err)
	got.Balance = 999999

	again, err := d.GetByID(a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1000, again.Balance, 1e-9, "мутация копии не должна задевать каталог")
}
