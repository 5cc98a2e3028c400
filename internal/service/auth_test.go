package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atm-api/internal/model"
)

func TestAuthenticateUser(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1500)
	p := env.newProcessor()
	auth := env.newAuthService(15 * time.Minute)
	ctx := context.Background()

	_, err := p.Deposit(ctx, a.CardNumber, 100)
	require.NoError(t, err)
	_, err = p.Withdraw(ctx, a.CardNumber, 50)
	require.NoError(t, err)

	session, err := auth.AuthenticateUser(ctx, a.CardNumber, "1234")
	require.NoError(t, err)
	assert.Equal(t, a.ID, session.Account.ID)
	assert.InDelta(t, 1550, session.Account.Balance, 1e-9)

	// История — от новых операций к старым.
	require.Len(t, session.Transactions, 2)
	assert.Equal(t, model.TransactionTypeWithdrawal, session.Transactions[0].Type)
	assert.Equal(t, model.TransactionTypeDeposit, session.Transactions[1].Type)
}

func TestAuthenticateUserNormalizesCardNumber(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 100)
	auth := env.newAuthService(15 * time.Minute)

	_, err := auth.AuthenticateUser(context.Background(), "4111-1111-1111-1111", "1234")
	assert.NoError(t, err)
}

func TestAuthenticateUserWrongPIN(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1500)
	auth := env.newAuthService(15 * time.Minute)

	_, err := auth.AuthenticateUser(context.Background(), a.CardNumber, "0000")
	require.ErrorIs(t, err, model.ErrAuthFailed)

	// Неудачная попытка не меняет состояние.
	after, _ := env.accounts.GetByID(a.ID)
	assert.InDelta(t, 1500, after.Balance, 1e-9)
	assert.Zero(t, env.ledger.Count())
}

func TestAuthenticateUserInvalidCardFormat(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(15 * time.Minute)
	ctx := context.Background()

	for _, number := range []string{"", "411111111111111", "41111111111111112", "4111111111111abc"} {
		_, err := auth.AuthenticateUser(ctx, number, "1234")
		assert.ErrorIs(t, err, model.ErrValidation, "card %q", number)
	}
}

func TestAuthenticateUserUnknownCard(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(15 * time.Minute)

	// Карта с верным форматом, но не зарегистрированная в системе. Причина
	// отказа не отличается от неверного PIN.
	_, err := auth.AuthenticateUser(context.Background(), "4532015112830366", "1234")
	assert.ErrorIs(t, err, model.ErrAuthFailed)
}

func TestCardLockoutAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1500)
	auth := env.newAuthService(15 * time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := auth.AuthenticateUser(ctx, a.CardNumber, "0000")
		require.ErrorIs(t, err, model.ErrAuthFailed)
	}

	// После трёх неудач даже верный PIN не проходит до конца таймаута.
	_, err := auth.AuthenticateUser(ctx, a.CardNumber, "1234")
	assert.ErrorIs(t, err, model.ErrCardLocked)
}

func TestCardLockoutExpires(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1500)
	auth := env.newAuthService(20 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		auth.AuthenticateUser(ctx, a.CardNumber, "0000")
	}
	_, err := auth.AuthenticateUser(ctx, a.CardNumber, "1234")
	require.ErrorIs(t, err, model.ErrCardLocked)

	time.Sleep(50 * time.Millisecond)

	_, err = auth.AuthenticateUser(ctx, a.CardNumber, "1234")
	assert.NoError(t, err, "после истечения таймаута верный PIN снова принимается")
}

func TestSuccessfulLoginResetsFailureCounter(t *testing.T) {
	env := newTestEnv(t)
	a := env.addAccount(t, "Иван Петров", "4111111111111111", "1000000001", "1234", 1500)
	auth := env.newAuthService(15 * time.Minute)
	ctx := context.Background()

	auth.AuthenticateUser(ctx, a.CardNumber, "0000")
	auth.AuthenticateUser(ctx, a.CardNumber, "0000")
	_, err := auth.AuthenticateUser(ctx, a.CardNumber, "1234")
	require.NoError(t, err)

	// Счётчик сброшен: две новые неудачи не блокируют карту.
	auth.AuthenticateUser(ctx, a.CardNumber, "0000")
	auth.AuthenticateUser(ctx, a.CardNumber, "0000")
	_, err = auth.AuthenticateUser(ctx, a.CardNumber, "1234")
	assert.NoError(t, err)
}

func TestAuthenticateAdmin(t *testing.T) {
	env := newTestEnv(t)
	created := env.addAdmin(t, "admin", "admin123")
	auth := env.newAuthService(15 * time.Minute)

	admin, token, err := auth.AuthenticateAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, admin.ID)
	assert.Empty(t, admin.Password, "хеш пароля не возвращается наружу")
	assert.False(t, admin.LastLogin.IsZero())

	subject, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), subject)

	stored, err := env.admins.GetByID(created.ID)
	require.NoError(t, err)
	assert.False(t, stored.LastLogin.IsZero())
}

func TestAuthenticateAdminWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.addAdmin(t, "admin", "admin123")
	auth := env.newAuthService(15 * time.Minute)

	_, _, err := auth.AuthenticateAdmin(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, model.ErrAuthFailed)

	_, _, err = auth.AuthenticateAdmin(context.Background(), "nobody", "admin123")
	assert.ErrorIs(t, err, model.ErrAuthFailed)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	auth := env.newAuthService(15 * time.Minute)

	_, err := auth.ParseToken("not-a-token")
	assert.Error(t, err)

	// Токен, подписанный другим секретом.
	other := NewAuthService(env.accounts, env.admins, env.ledger, env.persister,
		"other-secret", time.Hour, 3, 15*time.Minute, env.logger)
	token, err := other.GenerateToken("some-admin")
	require.NoError(t, err)
	_, err = auth.ParseToken(token)
	assert.Error(t, err)
}
