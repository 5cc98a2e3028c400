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
)

// TransactionProcessor выполняет денежные операции: проверка, мутация
// балансов, запись в журнал и сохранение снимка как одно целое под
// глобальной секцией фиксации. Если снимок сохранить не удалось, мутация
// откатывается и операция завершается ошибкой ErrPersistence.
type TransactionProcessor struct {
	accounts       *repository.AccountDirectory
	ledger         *repository.Ledger
	persister      *Persister
	emailSender    *EmailSender
	alertThreshold float64
	logger         *logrus.Logger
}

func NewTransactionProcessor(
	accounts *repository.AccountDirectory,
	ledger *repository.Ledger,
	persister *Persister,
	emailSender *EmailSender,
	alertThreshold float64,
	logger *logrus.Logger,
) *TransactionProcessor {
	return &TransactionProcessor{
		accounts:       accounts,
		ledger:         ledger,
		persister:      persister,
		emailSender:    emailSender,
		alertThreshold: alertThreshold,
		logger:         logger,
	}
}

// Deposit зачисляет средства на счёт по номеру карты.
func (p *TransactionProcessor) Deposit(ctx context.Context, cardNumber string, amount float64) (*model.OperationResult, error) {
	if err := validateAmount(amount); err != nil {
		p.logger.Warn("Попытка пополнения на некорректную сумму")
		return nil, err
	}
	cardNumber = card.Normalize(cardNumber)

	p.persister.Lock()
	defer p.persister.Unlock()

	account, err := p.accounts.GetByCard(cardNumber)
	if err != nil {
		return nil, err
	}

	newBalance, err := p.accounts.Credit(account.ID, amount)
	if err != nil {
		return nil, err
	}

	tx := p.newTransaction(account, model.TransactionTypeDeposit, amount)
	p.ledger.Append(tx)

	if err := p.persister.Save(); err != nil {
		p.accounts.Debit(account.ID, amount)
		p.ledger.DropByID(tx.ID)
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"account_number": account.AccountNumber,
		"amount":         amount,
	}).Info("Пополнение выполнено")
	return &model.OperationResult{NewBalance: newBalance, Transaction: tx}, nil
}

// Withdraw списывает средства со счёта по номеру карты.
func (p *TransactionProcessor) Withdraw(ctx context.Context, cardNumber string, amount float64) (*model.OperationResult, error) {
	if err := validateAmount(amount); err != nil {
		p.logger.Warn("Попытка снятия некорректной суммы")
		return nil, err
	}
	cardNumber = card.Normalize(cardNumber)

	p.persister.Lock()
	defer p.persister.Unlock()

	account, err := p.accounts.GetByCard(cardNumber)
	if err != nil {
		return nil, err
	}

	newBalance, err := p.accounts.Debit(account.ID, amount)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"account_number": account.AccountNumber,
			"balance":        account.Balance,
			"amount":         amount,
		}).Warn("Снятие отклонено")
		return nil, err
	}

	tx := p.newTransaction(account, model.TransactionTypeWithdrawal, amount)
	p.ledger.Append(tx)

	if err := p.persister.Save(); err != nil {
		p.accounts.Credit(account.ID, amount)
		p.ledger.DropByID(tx.ID)
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"account_number": account.AccountNumber,
		"amount":         amount,
	}).Info("Снятие выполнено")
	return &model.OperationResult{NewBalance: newBalance, Transaction: tx}, nil
}

// Transfer переводит средства между двумя разными счетами. Пара мутаций
// балансов применяется атомарно; в журнале остаётся единственная запись,
// отнесённая к счёту отправителя.
func (p *TransactionProcessor) Transfer(ctx context.Context, cardNumber string, amount float64, toAccountNumber string) (*model.OperationResult, error) {
	if err := validateAmount(amount); err != nil {
		p.logger.Warn("Попытка перевода некорректной суммы")
		return nil, err
	}
	cardNumber = card.Normalize(cardNumber)

	p.persister.Lock()
	defer p.persister.Unlock()

	from, err := p.accounts.GetByCard(cardNumber)
	if err != nil {
		return nil, err
	}
	to, err := p.accounts.GetByAccountNumber(toAccountNumber)
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		p.logger.WithField("account_number", from.AccountNumber).Warn("Попытка перевода на собственный счёт")
		return nil, model.ErrSameAccount
	}

	newBalance, err := p.accounts.TransferBalances(from.ID, to.ID, amount)
	if err != nil {
		return nil, err
	}

	tx := p.newTransaction(from, model.TransactionTypeTransfer, amount)
	tx.ToAccount = to.AccountNumber
	tx.ToUserName = to.Name
	p.ledger.Append(tx)

	if err := p.persister.Save(); err != nil {
		p.accounts.TransferBalances(to.ID, from.ID, amount)
		p.ledger.DropByID(tx.ID)
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"from": from.AccountNumber,
		"to":   to.AccountNumber,
		"amount": amount,
	}).Info("Перевод выполнен")

	if amount >= p.alertThreshold {
		go func() {
			if err := p.emailSender.SendLargeTransferNotification(amount, from.AccountNumber, to.AccountNumber); err != nil {
				p.logger.WithError(err).Warn("Не удалось отправить уведомление о переводе")
			}
		}()
	}

	return &model.OperationResult{NewBalance: newBalance, Transaction: tx}, nil
}

// MarkReceiptPrinted отмечает запись журнала как напечатанную.
// Неизвестный номер — не ошибка, операция просто ничего не делает.
func (p *TransactionProcessor) MarkReceiptPrinted(ctx context.Context, transactionID string) error {
	p.persister.Lock()
	defer p.persister.Unlock()

	if !p.ledger.MarkReceiptPrinted(transactionID, time.Now()) {
		p.logger.WithField("transaction_id", transactionID).Debug("Запись для отметки о печати не найдена")
		return nil
	}

	if err := p.persister.Save(); err != nil {
		p.ledger.UnmarkReceiptPrinted(transactionID)
		return err
	}
	return nil
}

func (p *TransactionProcessor) newTransaction(account *model.Account, txType model.TransactionType, amount float64) model.Transaction {
	return model.Transaction{
		ID:            uuid.New(),
		TransactionID: p.generateTransactionID(),
		Date:          time.Now(),
		UserID:        account.ID,
		AccountNumber: account.AccountNumber,
		UserName:      account.Name,
		Type:          txType,
		Amount:        amount,
		Status:        model.TransactionStatusCompleted,
	}
}

// generateTransactionID выдаёт свободный человекочитаемый номер вида TX123456.
func (p *TransactionProcessor) generateTransactionID() string {
	for {
		id := fmt.Sprintf("TX%06d", 100000+rand.Intn(900000))
		if !p.ledger.HasTransactionID(id) {
			return id
		}
	}
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", model.ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", model.ErrValidation)
	}
	return nil
}
