package service

import (
	"sync"

	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
	"atm-api/internal/repository"
	"atm-api/internal/storage"
)

// Persister — единая точка фиксации состояния. Держит глобальный мьютекс
// мутаций: каждая изменяющая операция (проверка, мутация, запись в журнал,
// сохранение снимка) выполняется целиком под Lock/Unlock, поэтому
// конкурентные снятия с одного счёта не могут перемежать свои шаги.
type Persister struct {
	mu       sync.Mutex
	accounts *repository.AccountDirectory
	admins   *repository.AdminDirectory
	ledger   *repository.Ledger
	store    *storage.Store
	info     model.SystemInfo
	emails   *EmailSender
	logger   *logrus.Logger
}

func NewPersister(
	accounts *repository.AccountDirectory,
	admins *repository.AdminDirectory,
	ledger *repository.Ledger,
	store *storage.Store,
	info model.SystemInfo,
	emails *EmailSender,
	logger *logrus.Logger,
) *Persister {
	return &Persister{
		accounts: accounts,
		admins:   admins,
		ledger:   ledger,
		store:    store,
		info:     info,
		emails:   emails,
		logger:   logger,
	}
}

// Lock открывает критическую секцию мутации.
func (p *Persister) Lock() { p.mu.Lock() }

// Unlock закрывает критическую секцию мутации.
func (p *Persister) Unlock() { p.mu.Unlock() }

// SnapshotNow собирает текущее состояние каталогов и журнала в снимок.
func (p *Persister) SnapshotNow() *model.Snapshot {
	return &model.Snapshot{
		Accounts:     p.accounts.All(),
		Transactions: p.ledger.Snapshot(),
		Admins:       p.admins.All(),
		SystemInfo:   p.info,
	}
}

// Save синхронно записывает полный снимок. Вызывается после каждой
// мутации, внутри критической секции вызывающего. При сбое записи
// отправляется email-уведомление дежурным.
func (p *Persister) Save() error {
	snap := p.SnapshotNow()
	if err := p.store.Save(snap); err != nil {
		p.logger.WithError(err).Error("Не удалось сохранить снимок состояния")
		go func() {
			if mailErr := p.emails.SendPersistenceAlert(err); mailErr != nil {
				p.logger.WithError(mailErr).Warn("Не удалось отправить email о сбое сохранения")
			}
		}()
		return err
	}
	return nil
}
