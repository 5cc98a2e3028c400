// Package storage реализует durable-слой: загрузку, сохранение, экспорт и
// резервное копирование JSON-снимка состояния системы.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
)

// Store владеет файлом снимка и является единственной точкой записи в него.
// Запись атомарная: сначала во временный файл, затем os.Rename поверх
// основного, чтобы сбой посреди записи не повредил существующий снимок.
type Store struct {
	path   string
	logger *logrus.Logger
}

func NewStore(path string, logger *logrus.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load читает снимок из файла. Если файл отсутствует, нечитаем или
// структурно некорректен (нет ни одного счёта), возвращаются seed-данные,
// которые сразу же сохраняются.
func (s *Store) Load(adminPassword string) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("Файл снимка не найден, инициализация seed-данными")
		} else {
			s.logger.WithError(err).Warn("Не удалось прочитать файл снимка, инициализация seed-данными")
		}
		return s.seedAndSave(adminPassword)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.WithError(err).Warn("Снимок повреждён, инициализация seed-данными")
		return s.seedAndSave(adminPassword)
	}
	if len(snap.Accounts) == 0 {
		s.logger.Warn("Снимок не содержит счетов, инициализация seed-данными")
		return s.seedAndSave(adminPassword)
	}

	s.logger.WithFields(logrus.Fields{
		"accounts":     len(snap.Accounts),
		"transactions": len(snap.Transactions),
		"admins":       len(snap.Admins),
	}).Info("Снимок состояния загружен")
	return &snap, nil
}

func (s *Store) seedAndSave(adminPassword string) (*model.Snapshot, error) {
	snap, err := Seed(adminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to build seed data: %w", err)
	}
	if err := s.Save(snap); err != nil {
		return nil, fmt.Errorf("failed to persist seed data: %w", err)
	}
	return snap, nil
}

// Save сериализует полное состояние и атомарно перезаписывает файл снимка.
func (s *Store) Save(snap *model.Snapshot) error {
	snap.SystemInfo.SchemaVersion = model.SchemaVersion
	snap.SystemInfo.TotalTransactions = len(snap.Transactions)
	snap.SystemInfo.LastUpdated = time.Now()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	s.logger.WithField("path", s.path).Debug("Снимок состояния сохранён")
	return nil
}

// Export возвращает копию снимка для внешней выгрузки: пароли администраторов
// вычищены, проставлена отметка времени экспорта.
func Export(snap *model.Snapshot) *model.Snapshot {
	out := model.Snapshot{
		Accounts:     append([]model.Account(nil), snap.Accounts...),
		Transactions: append([]model.Transaction(nil), snap.Transactions...),
		Admins:       make([]model.AdminUser, len(snap.Admins)),
		SystemInfo:   snap.SystemInfo,
	}
	for i, a := range snap.Admins {
		a.Password = ""
		out.Admins[i] = a
	}
	now := time.Now()
	out.SystemInfo.LastExport = &now
	return &out
}

// Backup копирует текущий файл снимка в каталог резервных копий с
// отметкой времени в имени. Возвращает путь созданной копии.
func (s *Store) Backup(dir string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot for backup: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	name := fmt.Sprintf("snapshot-%s.json", time.Now().Format("20060102-150405"))
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	s.logger.WithField("path", dest).Info("Создана резервная копия снимка")
	return dest, nil
}
