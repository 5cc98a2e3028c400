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

// AdminDirectory хранит учётные записи администраторов в памяти.
type AdminDirectory struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*model.AdminUser
	byUsername map[string]uuid.UUID
	logger     *logrus.Logger
}

func NewAdminDirectory(logger *logrus.Logger) *AdminDirectory {
	return &AdminDirectory{
		byID:       make(map[uuid.UUID]*model.AdminUser),
		byUsername: make(map[string]uuid.UUID),
		logger:     logger,
	}
}

func (d *AdminDirectory) Restore(admins []model.AdminUser) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.byID = make(map[uuid.UUID]*model.AdminUser, len(admins))
	d.byUsername = make(map[string]uuid.UUID, len(admins))
	for i := range admins {
		a := admins[i]
		d.byID[a.ID] = &a
		d.byUsername[a.Username] = a.ID
	}
}

func (d *AdminDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

func (d *AdminDirectory) All() []model.AdminUser {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.AdminUser, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (d *AdminDirectory) GetByUsername(username string) (*model.AdminUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("admin %q: %w", username, model.ErrNotFound)
	}
	cp := *d.byID[id]
	return &cp, nil
}

func (d *AdminDirectory) GetByID(id uuid.UUID) (*model.AdminUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("admin %s: %w", id, model.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

// SetLastLogin отмечает время успешного входа администратора.
func (d *AdminDirectory) SetLastLogin(id uuid.UUID, t time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("admin %s: %w", id, model.ErrNotFound)
	}
	a.LastLogin = t
	return nil
}
