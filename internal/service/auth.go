package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"atm-api/internal/card"
	"atm-api/internal/model"
	"atm-api/internal/repository"
)

// AuthService проверяет карту+PIN держателя и логин+пароль администратора.
// Блокировка карты после серии неудачных попыток живёт здесь, а не в UI:
// клиентская блокировка из исходной системы обходится тривиально.
type AuthService struct {
	accounts    *repository.AccountDirectory
	admins      *repository.AdminDirectory
	ledger      *repository.Ledger
	persister   *Persister
	jwtSecret   string
	tokenExpiry time.Duration
	maxAttempts int
	cooldown    time.Duration
	logger      *logrus.Logger

	mu       sync.Mutex
	attempts map[string]*cardAttempts // ключ — номер карты
}

type cardAttempts struct {
	failures    int
	lockedUntil time.Time
}

func NewAuthService(
	accounts *repository.AccountDirectory,
	admins *repository.AdminDirectory,
	ledger *repository.Ledger,
	persister *Persister,
	jwtSecret string,
	tokenExpiry time.Duration,
	maxAttempts int,
	cooldown time.Duration,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		accounts:    accounts,
		admins:      admins,
		ledger:      ledger,
		persister:   persister,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		logger:      logger,
		attempts:    make(map[string]*cardAttempts),
	}
}

// AuthenticateUser проверяет карту и PIN. При успехе возвращает счёт вместе
// с историей операций от новых к старым. Неудачная попытка не меняет ни
// балансы, ни журнал; причина отказа (неизвестная карта или неверный PIN)
// вызывающему намеренно не сообщается.
func (s *AuthService) AuthenticateUser(ctx context.Context, cardNumber, pin string) (*model.AuthenticatedAccount, error) {
	cardNumber = card.Normalize(cardNumber)
	s.logger.WithField("card", card.Mask(cardNumber)).Info("Попытка входа по карте")

	if !card.Valid(cardNumber) {
		s.logger.Warn("Номер карты не прошёл проверку формата")
		return nil, fmt.Errorf("%w: card number is not valid", model.ErrValidation)
	}

	if until, locked := s.lockedUntil(cardNumber); locked {
		s.logger.WithField("card", card.Mask(cardNumber)).Warn("Карта временно заблокирована")
		return nil, fmt.Errorf("%w until %s", model.ErrCardLocked, until.Format(time.RFC3339))
	}

	account, err := s.accounts.GetByCard(cardNumber)
	if err != nil {
		s.recordFailure(cardNumber)
		s.logger.WithField("card", card.Mask(cardNumber)).Warn("Карта не найдена")
		return nil, model.ErrAuthFailed
	}

	// PIN хранится и сравнивается открытым текстом, как в исходной системе.
	// Известный пробел в безопасности, зафиксирован в DESIGN.md.
	if subtle.ConstantTimeCompare([]byte(account.PIN), []byte(pin)) != 1 {
		s.recordFailure(cardNumber)
		s.logger.WithField("card", card.Mask(cardNumber)).Warn("Неверный PIN")
		return nil, model.ErrAuthFailed
	}

	s.resetAttempts(cardNumber)
	s.logger.WithField("account_number", account.AccountNumber).Info("Держатель карты аутентифицирован")

	return &model.AuthenticatedAccount{
		Account:      *account,
		Transactions: s.ledger.ByUser(account.ID),
	}, nil
}

// AuthenticateAdmin проверяет логин и пароль администратора, обновляет
// LastLogin и выдаёт JWT. Сбой сохранения LastLogin не отменяет вход:
// ставки малы, запись попадёт в снимок при следующей мутации.
func (s *AuthService) AuthenticateAdmin(ctx context.Context, username, password string) (*model.AdminUser, string, error) {
	s.logger.WithField("username", username).Info("Попытка входа администратора")

	admin, err := s.admins.GetByUsername(username)
	if err != nil {
		s.logger.WithField("username", username).Warn("Администратор не найден")
		return nil, "", model.ErrAuthFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		s.logger.WithField("username", username).Warn("Неверный пароль администратора")
		return nil, "", model.ErrAuthFailed
	}

	now := time.Now()
	s.persister.Lock()
	if err := s.admins.SetLastLogin(admin.ID, now); err == nil {
		if err := s.persister.Save(); err != nil {
			s.logger.WithError(err).Warn("Не удалось сохранить снимок после входа администратора")
		}
	}
	s.persister.Unlock()

	token, err := s.GenerateToken(admin.ID.String())
	if err != nil {
		s.logger.WithError(err).Error("Не удалось сгенерировать JWT токен")
		return nil, "", fmt.Errorf("ошибка генерации токена: %w", err)
	}

	s.logger.WithField("admin_id", admin.ID).Info("Администратор успешно вошёл в систему")
	admin.LastLogin = now
	admin.Password = ""
	return admin, token, nil
}

// GenerateToken выдаёт JWT с идентификатором администратора.
func (s *AuthService) GenerateToken(adminID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken разбирает и проверяет JWT, возвращая идентификатор администратора.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("невалидный токен: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("некорректные claims токена")
	}
	return claims.Subject, nil
}

func (s *AuthService) lockedUntil(cardNumber string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[cardNumber]
	if !ok {
		return time.Time{}, false
	}
	if time.Now().Before(a.lockedUntil) {
		return a.lockedUntil, true
	}
	// Срок блокировки истёк, счётчик начинается заново.
	if !a.lockedUntil.IsZero() && a.failures >= s.maxAttempts {
		a.failures = 0
		a.lockedUntil = time.Time{}
	}
	return time.Time{}, false
}

func (s *AuthService) recordFailure(cardNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[cardNumber]
	if !ok {
		a = &cardAttempts{}
		s.attempts[cardNumber] = a
	}
	a.failures++
	if a.failures >= s.maxAttempts {
		a.lockedUntil = time.Now().Add(s.cooldown)
		s.logger.WithFields(logrus.Fields{
			"card":     card.Mask(cardNumber),
			"failures": a.failures,
		}).Warn("Карта заблокирована после серии неудачных попыток")
	}
}

func (s *AuthService) resetAttempts(cardNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, cardNumber)
}
