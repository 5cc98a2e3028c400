package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит настройки приложения
type Config struct {
	Addr                   string        // Адрес HTTP сервера
	DataFile               string        // Путь к файлу снимка состояния
	BackupDir              string        // Каталог резервных копий снимка
	BackupSchedule         string        // Cron-расписание резервного копирования
	JWTSecret              string        // Секрет для JWT
	TokenExpiry            time.Duration // Время жизни токена администратора
	LockoutAttempts        int           // Количество неудачных попыток входа до блокировки карты
	LockoutCooldown        time.Duration // Длительность блокировки карты
	TransferAlertThreshold float64       // Порог суммы перевода для email-уведомления
	AdminDefaultPassword   string        // Пароль администратора по умолчанию для seed-данных
}

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	expiry, err := time.ParseDuration(os.Getenv("TOKEN_EXPIRY"))
	if err != nil {
		expiry = 24 * time.Hour // По умолчанию 24 часа
	}

	cooldown, err := time.ParseDuration(os.Getenv("LOCKOUT_COOLDOWN"))
	if err != nil {
		cooldown = 15 * time.Minute
	}

	attempts, err := strconv.Atoi(os.Getenv("LOCKOUT_ATTEMPTS"))
	if err != nil || attempts <= 0 {
		attempts = 3
	}

	threshold, err := strconv.ParseFloat(os.Getenv("TRANSFER_ALERT_THRESHOLD"), 64)
	if err != nil || threshold <= 0 {
		threshold = 100000
	}

	config := &Config{
		Addr:                   getEnv("HTTP_ADDR", ":8080"),
		DataFile:               getEnv("DATA_FILE", "data/atm_database.json"),
		BackupDir:              getEnv("BACKUP_DIR", "data/backups"),
		BackupSchedule:         getEnv("BACKUP_SCHEDULE", "0 3 * * *"),
		JWTSecret:              getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry:            expiry,
		LockoutAttempts:        attempts,
		LockoutCooldown:        cooldown,
		TransferAlertThreshold: threshold,
		AdminDefaultPassword:   getEnv("ADMIN_DEFAULT_PASSWORD", "admin123"),
	}

	return config, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
