package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"atm-api/internal/config"
	"atm-api/internal/handler"
	"atm-api/internal/model"
	"atm-api/internal/repository"
	"atm-api/internal/service"
	"atm-api/internal/storage"
)

func main() {
	logger := logrus.New()
	// Уровень логирования (Debug для разработки, Info для продакшена)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Загрузка конфигурации приложения
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Загрузка снимка состояния (или seed-данных при первом запуске)
	store := storage.NewStore(cfg.DataFile, logger)
	snap, err := store.Load(cfg.AdminDefaultPassword)
	if err != nil {
		logger.Fatalf("Ошибка загрузки состояния: %v", err)
	}

	// Инициализация каталогов и журнала
	logger.Info("Инициализация хранилищ в памяти...")
	accounts := repository.NewAccountDirectory(logger)
	accounts.Restore(snap.Accounts)
	admins := repository.NewAdminDirectory(logger)
	admins.Restore(snap.Admins)
	ledger := repository.NewLedger(logger)
	ledger.Restore(snap.Transactions)

	info := model.SystemInfo{
		Name:          snap.SystemInfo.Name,
		Version:       snap.SystemInfo.Version,
		SchemaVersion: model.SchemaVersion,
	}

	// Инициализация сервисов
	logger.Info("Инициализация сервисов...")
	emailSender := service.NewEmailSender(logger)
	persister := service.NewPersister(accounts, admins, ledger, store, info, emailSender, logger)
	authService := service.NewAuthService(
		accounts,
		admins,
		ledger,
		persister,
		cfg.JWTSecret,
		cfg.TokenExpiry,
		cfg.LockoutAttempts,
		cfg.LockoutCooldown,
		logger,
	)
	processor := service.NewTransactionProcessor(accounts, ledger, persister, emailSender, cfg.TransferAlertThreshold, logger)
	accountService := service.NewAccountService(accounts, ledger, persister, logger)
	analyticService := service.NewAnalyticService(accounts, ledger, logger)

	// Инициализация HTTP обработчиков
	logger.Info("Инициализация обработчиков API...")
	authHandler := handler.NewAuthHandler(authService, logger)
	atmHandler := handler.NewATMHandler(processor, logger)
	adminHandler := handler.NewAdminHandler(accountService, analyticService, logger)

	// Настройка маршрутизатора
	router := mux.NewRouter()

	// 1. Публичные маршруты аутентификации
	publicRouter := router.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(publicRouter) // Регистрация /atm и /admin

	// 2. Маршруты терминала (доверенное устройство, операции по номеру карты)
	atmRouter := router.PathPrefix("/api/atm").Subrouter()
	atmHandler.RegisterRoutes(atmRouter)

	// 3. Административные маршруты (требуется JWT токен)
	adminRouter := router.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(handler.AuthMiddleware(authService, logger))
	adminHandler.RegisterRoutes(adminRouter)

	// Настройка планировщика резервного копирования снимка
	logger.Info("Настройка планировщика резервного копирования...")
	c := cron.New()
	_, err = c.AddFunc(cfg.BackupSchedule, func() {
		logger.Info("Запуск резервного копирования снимка")
		if _, err := store.Backup(cfg.BackupDir); err != nil {
			logger.WithError(err).Error("Ошибка резервного копирования")
		} else {
			logger.Info("Резервное копирование завершено успешно")
		}
	})
	if err != nil {
		logger.Fatalf("Ошибка настройки планировщика: %v", err)
	}
	c.Start()

	// Настройка и запуск HTTP сервера
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("Запуск сервера на %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигналов для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера...")
	c.Stop()
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Ошибка при завершении работы сервера: %v", err)
	}
	logger.Info("Сервер успешно остановлен")
}
