package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
	"atm-api/internal/service"
)

// AdminHandler обрабатывает административные запросы: управление счетами,
// просмотр журнала, статистика и экспорт
type AdminHandler struct {
	accountService  *service.AccountService  // Сервис управления счетами
	analyticService *service.AnalyticService // Сервис статистики
	logger          *logrus.Logger           // Логгер
}

// NewAdminHandler создает новый AdminHandler
func NewAdminHandler(accountService *service.AccountService, analyticService *service.AnalyticService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		accountService:  accountService,
		analyticService: analyticService,
		logger:          logger,
	}
}

// RegisterRoutes регистрирует административные маршруты
func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/accounts", h.ListAccounts).Methods("GET")
	router.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	router.HandleFunc("/accounts/{id}", h.UpdateAccount).Methods("PUT")
	router.HandleFunc("/accounts/{id}", h.DeleteAccount).Methods("DELETE")
	router.HandleFunc("/accounts/{id}/transactions", h.AccountTransactions).Methods("GET")
	router.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	router.HandleFunc("/stats", h.Stats).Methods("GET")
	router.HandleFunc("/export", h.Export).Methods("GET")
}

// ListAccounts возвращает все счета
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.accountService.ListAccounts(r.Context()))
}

// CreateAccount обрабатывает запрос на открытие нового счёта
func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на открытие счёта")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.AddAccount(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// UpdateAccount обрабатывает частичное обновление счёта
func (h *AdminHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор счёта", http.StatusBadRequest)
		return
	}

	var patch model.AccountPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на обновление счёта")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.UpdateAccount(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// DeleteAccount закрывает счёт и возвращает его вместе с записью о закрытии
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор счёта", http.StatusBadRequest)
		return
	}

	account, tx, err := h.accountService.DeleteAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":     account,
		"transaction": tx,
	})
}

// AccountTransactions возвращает операции владельца счёта
func (h *AdminHandler) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Неверный идентификатор счёта", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.accountService.AccountTransactions(r.Context(), id))
}

// ListTransactions возвращает весь журнал операций
func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.accountService.ListTransactions(r.Context()))
}

// Stats возвращает сводную статистику
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analyticService.SystemStats(r.Context()))
}

// Export возвращает снимок состояния без паролей администраторов
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.accountService.ExportSnapshot(r.Context()))
}
