package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
	"atm-api/internal/service"
)

// ATMHandler обрабатывает денежные операции терминала
type ATMHandler struct {
	processor *service.TransactionProcessor // Процессор операций
	logger    *logrus.Logger                // Логгер
}

// NewATMHandler создает новый ATMHandler
func NewATMHandler(processor *service.TransactionProcessor, logger *logrus.Logger) *ATMHandler {
	return &ATMHandler{processor: processor, logger: logger}
}

// RegisterRoutes регистрирует маршруты операций терминала
func (h *ATMHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/deposit", h.Deposit).Methods("POST")   // Пополнение счёта
	router.HandleFunc("/withdraw", h.Withdraw).Methods("POST") // Снятие средств
	router.HandleFunc("/transfer", h.Transfer).Methods("POST") // Перевод средств
	router.HandleFunc("/receipt", h.Receipt).Methods("POST")   // Отметка о печати чека
}

// Deposit обрабатывает запрос на пополнение счёта
func (h *ATMHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на пополнение")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.processor.Deposit(r.Context(), req.CardNumber, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Withdraw обрабатывает запрос на снятие средств
func (h *ATMHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req model.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на снятие")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.processor.Withdraw(r.Context(), req.CardNumber, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Transfer обрабатывает запрос на перевод средств
func (h *ATMHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос на перевод")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.processor.Transfer(r.Context(), req.CardNumber, req.Amount, req.ToAccountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Receipt отмечает запись журнала как напечатанную
func (h *ATMHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req model.ReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос отметки о печати")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.processor.MarkReceiptPrinted(r.Context(), req.TransactionID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
