package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"atm-api/internal/model"
	"atm-api/internal/service"
)

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	authService *service.AuthService // Сервис аутентификации
	logger      *logrus.Logger       // Логгер
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes регистрирует маршруты аутентификации
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/atm", h.ATMLogin).Methods("POST")     // Вход держателя карты
	router.HandleFunc("/admin", h.AdminLogin).Methods("POST") // Вход администратора
}

// ATMLogin обрабатывает вход по карте и PIN
func (h *AuthHandler) ATMLogin(w http.ResponseWriter, r *http.Request) {
	var req model.ATMLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос входа по карте")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	result, err := h.authService.AuthenticateUser(r.Context(), req.CardNumber, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AdminLogin обрабатывает вход администратора
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req model.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Не удалось декодировать запрос входа администратора")
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	admin, token, err := h.authService.AuthenticateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"admin": admin,
		"token": token,
	})
}
