package model

import "errors"

// Доменные ошибки. Бизнес-сбои всегда возвращаются вызывающему как значения,
// HTTP-слой сопоставляет их с кодами ответов.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateCard     = errors.New("card number already exists")
	ErrDuplicateAccount  = errors.New("account number already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
	ErrAuthFailed        = errors.New("invalid credentials")
	ErrCardLocked        = errors.New("card temporarily locked")
	ErrPersistence       = errors.New("failed to persist state")
)
