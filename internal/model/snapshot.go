package model

import "time"

// SchemaVersion — версия формата снимка; в исходной схеме поля не было,
// добавлено для будущих миграций.
const SchemaVersion = 1

type SystemInfo struct {
	Name              string     `json:"name"`
	Version           string     `json:"version"`
	SchemaVersion     int        `json:"schema_version"`
	TotalTransactions int        `json:"total_transactions"`
	LastUpdated       time.Time  `json:"last_updated"`
	LastExport        *time.Time `json:"last_export,omitempty"`
}

// Snapshot — полное сериализуемое состояние системы. Перезаписывается
// целиком после каждой мутирующей операции.
type Snapshot struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Admins       []AdminUser   `json:"admins"`
	SystemInfo   SystemInfo    `json:"system_info"`
}
