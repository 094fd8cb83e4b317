package entities

import "calibrify/pkg/types"

type User struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	IsStaff   bool   `json:"is_staff"`
	IsActive  bool   `json:"is_active"`

	types.BaseEntity
}

// UserShort - пользователь в составе другой записи (created_by, calibrated_by, performed_by).
type UserShort struct {
	ID        uint64 `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

// EquipmentShort - оборудование в составе калибровки/ТО и событий дашборда.
type EquipmentShort struct {
	ID           uint64 `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	SerialNumber string `json:"serial_number" db:"serial_number"`
}
