package entities

import (
	"time"

	"calibrify/pkg/constants"
	"calibrify/pkg/types"
)

type Equipment struct {
	ID                       uint64                 `json:"id"`
	Name                     string                 `json:"name"`
	SerialNumber             string                 `json:"serial_number"`
	Category                 string                 `json:"category"`
	PurchaseDate             time.Time              `json:"purchase_date"`
	ModelNumber              string                 `json:"model_number"`
	Manufacturer             string                 `json:"manufacturer"`
	Location                 string                 `json:"location"`
	CalibrationIntervalType  constants.IntervalType `json:"calibration_interval_type"`
	CalibrationIntervalValue int                    `json:"calibration_interval_value"`
	Notes                    string                 `json:"notes"`
	IsActive                 bool                   `json:"is_active"`
	CreatedBy                *uint64                `json:"created_by"`

	// Производные даты, пишет только планировщик калибровок
	LastCalibrationDate *time.Time `json:"last_calibration_date"`
	NextCalibrationDate *time.Time `json:"next_calibration_date"`

	types.BaseEntity // CreatedAt, UpdatedAt

	// Поля для связанных данных (не колонки в таблице)
	Creator            *UserShort `db:"-"`
	PendingMaintenance int        `db:"-"`
}
