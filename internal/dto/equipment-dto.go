package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateEquipmentDTO struct {
	Name                     string `json:"name" validate:"required,max=200"`
	SerialNumber             string `json:"serial_number" validate:"required,max=100"`
	Category                 string `json:"category" validate:"required,max=100"`
	PurchaseDate             string `json:"purchase_date" validate:"required,date_only"`
	ModelNumber              string `json:"model_number" validate:"required,max=100"`
	Manufacturer             string `json:"manufacturer" validate:"required,max=200"`
	Location                 string `json:"location" validate:"required,max=200"`
	CalibrationIntervalType  string `json:"calibration_interval_type" validate:"required,interval_type"`
	CalibrationIntervalValue int    `json:"calibration_interval_value" validate:"required,min=1"`
	Notes                    string `json:"notes"`
	IsActive                 *bool  `json:"is_active"`
}

// UpdateEquipmentDTO - частичное обновление. last/next_calibration_date и created_by не принимаются.
type UpdateEquipmentDTO struct {
	Name                     null.String `json:"name" validate:"omitempty,max=200"`
	SerialNumber             null.String `json:"serial_number" validate:"omitempty,max=100"`
	Category                 null.String `json:"category" validate:"omitempty,max=100"`
	PurchaseDate             null.String `json:"purchase_date" validate:"omitempty,date_only"`
	ModelNumber              null.String `json:"model_number" validate:"omitempty,max=100"`
	Manufacturer             null.String `json:"manufacturer" validate:"omitempty,max=200"`
	Location                 null.String `json:"location" validate:"omitempty,max=200"`
	CalibrationIntervalType  null.String `json:"calibration_interval_type" validate:"omitempty,interval_type"`
	CalibrationIntervalValue null.Int    `json:"calibration_interval_value" validate:"omitempty,min=1"`
	Notes                    null.String `json:"notes"`
	IsActive                 null.Bool   `json:"is_active"`
}

type ShortUserDTO struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ShortEquipmentDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
}

type EquipmentDTO struct {
	ID                       uint64        `json:"id"`
	Name                     string        `json:"name"`
	SerialNumber             string        `json:"serial_number"`
	Category                 string        `json:"category"`
	PurchaseDate             string        `json:"purchase_date"`
	ModelNumber              string        `json:"model_number"`
	Manufacturer             string        `json:"manufacturer"`
	Location                 string        `json:"location"`
	CalibrationIntervalType  string        `json:"calibration_interval_type"`
	CalibrationIntervalValue int           `json:"calibration_interval_value"`
	Notes                    string        `json:"notes"`
	IsActive                 bool          `json:"is_active"`
	CreatedBy                *ShortUserDTO `json:"created_by"`
	LastCalibrationDate      *string       `json:"last_calibration_date"`
	NextCalibrationDate      *string       `json:"next_calibration_date"`
	PendingCalibrations      int           `json:"pending_calibrations"`
	PendingMaintenance       int           `json:"pending_maintenance"`
	CreatedAt                time.Time     `json:"created_at"`
	UpdatedAt                time.Time     `json:"updated_at"`
}

// EquipmentDetailDTO - карточка оборудования с историей калибровок и ТО.
type EquipmentDetailDTO struct {
	EquipmentDTO
	Calibrations       []CalibrationDTO `json:"calibrations"`
	MaintenanceRecords []MaintenanceDTO `json:"maintenance_records"`
}

type EquipmentSummaryDTO struct {
	TotalEquipment      uint64 `json:"total_equipment"`
	PendingCalibrations uint64 `json:"pending_calibrations"`
	PendingMaintenance  uint64 `json:"pending_maintenance"`
	OverdueItems        uint64 `json:"overdue_items"`
}

// EquipmentImportResultDTO - итог импорта оборудования из .xlsx.
type EquipmentImportResultDTO struct {
	Created int                       `json:"created"`
	Skipped int                       `json:"skipped"`
	Failed  int                       `json:"failed"`
	Errors  []EquipmentImportErrorDTO `json:"errors"`
}

// EquipmentImportErrorDTO - ошибка строки; Row считается с 1, как в Excel.
type EquipmentImportErrorDTO struct {
	Row     int               `json:"row"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
