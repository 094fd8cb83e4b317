package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateMaintenanceDTO struct {
	EquipmentID          uint64     `json:"equipment" validate:"required"`
	MaintenanceDate      *time.Time `json:"maintenance_date"`
	ServiceProvider      string     `json:"service_provider" validate:"required,max=200"`
	Description          string     `json:"description" validate:"required"`
	ReturnedToProduction bool       `json:"returned_to_production"`
	Notes                string     `json:"notes"`
}

type UpdateMaintenanceDTO struct {
	EquipmentID          null.Uint64 `json:"equipment"`
	MaintenanceDate      null.Time   `json:"maintenance_date"`
	ServiceProvider      null.String `json:"service_provider" validate:"omitempty,max=200"`
	Description          null.String `json:"description"`
	ReturnedToProduction null.Bool   `json:"returned_to_production"`
	Notes                null.String `json:"notes"`
}

type MaintenanceDTO struct {
	ID                   uint64             `json:"id"`
	Equipment            uint64             `json:"equipment"`
	EquipmentDetail      *ShortEquipmentDTO `json:"equipment_detail,omitempty"`
	MaintenanceDate      time.Time          `json:"maintenance_date"`
	PerformedBy          *ShortUserDTO      `json:"performed_by"`
	ServiceProvider      string             `json:"service_provider"`
	Description          string             `json:"description"`
	ReturnedToProduction bool               `json:"returned_to_production"`
	Notes                string             `json:"notes"`
	CertificateFile      *string            `json:"certificate_file"`
	CertificateURL       *string            `json:"certificate_url"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
