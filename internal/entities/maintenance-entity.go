package entities

import (
	"time"

	"calibrify/pkg/types"
)

type Maintenance struct {
	ID                   uint64    `json:"id"`
	EquipmentID          uint64    `json:"equipment_id"`
	MaintenanceDate      time.Time `json:"maintenance_date"`
	PerformedBy          *uint64   `json:"performed_by"`
	ServiceProvider      string    `json:"service_provider"`
	Description          string    `json:"description"`
	ReturnedToProduction bool      `json:"returned_to_production"`
	Notes                string    `json:"notes"`
	CertificateFile      *string   `json:"certificate_file"`

	types.BaseEntity

	Equipment *EquipmentShort `db:"-"`
	Performer *UserShort      `db:"-"`
}
