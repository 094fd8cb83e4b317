package entities

import (
	"time"

	"calibrify/pkg/types"
)

type Calibration struct {
	ID                  uint64    `json:"id"`
	EquipmentID         uint64    `json:"equipment_id"`
	CalibrationDate     time.Time `json:"calibration_date"`
	CalibratedBy        *uint64   `json:"calibrated_by"`
	CalibrationStandard string    `json:"calibration_standard"`
	MeasurementPoint    string    `json:"measurement_point"`
	Results             string    `json:"results"`
	Notes               string    `json:"notes"`
	CertificateFile     *string   `json:"certificate_file"`

	types.BaseEntity

	Equipment  *EquipmentShort `db:"-"`
	Calibrator *UserShort      `db:"-"`
}
