package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateCalibrationDTO struct {
	EquipmentID         uint64     `json:"equipment" validate:"required"`
	CalibrationDate     *time.Time `json:"calibration_date"`
	CalibrationStandard string     `json:"calibration_standard" validate:"required,max=200"`
	MeasurementPoint    string     `json:"measurement_point" validate:"required,max=200"`
	Results             string     `json:"results"`
	Notes               string     `json:"notes"`
}

// UpdateCalibrationDTO - equipment можно передать, но только тот же самый.
type UpdateCalibrationDTO struct {
	EquipmentID         null.Uint64 `json:"equipment"`
	CalibrationDate     null.Time   `json:"calibration_date"`
	CalibrationStandard null.String `json:"calibration_standard" validate:"omitempty,max=200"`
	MeasurementPoint    null.String `json:"measurement_point" validate:"omitempty,max=200"`
	Results             null.String `json:"results"`
	Notes               null.String `json:"notes"`
}

type CalibrationDTO struct {
	ID                  uint64             `json:"id"`
	Equipment           uint64             `json:"equipment"`
	EquipmentDetail     *ShortEquipmentDTO `json:"equipment_detail,omitempty"`
	CalibrationDate     time.Time          `json:"calibration_date"`
	CalibratedBy        *ShortUserDTO      `json:"calibrated_by"`
	CalibrationStandard string             `json:"calibration_standard"`
	MeasurementPoint    string             `json:"measurement_point"`
	Results             string             `json:"results"`
	Notes               string             `json:"notes"`
	CertificateFile     *string            `json:"certificate_file"`
	CertificateURL      *string            `json:"certificate_url"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}
