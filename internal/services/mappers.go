package services

import (
	"time"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/pkg/constants"
	"calibrify/pkg/filestorage"
	"calibrify/pkg/utils"
)

func shortUserToDTO(u *entities.UserShort) *dto.ShortUserDTO {
	if u == nil {
		return nil
	}
	return &dto.ShortUserDTO{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func shortEquipmentToDTO(e *entities.EquipmentShort) *dto.ShortEquipmentDTO {
	if e == nil {
		return nil
	}
	return &dto.ShortEquipmentDTO{ID: e.ID, Name: e.Name, SerialNumber: e.SerialNumber}
}

// pendingCalibrations - 1, если следующая калибровка сегодня или уже просрочена.
func pendingCalibrations(e *entities.Equipment, today time.Time) int {
	if e.NextCalibrationDate != nil && !e.NextCalibrationDate.After(today) {
		return 1
	}
	return 0
}

func equipmentToDTO(e *entities.Equipment, today time.Time) dto.EquipmentDTO {
	return dto.EquipmentDTO{
		ID:                       e.ID,
		Name:                     e.Name,
		SerialNumber:             e.SerialNumber,
		Category:                 e.Category,
		PurchaseDate:             e.PurchaseDate.Format(constants.DateLayout),
		ModelNumber:              e.ModelNumber,
		Manufacturer:             e.Manufacturer,
		Location:                 e.Location,
		CalibrationIntervalType:  e.CalibrationIntervalType.String(),
		CalibrationIntervalValue: e.CalibrationIntervalValue,
		Notes:                    e.Notes,
		IsActive:                 e.IsActive,
		CreatedBy:                shortUserToDTO(e.Creator),
		LastCalibrationDate:      utils.FormatDatePtr(e.LastCalibrationDate),
		NextCalibrationDate:      utils.FormatDatePtr(e.NextCalibrationDate),
		PendingCalibrations:      pendingCalibrations(e, today),
		PendingMaintenance:       e.PendingMaintenance,
		CreatedAt:                e.CreatedAt,
		UpdatedAt:                e.UpdatedAt,
	}
}

func certificateURL(storage filestorage.FileStorageInterface, ref *string) *string {
	if ref == nil || *ref == "" || storage == nil {
		return nil
	}
	return utils.ToPtr(storage.URL(*ref))
}

func calibrationToDTO(c *entities.Calibration, storage filestorage.FileStorageInterface) dto.CalibrationDTO {
	return dto.CalibrationDTO{
		ID:                  c.ID,
		Equipment:           c.EquipmentID,
		EquipmentDetail:     shortEquipmentToDTO(c.Equipment),
		CalibrationDate:     c.CalibrationDate,
		CalibratedBy:        shortUserToDTO(c.Calibrator),
		CalibrationStandard: c.CalibrationStandard,
		MeasurementPoint:    c.MeasurementPoint,
		Results:             c.Results,
		Notes:               c.Notes,
		CertificateFile:     c.CertificateFile,
		CertificateURL:      certificateURL(storage, c.CertificateFile),
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func maintenanceToDTO(m *entities.Maintenance, storage filestorage.FileStorageInterface) dto.MaintenanceDTO {
	return dto.MaintenanceDTO{
		ID:                   m.ID,
		Equipment:            m.EquipmentID,
		EquipmentDetail:      shortEquipmentToDTO(m.Equipment),
		MaintenanceDate:      m.MaintenanceDate,
		PerformedBy:          shortUserToDTO(m.Performer),
		ServiceProvider:      m.ServiceProvider,
		Description:          m.Description,
		ReturnedToProduction: m.ReturnedToProduction,
		Notes:                m.Notes,
		CertificateFile:      m.CertificateFile,
		CertificateURL:       certificateURL(storage, m.CertificateFile),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func userToDTO(u *entities.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
