package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	"calibrify/pkg/constants"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/filestorage"
	"calibrify/pkg/types"
	"calibrify/pkg/utils"
)

const (
	msgRequired       = "Обязательное поле"
	msgSerialInUse    = "Оборудование с таким серийным номером уже существует"
	msgUnknownEquip   = "Оборудование не найдено"
	msgEquipImmutable = "Нельзя перенести запись на другое оборудование"
)

type EquipmentServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindByID(ctx context.Context, id uint64) (*dto.EquipmentDetailDTO, error)
	Create(ctx context.Context, actorID uint64, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDetailDTO, error)
	Delete(ctx context.Context, id uint64) error
}

type EquipmentService struct {
	*BaseService
	txManager       repositories.TxManagerInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	calibrationRepo repositories.CalibrationRepositoryInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	storage         filestorage.FileStorageInterface
	clock           Clock
	logger          *zap.Logger
}

func NewEquipmentService(
	base *BaseService,
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	calibrationRepo repositories.CalibrationRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	storage filestorage.FileStorageInterface,
	clock Clock,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		BaseService:     base,
		txManager:       txManager,
		equipmentRepo:   equipmentRepo,
		calibrationRepo: calibrationRepo,
		maintenanceRepo: maintenanceRepo,
		storage:         storage,
		clock:           clock,
		logger:          logger,
	}
}

func (s *EquipmentService) GetAll(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	list, total, err := s.equipmentRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	today := s.clock.Today()
	result := make([]dto.EquipmentDTO, 0, len(list))
	for _, e := range list {
		result = append(result, equipmentToDTO(e, today))
	}
	return result, total, nil
}

func (s *EquipmentService) FindByID(ctx context.Context, id uint64) (*dto.EquipmentDetailDTO, error) {
	e, err := s.equipmentRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, e)
}

// buildDetail - карточка с вложенными калибровками и ТО.
func (s *EquipmentService) buildDetail(ctx context.Context, e *entities.Equipment) (*dto.EquipmentDetailDTO, error) {
	calibrations, err := s.calibrationRepo.FindByEquipmentID(ctx, nil, e.ID)
	if err != nil {
		return nil, err
	}
	maintenance, err := s.maintenanceRepo.FindByEquipmentID(ctx, nil, e.ID)
	if err != nil {
		return nil, err
	}

	detail := &dto.EquipmentDetailDTO{
		EquipmentDTO:       equipmentToDTO(e, s.clock.Today()),
		Calibrations:       make([]dto.CalibrationDTO, 0, len(calibrations)),
		MaintenanceRecords: make([]dto.MaintenanceDTO, 0, len(maintenance)),
	}
	for _, c := range calibrations {
		detail.Calibrations = append(detail.Calibrations, calibrationToDTO(c, s.storage))
	}
	for _, m := range maintenance {
		detail.MaintenanceRecords = append(detail.MaintenanceRecords, maintenanceToDTO(m, s.storage))
	}
	return detail, nil
}

func (s *EquipmentService) Create(ctx context.Context, actorID uint64, payload dto.CreateEquipmentDTO) (*dto.EquipmentDetailDTO, error) {
	purchaseDate, err := utils.ParseDate(payload.PurchaseDate)
	if err != nil {
		return nil, apperrors.NewFieldError("purchase_date", "Ожидается дата в формате YYYY-MM-DD")
	}

	e := entities.Equipment{
		Name:                     strings.TrimSpace(payload.Name),
		SerialNumber:             strings.TrimSpace(payload.SerialNumber),
		Category:                 strings.TrimSpace(payload.Category),
		PurchaseDate:             purchaseDate,
		ModelNumber:              strings.TrimSpace(payload.ModelNumber),
		Manufacturer:             strings.TrimSpace(payload.Manufacturer),
		Location:                 strings.TrimSpace(payload.Location),
		CalibrationIntervalType:  constants.IntervalType(payload.CalibrationIntervalType),
		CalibrationIntervalValue: payload.CalibrationIntervalValue,
		Notes:                    payload.Notes,
		IsActive:                 true,
	}
	if payload.IsActive != nil {
		e.IsActive = *payload.IsActive
	}
	e.CreatedBy = utils.ActorRef(actorID)
	if err := validateEquipmentRequired(e); err != nil {
		return nil, err
	}

	var newID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.equipmentRepo.ExistsBySerialNumber(ctx, tx, e.SerialNumber, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewFieldError("serial_number", msgSerialInUse)
		}
		newID, err = s.equipmentRepo.Create(ctx, tx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Оборудование создано", zap.Uint64("id", newID), zap.String("serial_number", e.SerialNumber))
	s.InvalidateDashboard(ctx)
	return s.FindByID(ctx, newID)
}

// Update - частичное обновление. Даты калибровки не пересчитываются.
func (s *EquipmentService) Update(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDetailDTO, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		e, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		serialChanged := false
		if payload.Name.Valid {
			e.Name = strings.TrimSpace(payload.Name.String)
		}
		if payload.SerialNumber.Valid {
			serial := strings.TrimSpace(payload.SerialNumber.String)
			serialChanged = serial != e.SerialNumber
			e.SerialNumber = serial
		}
		if payload.Category.Valid {
			e.Category = strings.TrimSpace(payload.Category.String)
		}
		if payload.PurchaseDate.Valid {
			d, err := utils.ParseDate(payload.PurchaseDate.String)
			if err != nil {
				return apperrors.NewFieldError("purchase_date", "Ожидается дата в формате YYYY-MM-DD")
			}
			e.PurchaseDate = d
		}
		if payload.ModelNumber.Valid {
			e.ModelNumber = strings.TrimSpace(payload.ModelNumber.String)
		}
		if payload.Manufacturer.Valid {
			e.Manufacturer = strings.TrimSpace(payload.Manufacturer.String)
		}
		if payload.Location.Valid {
			e.Location = strings.TrimSpace(payload.Location.String)
		}
		if payload.CalibrationIntervalType.Valid {
			e.CalibrationIntervalType = constants.IntervalType(payload.CalibrationIntervalType.String)
		}
		if payload.CalibrationIntervalValue.Valid {
			e.CalibrationIntervalValue = payload.CalibrationIntervalValue.Int
		}
		if payload.Notes.Valid {
			e.Notes = payload.Notes.String
		}
		if payload.IsActive.Valid {
			e.IsActive = payload.IsActive.Bool
		}

		if err := validateEquipmentRequired(*e); err != nil {
			return err
		}
		if serialChanged {
			exists, err := s.equipmentRepo.ExistsBySerialNumber(ctx, tx, e.SerialNumber, id)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.NewFieldError("serial_number", msgSerialInUse)
			}
		}
		return s.equipmentRepo.Update(ctx, tx, *e)
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateDashboard(ctx)
	return s.FindByID(ctx, id)
}

// Delete удаляет оборудование вместе с калибровками и ТО.
// Файлы сертификатов удаляются после коммита, ошибки только логируются.
func (s *EquipmentService) Delete(ctx context.Context, id uint64) error {
	var refs []string
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		calibrations, err := s.calibrationRepo.FindByEquipmentID(ctx, tx, id)
		if err != nil {
			return err
		}
		maintenance, err := s.maintenanceRepo.FindByEquipmentID(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, c := range calibrations {
			if c.CertificateFile != nil {
				refs = append(refs, *c.CertificateFile)
			}
		}
		for _, m := range maintenance {
			if m.CertificateFile != nil {
				refs = append(refs, *m.CertificateFile)
			}
		}
		return s.equipmentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.removeFiles(ctx, refs...)
	s.InvalidateDashboard(ctx)
	s.logger.Info("Оборудование удалено", zap.Uint64("id", id), zap.Int("certificates", len(refs)))
	return nil
}

func (s *EquipmentService) removeFiles(ctx context.Context, refs ...string) {
	removeCertificates(ctx, s.storage, s.logger, refs...)
}

func removeCertificates(ctx context.Context, storage filestorage.FileStorageInterface, logger *zap.Logger, refs ...string) {
	if storage == nil {
		return
	}
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := storage.Delete(ctx, ref); err != nil {
			logger.Warn("Не удалось удалить файл сертификата", zap.String("ref", ref), zap.Error(err))
		}
	}
}

// validateEquipmentRequired - пустые строки после trim недопустимы.
func validateEquipmentRequired(e entities.Equipment) error {
	fields := map[string]string{}
	check := func(name, value string) {
		if value == "" {
			fields[name] = msgRequired
		}
	}
	check("name", e.Name)
	check("serial_number", e.SerialNumber)
	check("category", e.Category)
	check("model_number", e.ModelNumber)
	check("manufacturer", e.Manufacturer)
	check("location", e.Location)

	if _, err := IntervalDays(e.CalibrationIntervalType, e.CalibrationIntervalValue); err != nil {
		if !e.CalibrationIntervalType.IsValid() {
			fields["calibration_interval_type"] = "Недопустимое значение"
		} else {
			fields["calibration_interval_value"] = "Значение должно быть больше нуля"
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
