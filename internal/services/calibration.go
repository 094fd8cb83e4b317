package services

import (
	"context"
	"io"
	"net/http"
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

type CalibrationServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.CalibrationDTO, uint64, error)
	FindByID(ctx context.Context, id uint64) (*dto.CalibrationDTO, error)
	Create(ctx context.Context, actorID uint64, payload dto.CreateCalibrationDTO) (*dto.CalibrationDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateCalibrationDTO) (*dto.CalibrationDTO, error)
	Delete(ctx context.Context, id uint64) error
	AttachCertificate(ctx context.Context, id uint64, file io.Reader, size int64, fileName string) (*dto.CalibrationDTO, error)
	RemoveCertificate(ctx context.Context, id uint64) (*dto.CalibrationDTO, error)
}

type CalibrationService struct {
	*BaseService
	txManager       repositories.TxManagerInterface
	calibrationRepo repositories.CalibrationRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	storage         filestorage.FileStorageInterface
	metrics         *DomainMetrics
	clock           Clock
	logger          *zap.Logger
}

func NewCalibrationService(
	base *BaseService,
	txManager repositories.TxManagerInterface,
	calibrationRepo repositories.CalibrationRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	storage filestorage.FileStorageInterface,
	metrics *DomainMetrics,
	clock Clock,
	logger *zap.Logger,
) CalibrationServiceInterface {
	return &CalibrationService{
		BaseService:     base,
		txManager:       txManager,
		calibrationRepo: calibrationRepo,
		equipmentRepo:   equipmentRepo,
		storage:         storage,
		metrics:         metrics,
		clock:           clock,
		logger:          logger,
	}
}

func (s *CalibrationService) GetAll(ctx context.Context, filter types.Filter) ([]dto.CalibrationDTO, uint64, error) {
	list, total, err := s.calibrationRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.CalibrationDTO, 0, len(list))
	for _, c := range list {
		result = append(result, calibrationToDTO(c, s.storage))
	}
	return result, total, nil
}

func (s *CalibrationService) FindByID(ctx context.Context, id uint64) (*dto.CalibrationDTO, error) {
	c, err := s.calibrationRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := calibrationToDTO(c, s.storage)
	return &res, nil
}

// Create записывает калибровку и пересчитывает даты оборудования в одной транзакции.
// Строка оборудования блокируется, чтобы параллельные калибровки не затёрли даты друг друга.
func (s *CalibrationService) Create(ctx context.Context, actorID uint64, payload dto.CreateCalibrationDTO) (*dto.CalibrationDTO, error) {
	c := entities.Calibration{
		EquipmentID:         payload.EquipmentID,
		CalibrationDate:     s.clock.Now(),
		CalibrationStandard: strings.TrimSpace(payload.CalibrationStandard),
		MeasurementPoint:    strings.TrimSpace(payload.MeasurementPoint),
		Results:             strings.TrimSpace(payload.Results),
		Notes:               payload.Notes,
	}
	if payload.CalibrationDate != nil {
		c.CalibrationDate = *payload.CalibrationDate
	}
	c.CalibratedBy = utils.ActorRef(actorID)
	if err := validateCalibrationRequired(c); err != nil {
		return nil, err
	}

	var newID uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, c.EquipmentID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewFieldError("equipment", msgUnknownEquip)
			}
			return err
		}

		newID, err = s.calibrationRepo.Create(ctx, tx, c)
		if err != nil {
			return err
		}

		if err := ScheduleCalibration(equipment, utils.DateOnly(c.CalibrationDate, s.clock.Location())); err != nil {
			return apperrors.NewHttpError(http.StatusInternalServerError, "Некорректный интервал калибровки оборудования", err, map[string]interface{}{"equipment_id": equipment.ID})
		}
		return s.equipmentRepo.UpdateCalibrationDates(ctx, tx, equipment.ID, equipment.LastCalibrationDate, equipment.NextCalibrationDate)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CalibrationsRecorded.Inc()
	}
	s.InvalidateDashboard(ctx)
	s.logger.Info("Калибровка записана", zap.Uint64("id", newID), zap.Uint64("equipment_id", c.EquipmentID))
	return s.FindByID(ctx, newID)
}

// Update не трогает даты оборудования: планировщик срабатывает только при создании.
func (s *CalibrationService) Update(ctx context.Context, id uint64, payload dto.UpdateCalibrationDTO) (*dto.CalibrationDTO, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		c, err := s.calibrationRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payload.EquipmentID.Valid && payload.EquipmentID.Uint64 != c.EquipmentID {
			return apperrors.NewFieldError("equipment", msgEquipImmutable)
		}
		if payload.CalibrationDate.Valid {
			c.CalibrationDate = payload.CalibrationDate.Time
		}
		if payload.CalibrationStandard.Valid {
			c.CalibrationStandard = strings.TrimSpace(payload.CalibrationStandard.String)
		}
		if payload.MeasurementPoint.Valid {
			c.MeasurementPoint = strings.TrimSpace(payload.MeasurementPoint.String)
		}
		if payload.Results.Valid {
			c.Results = strings.TrimSpace(payload.Results.String)
		}
		if payload.Notes.Valid {
			c.Notes = payload.Notes.String
		}
		if err := validateCalibrationRequired(*c); err != nil {
			return err
		}
		return s.calibrationRepo.Update(ctx, tx, *c)
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateDashboard(ctx)
	return s.FindByID(ctx, id)
}

func (s *CalibrationService) Delete(ctx context.Context, id uint64) error {
	c, err := s.calibrationRepo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.calibrationRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	if c.CertificateFile != nil {
		removeCertificates(ctx, s.storage, s.logger, *c.CertificateFile)
	}
	s.InvalidateDashboard(ctx)
	return nil
}

func (s *CalibrationService) AttachCertificate(ctx context.Context, id uint64, file io.Reader, size int64, fileName string) (*dto.CalibrationDTO, error) {
	c, err := s.calibrationRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	ref, err := s.storage.Save(ctx, file, size, fileName, constants.UploadPrefixCalibration)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сохранить сертификат", err, map[string]interface{}{"calibration_id": id})
	}
	if err := s.calibrationRepo.UpdateCertificate(ctx, nil, id, &ref); err != nil {
		removeCertificates(ctx, s.storage, s.logger, ref)
		return nil, err
	}
	if c.CertificateFile != nil {
		removeCertificates(ctx, s.storage, s.logger, *c.CertificateFile)
	}
	return s.FindByID(ctx, id)
}

func (s *CalibrationService) RemoveCertificate(ctx context.Context, id uint64) (*dto.CalibrationDTO, error) {
	c, err := s.calibrationRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if c.CertificateFile == nil {
		res := calibrationToDTO(c, s.storage)
		return &res, nil
	}
	if err := s.calibrationRepo.UpdateCertificate(ctx, nil, id, nil); err != nil {
		return nil, err
	}
	removeCertificates(ctx, s.storage, s.logger, *c.CertificateFile)
	return s.FindByID(ctx, id)
}

func validateCalibrationRequired(c entities.Calibration) error {
	fields := map[string]string{}
	if c.CalibrationStandard == "" {
		fields["calibration_standard"] = msgRequired
	}
	if c.MeasurementPoint == "" {
		fields["measurement_point"] = msgRequired
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}
