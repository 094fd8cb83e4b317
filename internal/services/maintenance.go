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

type MaintenanceServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.MaintenanceDTO, uint64, error)
	FindByID(ctx context.Context, id uint64) (*dto.MaintenanceDTO, error)
	Create(ctx context.Context, actorID uint64, payload dto.CreateMaintenanceDTO) (*dto.MaintenanceDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateMaintenanceDTO) (*dto.MaintenanceDTO, error)
	Delete(ctx context.Context, id uint64) error
	AttachCertificate(ctx context.Context, id uint64, file io.Reader, size int64, fileName string) (*dto.MaintenanceDTO, error)
	RemoveCertificate(ctx context.Context, id uint64) (*dto.MaintenanceDTO, error)
}

type MaintenanceService struct {
	*BaseService
	txManager       repositories.TxManagerInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	storage         filestorage.FileStorageInterface
	metrics         *DomainMetrics
	clock           Clock
	logger          *zap.Logger
}

func NewMaintenanceService(
	base *BaseService,
	txManager repositories.TxManagerInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	storage filestorage.FileStorageInterface,
	metrics *DomainMetrics,
	clock Clock,
	logger *zap.Logger,
) MaintenanceServiceInterface {
	return &MaintenanceService{
		BaseService:     base,
		txManager:       txManager,
		maintenanceRepo: maintenanceRepo,
		equipmentRepo:   equipmentRepo,
		storage:         storage,
		metrics:         metrics,
		clock:           clock,
		logger:          logger,
	}
}

func (s *MaintenanceService) GetAll(ctx context.Context, filter types.Filter) ([]dto.MaintenanceDTO, uint64, error) {
	list, total, err := s.maintenanceRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.MaintenanceDTO, 0, len(list))
	for _, m := range list {
		result = append(result, maintenanceToDTO(m, s.storage))
	}
	return result, total, nil
}

func (s *MaintenanceService) FindByID(ctx context.Context, id uint64) (*dto.MaintenanceDTO, error) {
	m, err := s.maintenanceRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	res := maintenanceToDTO(m, s.storage)
	return &res, nil
}

func (s *MaintenanceService) Create(ctx context.Context, actorID uint64, payload dto.CreateMaintenanceDTO) (*dto.MaintenanceDTO, error) {
	m := entities.Maintenance{
		EquipmentID:          payload.EquipmentID,
		MaintenanceDate:      s.clock.Now(),
		ServiceProvider:      strings.TrimSpace(payload.ServiceProvider),
		Description:          strings.TrimSpace(payload.Description),
		ReturnedToProduction: payload.ReturnedToProduction,
		Notes:                payload.Notes,
	}
	if payload.MaintenanceDate != nil {
		m.MaintenanceDate = *payload.MaintenanceDate
	}
	m.PerformedBy = utils.ActorRef(actorID)
	if err := validateMaintenanceRequired(m); err != nil {
		return nil, err
	}

	var newID uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.equipmentRepo.FindByID(ctx, tx, m.EquipmentID); err != nil {
			if isNotFound(err) {
				return apperrors.NewFieldError("equipment", msgUnknownEquip)
			}
			return err
		}
		var err error
		newID, err = s.maintenanceRepo.Create(ctx, tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MaintenanceRecorded.Inc()
	}
	s.InvalidateDashboard(ctx)
	s.logger.Info("Запись ТО создана", zap.Uint64("id", newID), zap.Uint64("equipment_id", m.EquipmentID))
	return s.FindByID(ctx, newID)
}

func (s *MaintenanceService) Update(ctx context.Context, id uint64, payload dto.UpdateMaintenanceDTO) (*dto.MaintenanceDTO, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		m, err := s.maintenanceRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payload.EquipmentID.Valid && payload.EquipmentID.Uint64 != m.EquipmentID {
			return apperrors.NewFieldError("equipment", msgEquipImmutable)
		}
		if payload.MaintenanceDate.Valid {
			m.MaintenanceDate = payload.MaintenanceDate.Time
		}
		if payload.ServiceProvider.Valid {
			m.ServiceProvider = strings.TrimSpace(payload.ServiceProvider.String)
		}
		if payload.Description.Valid {
			m.Description = strings.TrimSpace(payload.Description.String)
		}
		if payload.ReturnedToProduction.Valid {
			m.ReturnedToProduction = payload.ReturnedToProduction.Bool
		}
		if payload.Notes.Valid {
			m.Notes = payload.Notes.String
		}
		if err := validateMaintenanceRequired(*m); err != nil {
			return err
		}
		return s.maintenanceRepo.Update(ctx, tx, *m)
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateDashboard(ctx)
	return s.FindByID(ctx, id)
}

func (s *MaintenanceService) Delete(ctx context.Context, id uint64) error {
	m, err := s.maintenanceRepo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if err := s.maintenanceRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	if m.CertificateFile != nil {
		removeCertificates(ctx, s.storage, s.logger, *m.CertificateFile)
	}
	s.InvalidateDashboard(ctx)
	return nil
}

func (s *MaintenanceService) AttachCertificate(ctx context.Context, id uint64, file io.Reader, size int64, fileName string) (*dto.MaintenanceDTO, error) {
	m, err := s.maintenanceRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	ref, err := s.storage.Save(ctx, file, size, fileName, constants.UploadPrefixMaintenance)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сохранить файл", err, map[string]interface{}{"maintenance_id": id})
	}
	if err := s.maintenanceRepo.UpdateCertificate(ctx, nil, id, &ref); err != nil {
		removeCertificates(ctx, s.storage, s.logger, ref)
		return nil, err
	}
	if m.CertificateFile != nil {
		removeCertificates(ctx, s.storage, s.logger, *m.CertificateFile)
	}
	return s.FindByID(ctx, id)
}

func (s *MaintenanceService) RemoveCertificate(ctx context.Context, id uint64) (*dto.MaintenanceDTO, error) {
	m, err := s.maintenanceRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if m.CertificateFile == nil {
		res := maintenanceToDTO(m, s.storage)
		return &res, nil
	}
	if err := s.maintenanceRepo.UpdateCertificate(ctx, nil, id, nil); err != nil {
		return nil, err
	}
	removeCertificates(ctx, s.storage, s.logger, *m.CertificateFile)
	return s.FindByID(ctx, id)
}

func validateMaintenanceRequired(m entities.Maintenance) error {
	fields := map[string]string{}
	if m.ServiceProvider == "" {
		fields["service_provider"] = msgRequired
	}
	if m.Description == "" {
		fields["description"] = msgRequired
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}
