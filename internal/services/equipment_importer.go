package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	"calibrify/pkg/constants"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/utils"
)

const maxImportRows = 5000

// колонки файла импорта
const (
	colName          = "name"
	colSerial        = "serial_number"
	colCategory      = "category"
	colPurchaseDate  = "purchase_date"
	colModel         = "model_number"
	colManufacturer  = "manufacturer"
	colLocation      = "location"
	colIntervalType  = "calibration_interval_type"
	colIntervalValue = "calibration_interval_value"
	colInterval      = "interval"
	colNotes         = "notes"
	colIsActive      = "is_active"
)

var errImportDuplicate = errors.New("серийный номер уже существует")

type EquipmentImportServiceInterface interface {
	Import(ctx context.Context, actorID uint64, file io.Reader) (*dto.EquipmentImportResultDTO, error)
}

type EquipmentImportService struct {
	*BaseService
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	logger        *zap.Logger
}

func NewEquipmentImportService(
	base *BaseService,
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	logger *zap.Logger,
) EquipmentImportServiceInterface {
	return &EquipmentImportService{
		BaseService:   base,
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		logger:        logger,
	}
}

// Import читает первый лист со строкой заголовков (Name + Serial number) и создаёт
// оборудование построчно. Существующие серийные номера пропускаются, ошибочные строки
// попадают в отчёт и не мешают остальным.
func (s *EquipmentImportService) Import(ctx context.Context, actorID uint64, file io.Reader) (*dto.EquipmentImportResultDTO, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewFieldError("file", "Не удалось прочитать .xlsx файл")
	}
	defer f.Close()

	rows, headerRow, cols := findImportHeader(f)
	if headerRow < 0 {
		return nil, apperrors.NewFieldError("file", "Не найдена строка заголовков: нужны колонки Name и Serial number")
	}
	if len(rows)-headerRow-1 > maxImportRows {
		return nil, apperrors.NewFieldError("file", fmt.Sprintf("Слишком много строк, максимум %d", maxImportRows))
	}

	result := &dto.EquipmentImportResultDTO{Errors: []dto.EquipmentImportErrorDTO{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1
		if isBlankRow(row) || isSummaryRow(row) {
			continue
		}

		e, fields := rowToEquipment(row, cols)
		if len(fields) > 0 {
			result.Failed++
			result.Errors = append(result.Errors, dto.EquipmentImportErrorDTO{Row: lineNum, Message: "Ошибка валидации", Fields: fields})
			continue
		}
		e.CreatedBy = utils.ActorRef(actorID)

		err := s.createRow(ctx, e)
		var httpErr *apperrors.HttpError
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, errImportDuplicate):
			result.Skipped++
		case errors.As(err, &httpErr) && httpErr.Code < 500:
			result.Failed++
			rowErr := dto.EquipmentImportErrorDTO{Row: lineNum, Message: httpErr.Message}
			if details, ok := httpErr.Details.(map[string]string); ok {
				rowErr.Fields = details
			}
			result.Errors = append(result.Errors, rowErr)
		default:
			s.logger.Error("Импорт оборудования прерван", zap.Int("row", lineNum), zap.Error(err))
			return nil, err
		}
	}

	if result.Created > 0 {
		s.InvalidateDashboard(ctx)
	}
	s.logger.Info("Импорт оборудования завершён",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Uint64("actor_id", actorID),
	)
	return result, nil
}

func (s *EquipmentImportService) createRow(ctx context.Context, e entities.Equipment) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.equipmentRepo.ExistsBySerialNumber(ctx, tx, e.SerialNumber, 0)
		if err != nil {
			return err
		}
		if exists {
			return errImportDuplicate
		}
		_, err = s.equipmentRepo.Create(ctx, tx, e)
		return err
	})
}

// findImportHeader ищет на листах строку, где есть колонки имени и серийного номера.
// Значения читаются без форматирования: даты приходят серийными числами Excel.
func findImportHeader(f *excelize.File) ([][]string, int, map[string]int) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			cols := mapImportColumns(row)
			_, hasName := cols[colName]
			_, hasSerial := cols[colSerial]
			if hasName && hasSerial {
				return rows, rIdx, cols
			}
		}
	}
	return nil, -1, nil
}

func mapImportColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for idx, raw := range header {
		key := importColumnKey(raw)
		if key == "" {
			continue
		}
		if _, seen := cols[key]; !seen {
			cols[key] = idx
		}
	}
	return cols
}

// importColumnKey понимает как заголовки выгрузки ("Serial number"), так и имена полей API.
func importColumnKey(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, "_", " ")
	switch {
	case h == "":
		return ""
	case strings.Contains(h, "serial"):
		return colSerial
	case strings.Contains(h, "model"):
		return colModel
	case strings.Contains(h, "manufacturer"):
		return colManufacturer
	case strings.Contains(h, "category"):
		return colCategory
	case strings.Contains(h, "location"):
		return colLocation
	case strings.Contains(h, "purchase"):
		return colPurchaseDate
	case strings.Contains(h, "interval") && (strings.Contains(h, "type") || strings.Contains(h, "unit")):
		return colIntervalType
	case strings.Contains(h, "interval") && strings.Contains(h, "value"):
		return colIntervalValue
	case strings.Contains(h, "interval"):
		return colInterval
	case strings.Contains(h, "note"):
		return colNotes
	case strings.Contains(h, "active"):
		return colIsActive
	case h == "name" || h == "equipment" || h == "equipment name":
		return colName
	}
	return ""
}

func rowToEquipment(row []string, cols map[string]int) (entities.Equipment, map[string]string) {
	get := func(key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	fields := map[string]string{}
	e := entities.Equipment{
		Name:         get(colName),
		SerialNumber: get(colSerial),
		Category:     get(colCategory),
		ModelNumber:  get(colModel),
		Manufacturer: get(colManufacturer),
		Location:     get(colLocation),
		Notes:        get(colNotes),
		IsActive:     true,
	}

	if raw := get(colPurchaseDate); raw == "" {
		fields[colPurchaseDate] = msgRequired
	} else if d, err := parseImportDate(raw); err != nil {
		fields[colPurchaseDate] = "Ожидается дата в формате YYYY-MM-DD"
	} else {
		e.PurchaseDate = d
	}

	intervalType, intervalValue := get(colIntervalType), get(colIntervalValue)
	if combined := get(colInterval); combined != "" && intervalType == "" && intervalValue == "" {
		intervalValue, intervalType = splitInterval(combined)
	}
	e.CalibrationIntervalType = normalizeIntervalType(intervalType)
	if v, err := parseImportInt(intervalValue); err == nil {
		e.CalibrationIntervalValue = v
	}

	if raw := get(colIsActive); raw != "" {
		active, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			fields[colIsActive] = "Ожидается true или false"
		} else {
			e.IsActive = active
		}
	}

	var httpErr *apperrors.HttpError
	if err := validateEquipmentRequired(e); errors.As(err, &httpErr) {
		if details, ok := httpErr.Details.(map[string]string); ok {
			for k, v := range details {
				fields[k] = v
			}
		}
	}
	return e, fields
}

// parseImportDate принимает YYYY-MM-DD или серийный номер даты Excel.
func parseImportDate(raw string) (time.Time, error) {
	if d, err := utils.ParseDate(raw); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, err
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return utils.DateOnly(t, time.UTC), nil
}

func parseImportInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("не целое число: %q", raw)
	}
	return int(f), nil
}

// splitInterval разбирает "6 months" из колонки Interval выгрузки.
func splitInterval(s string) (value, unit string) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// normalizeIntervalType: "Month" -> "months".
func normalizeIntervalType(s string) constants.IntervalType {
	t := strings.ToLower(strings.TrimSpace(s))
	if t != "" && !strings.HasSuffix(t, "s") {
		t += "s"
	}
	return constants.IntervalType(t)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isSummaryRow - итоговые строки в конце таблицы.
func isSummaryRow(row []string) bool {
	for _, cell := range row {
		c := strings.ToLower(strings.TrimSpace(cell))
		if c == "" {
			continue
		}
		return strings.HasPrefix(c, "total") || strings.HasPrefix(c, "итого")
	}
	return false
}
