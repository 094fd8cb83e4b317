package constants

//============== ИНТЕРВАЛЫ КАЛИБРОВКИ ==============

// IntervalType - единица интервала калибровки оборудования.
type IntervalType string

const (
	IntervalDays   IntervalType = "days"
	IntervalWeeks  IntervalType = "weeks"
	IntervalMonths IntervalType = "months"
	IntervalYears  IntervalType = "years"
)

// IntervalTypes - допустимые значения calibration_interval_type.
var IntervalTypes = []IntervalType{IntervalDays, IntervalWeeks, IntervalMonths, IntervalYears}

// DaysPerUnit - номинальное число дней на единицу интервала (без учёта календаря).
var DaysPerUnit = map[IntervalType]int{
	IntervalDays:   1,
	IntervalWeeks:  7,
	IntervalMonths: 30,
	IntervalYears:  365,
}

func (t IntervalType) String() string {
	return string(t)
}

func (t IntervalType) IsValid() bool {
	_, ok := DaysPerUnit[t]
	return ok
}

//============== ДАШБОРД ==============

const (
	// ResultCompleted - значение results завершённой калибровки (точное совпадение).
	ResultCompleted = "Completed"

	StatusPending   = "Pending"
	StatusCompleted = "Completed"

	EventTypeCalibration = "Calibration"
	EventTypeMaintenance = "Maintenance"

	IconCalibration = "ri-calendar-check-line"
	IconMaintenance = "ri-tools-line"

	// DueWindowDays - горизонт "ближайших" событий, включительно.
	DueWindowDays = 30
	// FeedLimit - размер ленты событий и активности.
	FeedLimit = 5
)

//============== ФАЙЛЫ ==============

const (
	UploadPrefixCalibration = "calibration_certificates"
	UploadPrefixMaintenance = "maintenance_certificates"
)

// AllowedCertificateMimeTypes - форматы сертификатов калибровки и актов ТО.
var AllowedCertificateMimeTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"application/zip",
}

// AllowedImportMimeTypes - .xlsx определяется по содержимому как zip-архив.
var AllowedImportMimeTypes = []string{
	"application/zip",
}

// ImportFileExtension - единственный формат импорта оборудования.
const ImportFileExtension = ".xlsx"

//============== CACHE KEYS ==============

const (
	// Формат: login_attempts:<username> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Формат: lockout:<username> -> "locked"
	CacheKeyLockout = "lockout:%s"

	// Формат: dashboard:full:<YYYY-MM-DD> -> JSON
	CacheKeyDashboard = "dashboard:full:%s"

	// Ключ пробы кеша в /health.
	CacheKeyHealthCheck = "health_check"
)

// DateLayout - формат дат без времени в API.
const DateLayout = "2006-01-02"
