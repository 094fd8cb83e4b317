package entities

import "time"

// CalibrationFeedRow - кандидат в ленты дашборда из таблицы calibrations.
type CalibrationFeedRow struct {
	ID                    uint64    `db:"id"`
	EquipmentID           uint64    `db:"equipment_id"`
	EquipmentName         string    `db:"equipment_name"`
	EquipmentSerialNumber string    `db:"equipment_serial_number"`
	CalibrationDate       time.Time `db:"calibration_date"`
	Results               string    `db:"results"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// MaintenanceFeedRow - кандидат в ленты дашборда из таблицы maintenance.
type MaintenanceFeedRow struct {
	ID                    uint64    `db:"id"`
	EquipmentID           uint64    `db:"equipment_id"`
	EquipmentName         string    `db:"equipment_name"`
	EquipmentSerialNumber string    `db:"equipment_serial_number"`
	MaintenanceDate       time.Time `db:"maintenance_date"`
	ReturnedToProduction  bool      `db:"returned_to_production"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// ScheduleReportRow - строка выгрузки графика калибровок.
type ScheduleReportRow struct {
	ID                       uint64     `db:"id"`
	Name                     string     `db:"name"`
	SerialNumber             string     `db:"serial_number"`
	Category                 string     `db:"category"`
	Location                 string     `db:"location"`
	CalibrationIntervalType  string     `db:"calibration_interval_type"`
	CalibrationIntervalValue int        `db:"calibration_interval_value"`
	LastCalibrationDate      *time.Time `db:"last_calibration_date"`
	NextCalibrationDate      *time.Time `db:"next_calibration_date"`
}
