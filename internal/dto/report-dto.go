package dto

type ScheduleReportItemDTO struct {
	ID                  uint64  `json:"id"`
	Name                string  `json:"name"`
	SerialNumber        string  `json:"serial_number"`
	Category            string  `json:"category"`
	Location            string  `json:"location"`
	Interval            string  `json:"interval"`
	LastCalibrationDate *string `json:"last_calibration_date"`
	NextCalibrationDate *string `json:"next_calibration_date"`
	Status              string  `json:"status"`
}
