package dto

import "time"

type DashboardDTO struct {
	TotalEquipment     uint64              `json:"total_equipment"`
	DueCalibrations    uint64              `json:"due_calibrations"`
	OverdueMaintenance uint64              `json:"overdue_maintenance"`
	CompletedThisMonth uint64              `json:"completed_this_month"`
	UpcomingEvents     []UpcomingEventDTO  `json:"upcoming_events"`
	RecentActivities   []RecentActivityDTO `json:"recent_activities"`
}

type UpcomingEventDTO struct {
	Date      time.Time         `json:"date"`
	Title     string            `json:"title"`
	Equipment ShortEquipmentDTO `json:"equipment"`
	Type      string            `json:"type"`
	Status    string            `json:"status"`
}

type RecentActivityDTO struct {
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type HealthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
