package services

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics - счётчики записанных калибровок и ТО.
type DomainMetrics struct {
	CalibrationsRecorded prometheus.Counter
	MaintenanceRecorded  prometheus.Counter
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	m := &DomainMetrics{
		CalibrationsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calibrify",
			Name:      "calibrations_recorded_total",
			Help:      "Количество созданных записей калибровки.",
		}),
		MaintenanceRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "calibrify",
			Name:      "maintenance_recorded_total",
			Help:      "Количество созданных записей ТО.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.CalibrationsRecorded, m.MaintenanceRecorded)
	}
	return m
}
