package seeders

import "calibrify/pkg/constants"

type demoEquipment struct {
	Name          string
	SerialNumber  string
	Category      string
	PurchaseDate  string
	ModelNumber   string
	Manufacturer  string
	Location      string
	IntervalType  constants.IntervalType
	IntervalValue int
}

var demoEquipmentData = []demoEquipment{
	{"Digital Multimeter", "DMM-0001", "Electrical", "2022-03-15", "87V", "Fluke", "Lab A", constants.IntervalMonths, 12},
	{"Torque Wrench 20-100 Nm", "TW-0107", "Mechanical", "2021-11-02", "QD2R100", "Snap-on", "Assembly line 2", constants.IntervalMonths, 6},
	{"Pressure Gauge 0-10 bar", "PG-3310", "Pressure", "2023-01-20", "233.50", "WIKA", "Boiler room", constants.IntervalYears, 1},
	{"Analytical Balance", "AB-2204", "Mass", "2020-07-08", "XPR205", "Mettler Toledo", "QC lab", constants.IntervalDays, 90},
	{"Thermocouple Calibrator", "TC-0450", "Temperature", "2022-09-30", "724", "Fluke", "Lab B", constants.IntervalWeeks, 26},
	{"Caliper 150 mm", "CL-1150", "Dimensional", "2019-05-12", "500-196-30", "Mitutoyo", "Tool crib", constants.IntervalMonths, 12},
}
