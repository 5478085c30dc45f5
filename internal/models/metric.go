package models

import "time"

// MetricType is the kind of analytics sample.
type MetricType string

// MetricCounter is a monotonically incrementing counter.
const MetricCounter MetricType = "counter"

// MetricSample is one analytics measurement, e.g. a "login.success" counter hit.
type MetricSample struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Type      MetricType `gorm:"size:20;not null" json:"type"`
	Name      string     `gorm:"size:100;not null;index" json:"name"`
	Datetime  time.Time  `gorm:"not null;index" json:"datetime"`
	Metric    int64      `gorm:"not null" json:"metric"` // increment amount
	CompanyID uint       `gorm:"index" json:"company_id,omitempty"`
}

// NewCounterSample returns a counter sample incrementing name by one.
func NewCounterSample(name string, companyID uint, at time.Time) MetricSample {
	return MetricSample{
		Type:      MetricCounter,
		Name:      name,
		Datetime:  at,
		Metric:    1,
		CompanyID: companyID,
	}
}
