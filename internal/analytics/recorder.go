// Package analytics stores counter samples such as login.success.
package analytics

import (
	"context"
	"log"
	"time"

	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// LoginSuccess is the counter recorded after a successful sign in.
const LoginSuccess = "login.success"

// Recorder writes metric samples. Failures are logged and never reach the caller.
type Recorder struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db, now: time.Now}
}

// Increment adds one to the named counter for the company.
func (r *Recorder) Increment(ctx context.Context, name string, companyID uint) {
	sample := models.NewCounterSample(name, companyID, r.now().UTC())
	if err := r.db.WithContext(ctx).Create(&sample).Error; err != nil {
		log.Printf("analytics: record %s: %v", name, err)
	}
}

// RecordLogin counts a successful login.
func (r *Recorder) RecordLogin(ctx context.Context, companyID uint) {
	r.Increment(ctx, LoginSuccess, companyID)
}

// Count sums the counter since the given time.
func (r *Recorder) Count(ctx context.Context, name string, companyID uint, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.MetricSample{}).
		Where("name = ? AND company_id = ? AND datetime >= ?", name, companyID, since).
		Select("COALESCE(SUM(metric), 0)").
		Scan(&total).Error
	return total, err
}
