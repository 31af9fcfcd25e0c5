package models

import "time"

// JobLock lets one instance claim a scheduled run. The (job, slot) pair is
// unique, so the first insert for a slot wins.
type JobLock struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Job        string    `gorm:"uniqueIndex:idx_job_slot;size:100;not null" json:"job"`
	Slot       string    `gorm:"uniqueIndex:idx_job_slot;size:64;not null" json:"slot"`
	Holder     string    `gorm:"size:100" json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `gorm:"index" json:"expires_at"`
}

func (JobLock) TableName() string { return "job_locks" }
