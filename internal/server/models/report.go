package models

import "time"

// Report is a submitted incident report. ReportID is the zero-padded
// sequential identifier allocated at creation; ID is the storage key.
// Responded and Archived are independent flags, not a linear state machine.
type Report struct {
	ID         int64     `json:"_id"`
	ReportID   string    `json:"reportId"`
	ReportType string    `json:"reportType"`
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Comment    string    `json:"comment"`
	Image      *string   `json:"image,omitempty"`
	PostedBy   string    `json:"postedBy"`
	Responded  bool      `json:"responded"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"createdAt"`
}
