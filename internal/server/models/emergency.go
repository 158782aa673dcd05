package models

import "time"

// Emergency is a submitted emergency report. EmergencyID is allocated from
// the "emergencyId" counter at creation and never reused.
type Emergency struct {
	ID          int64     `json:"_id"`
	EmergencyID string    `json:"emergencyId"`
	Category    string    `json:"category"`
	FullName    string    `json:"fullName"`
	Barangay    string    `json:"barangay"`
	Location    string    `json:"location"`
	Comment     string    `json:"comment"`
	Image       *string   `json:"image,omitempty"`
	PostedBy    string    `json:"postedBy"`
	Responded   bool      `json:"responded"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"createdAt"`
}
