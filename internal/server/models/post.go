package models

import "time"

// Post is a community post. Posts carry no sequential ID and no image.
type Post struct {
	ID          int64     `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PostedBy    string    `json:"postedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
