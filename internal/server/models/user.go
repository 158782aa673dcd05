package models

import "time"

// User is a registered resident. UserID is the human-facing identifier of
// the form "<year>-<NN>", distinct from the storage key ID.
type User struct {
	ID             string     `json:"_id"`
	UserID         string     `json:"userId"`
	LastName       string     `json:"lastname"`
	FirstName      string     `json:"firstname"`
	MiddleName     string     `json:"middlename"`
	Suffix         string     `json:"suffix,omitempty"`
	HouseNo        string     `json:"houseno"`
	Barangay       string     `json:"barangay"`
	Birthday       time.Time  `json:"birthday"`
	Gender         string     `json:"gender"`
	Number         string     `json:"number"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	ImageID        string     `json:"imageid"`
	Certification  string     `json:"certification,omitempty"`
	ImageClearance string     `json:"imageclearance,omitempty"`
	Role           string     `json:"role"`
	Accepted       bool       `json:"accepted"`
	Rejected       bool       `json:"rejected"`
	ResetToken     *string    `json:"-"`
	ResetExpires   *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
}
