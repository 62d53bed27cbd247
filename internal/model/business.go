package model

import "time"

// BusinessProfile is owned exclusively by UserID; every read and write is
// scoped by it.
type BusinessProfile struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	BusinessName   string             `json:"business_name"`
	BusinessType   string             `json:"business_type"`
	CustomServices []string           `json:"custom_services"`
	BusinessPhone  string             `json:"business_phone"`
	LogoURL        *string            `json:"logo_url"`
	Documents      []BusinessDocument `json:"documents"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// BusinessDocument is embedded in BusinessProfile.Documents.
type BusinessDocument struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FindDocument returns the embedded document with the given id.
func (b *BusinessProfile) FindDocument(id string) (*BusinessDocument, bool) {
	for i := range b.Documents {
		if b.Documents[i].ID == id {
			return &b.Documents[i], true
		}
	}
	return nil, false
}

// BusinessInput carries the mutable fields of a profile for create and update.
type BusinessInput struct {
	BusinessName   string   `json:"business_name"`
	BusinessType   string   `json:"business_type"`
	CustomServices []string `json:"custom_services"`
	BusinessPhone  string   `json:"business_phone"`
}
