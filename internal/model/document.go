package model

import "time"

// Document is the catalog record for one uploaded file.
// This is a pure domain model with no database-specific dependencies or tags.
// StorageRef locates the blob inside the blob store; it is internal
// bookkeeping and is never serialized into API responses.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	StorageRef string    `json:"-"`
	PatientID  string    `json:"patient_id"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}
