package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is one shareable item: an uploaded document, a notice or a request.
// All three collections share this shape so a single catalog view can list
// any of them.
type Record struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Collection Collection         `bson:"collection" json:"collection"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped

	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Tags        []string `bson:"tags" json:"tags"`

	UploadedBy string             `bson:"uploaded_by" json:"uploaded_by"` // display only
	OwnerID    primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	// Storage locator. Empty for records without an attachment (requests,
	// text-only notices).
	FilePath  string `bson:"file_path,omitempty" json:"file_path,omitempty"`
	MimeType  string `bson:"mime_type,omitempty" json:"mime_type,omitempty"`
	SizeBytes int64  `bson:"size_bytes,omitempty" json:"size_bytes,omitempty"`
	ImageURL  string `bson:"image_url,omitempty" json:"image_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// HasFile reports whether the record points at an object in storage.
func (r Record) HasFile() bool {
	return r.FilePath != ""
}

// HasTag reports whether tag is one of the record's tags.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// OwnedBy reports whether the record belongs to the user with the given hex ID.
// Ownership is decided by identity only, never by display name.
func (r Record) OwnedBy(userID string) bool {
	if userID == "" || r.OwnerID.IsZero() {
		return false
	}
	return r.OwnerID.Hex() == userID
}
