// internal/domain/models/attachment.go
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AttachmentKind says where a picked file came from.
type AttachmentKind string

const (
	AttachmentDocument AttachmentKind = "document"
	AttachmentImage    AttachmentKind = "image"
	AttachmentCamera   AttachmentKind = "camera"
)

// DefaultMimeType is used when the picker reports no content type.
const DefaultMimeType = "application/octet-stream"

var (
	ErrAttachmentName = errors.New("attachment name is required")
	ErrAttachmentSize = errors.New("attachment is empty")
	ErrAttachmentKind = errors.New("unknown attachment kind")
)

// Attachment is a file the user selected for upload, regardless of whether it
// came from the document picker, the photo library or the camera.
type Attachment struct {
	Kind          AttachmentKind
	LocalURI      string
	SuggestedName string
	MimeType      string
	SizeBytes     int64
}

// NewAttachment builds an Attachment and fills the defaults each picker
// applies: image picks fall back to "image.jpg", camera captures are named
// after the capture time, and a missing MIME type becomes
// application/octet-stream.
func NewAttachment(kind AttachmentKind, localURI, name, mimeType string, size int64, now time.Time) Attachment {
	name = strings.TrimSpace(name)
	if name == "" {
		switch kind {
		case AttachmentImage:
			name = "image.jpg"
		case AttachmentCamera:
			name = fmt.Sprintf("photo_%d.jpg", now.UnixMilli())
		}
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = DefaultMimeType
	}
	return Attachment{
		Kind:          kind,
		LocalURI:      localURI,
		SuggestedName: name,
		MimeType:      mimeType,
		SizeBytes:     size,
	}
}

// Validate checks the required fields.
func (a Attachment) Validate() error {
	switch a.Kind {
	case AttachmentDocument, AttachmentImage, AttachmentCamera:
	default:
		return ErrAttachmentKind
	}
	if strings.TrimSpace(a.SuggestedName) == "" {
		return ErrAttachmentName
	}
	if a.SizeBytes <= 0 {
		return ErrAttachmentSize
	}
	return nil
}

// IsImage reports whether the attachment's MIME type is an image type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.MimeType), "image/")
}
