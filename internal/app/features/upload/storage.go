package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dalemusser/studyshare/internal/app/system/objstore"
	"github.com/dalemusser/studyshare/internal/domain/models"
)

// Info describes an object written by SaveAttachment.
type Info struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// AttachmentFromForm reads the named file field and describes it as an
// Attachment. kind selects the naming defaults; name overrides the
// client's filename when set. The caller closes the returned file.
func AttachmentFromForm(r *http.Request, field string, kind models.AttachmentKind, name string, now time.Time) (multipart.File, models.Attachment, error) {
	file, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, models.Attachment{}, err
	}
	if name == "" {
		name = hdr.Filename
	}
	att := models.NewAttachment(kind, hdr.Filename, name, hdr.Header.Get("Content-Type"), hdr.Size, now)
	return file, att, nil
}

// SaveAttachment stores the attachment's bytes under a unique path:
// prefix/YYYY/MM/uuid8-filename.
func SaveAttachment(ctx context.Context, store objstore.Store, prefix string, att models.Attachment, r io.Reader, now time.Time) (Info, error) {
	path := objstore.NewObjectPath(prefix, att.SuggestedName, now)
	if err := store.Upload(ctx, path, r, att.SizeBytes, att.MimeType); err != nil {
		return Info{}, fmt.Errorf("failed to upload file: %w", err)
	}
	return Info{
		Path:        path,
		FileName:    att.SuggestedName,
		Size:        att.SizeBytes,
		ContentType: att.MimeType,
	}, nil
}

// ReadImage parses a multipart request and returns the bytes and MIME type
// of the named image field. The request body is capped at maxBytes.
func ReadImage(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, "", err
	}
	file, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", models.ErrAttachmentSize
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == models.DefaultMimeType {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}
