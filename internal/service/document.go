package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var (
	ErrFileRequired      = errors.New("no file attached")
	ErrEmptyFilename     = errors.New("no file selected")
	ErrPatientIDRequired = errors.New("patient_id is required")
	ErrInvalidFileType   = errors.New("invalid file type")
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
)

// allowedExtensions is the permitted upload type set.
var allowedExtensions = map[string]bool{
	".pdf": true,
}

// DocumentService defines the use cases for handling documents. Every method
// assumes the access gate has already admitted the request.
type DocumentService interface {
	// Upload validates the payload, writes the blob first, then records the
	// catalog row. A failed row insert rolls the blob back so no row ever
	// references bytes that were never stored, and no blob write is recorded
	// without its row surviving the call.
	Upload(ctx context.Context, r io.Reader, originalFilename, patientID string, size int64) (*model.Document, error)

	// List returns all document records.
	List(ctx context.Context) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Download returns the blob content stream together with the record, so
	// callers can name the attachment after the original filename.
	Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error)

	// Delete removes the blob, then the catalog row. An already-absent blob
	// is tolerated; any other blob-removal failure leaves the row intact
	// for retry.
	Delete(ctx context.Context, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename, patientID string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrFileRequired
	}
	if strings.TrimSpace(patientID) == "" {
		return nil, ErrPatientIDRequired
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(originalFilename))] {
		return nil, ErrInvalidFileType
	}

	name := sanitizeFilename(originalFilename)
	if name == "" {
		return nil, ErrEmptyFilename
	}

	// The storage ref combines a fresh id with the sanitized name, so repeat
	// uploads of identically named files never collide and refs are never
	// reused after deletion.
	id := uuid.New().String()
	ref := id + "_" + name

	info, err := s.store.Put(ctx, ref, r, storage.PutOptions{
		Size:        size,
		ContentType: "application/pdf",
	})
	if err != nil {
		// Blob write failed: abort before any row is inserted.
		return nil, fmt.Errorf("store blob: %w", err)
	}

	doc := &model.Document{
		ID:         id,
		Filename:   name,
		StorageRef: ref,
		PatientID:  patientID,
		SizeBytes:  info.Size,
		CreatedAt:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: remove the blob so it does not outlive the failed row.
		if delErr := s.store.Delete(ctx, ref); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns all records; the repository keeps StorageRef out of the JSON
// representation via the model's field tags.
func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	return s.repo.List(ctx)
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Download opens the blob referenced by the record.
func (s *documentService) Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StorageRef)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return rc, doc, nil
}

// Delete removes the blob first, then the catalog row.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// The store treats an already-absent blob as success; any other failure
	// keeps the row so the delete can be retried.
	if err := s.store.Delete(ctx, doc.StorageRef); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		// Lost a race with a concurrent delete of the same id.
		return ErrNotFound
	}
	return nil
}

// sanitizeFilename reduces a caller-supplied filename to a safe display name:
// path components stripped, spaces collapsed to underscores, anything outside
// [A-Za-z0-9_.-] dropped. The result is never used as a filesystem path on
// its own.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
