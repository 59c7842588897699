package sample

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/logger"
	"github.com/ignite/coreapp/internal/storage"
)

// Uploads stores file and image uploads under storage keys and reads them
// back. *storage.Uploader satisfies it.
type Uploads interface {
	SaveFile(ctx context.Context, filename string, r io.Reader) (string, error)
	SaveImage(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) ([]byte, string, error)
	Discard(ctx context.Context, key string) error
}

// UploadField names the record field an upload is attached to.
type UploadField string

const (
	FieldFile  UploadField = "file"
	FieldImage UploadField = "image"
)

// Download is a stored upload read back for a record.
type Download struct {
	Key         string
	ContentType string
	Data        []byte
}

// Service implements sample record business logic.
type Service struct {
	repo         Repository
	uploads      Uploads
	filePathRoot string
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithUploads enables AttachFile and AttachImage.
func WithUploads(u Uploads) Option {
	return func(s *Service) { s.uploads = u }
}

// WithFilePathRoot restricts file_path to the files directly inside root.
// An empty root accepts any value that fits the column.
func WithFilePathRoot(root string) Option {
	return func(s *Service) { s.filePathRoot = root }
}

// NewService creates a sample service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create fills defaults, derives the slug if empty, validates and inserts r.
func (s *Service) Create(ctx context.Context, r *domain.SampleRecord) error {
	r.ApplyDefaults()
	if err := s.prepare(r); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return err
	}
	logger.Info("sample record created", "id", r.ID, "slug", r.Slug)
	return nil
}

// Update validates and saves r over the existing record with the same ID.
// An emptied slug is derived again from the current title.
func (s *Service) Update(ctx context.Context, r *domain.SampleRecord) error {
	if r.JSONData == nil {
		r.JSONData = map[string]any{}
	}
	if err := s.prepare(r); err != nil {
		return err
	}
	return s.repo.Update(ctx, r)
}

func (s *Service) prepare(r *domain.SampleRecord) error {
	r.EnsureSlug()
	r.IPAddress = domain.NormalizeIP(r.IPAddress)
	if err := r.Validate(); err != nil {
		return err
	}
	return s.checkFilePath(r.FilePath)
}

func (s *Service) checkFilePath(p *string) error {
	if p == nil || *p == "" || s.filePathRoot == "" {
		return nil
	}
	choices, err := storage.FilePathChoices(s.filePathRoot)
	if err != nil {
		return err
	}
	if !slices.Contains(choices, *p) {
		return fmt.Errorf("%w: %s", ErrInvalidFilePath, *p)
	}
	return nil
}

// FilePathChoices returns the accepted file_path values, or nil when no
// root is configured.
func (s *Service) FilePathChoices() ([]string, error) {
	if s.filePathRoot == "" {
		return nil, nil
	}
	return storage.FilePathChoices(s.filePathRoot)
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.SampleRecord, error) {
	return s.repo.Get(ctx, id)
}

// List returns records newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.SampleRecord, int, error) {
	return s.repo.List(ctx, f)
}

// Delete removes a record. Stored uploads are left in place.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("sample record deleted", "id", id)
	return nil
}

// AttachFile stores an upload under files/ and records its key on the record.
func (s *Service) AttachFile(ctx context.Context, id uuid.UUID, filename string, body io.Reader) (*domain.SampleRecord, error) {
	return s.attach(ctx, id, FieldFile, func() (string, error) {
		return s.uploads.SaveFile(ctx, filename, body)
	})
}

// AttachImage verifies and stores an image under images/ and records its
// key on the record.
func (s *Service) AttachImage(ctx context.Context, id uuid.UUID, filename string, body io.Reader) (*domain.SampleRecord, error) {
	return s.attach(ctx, id, FieldImage, func() (string, error) {
		return s.uploads.SaveImage(ctx, filename, body)
	})
}

// attach stores an upload and saves its key on the record. When the record
// cannot be saved the stored upload is discarded again.
func (s *Service) attach(ctx context.Context, id uuid.UUID, field UploadField, save func() (string, error)) (*domain.SampleRecord, error) {
	if s.uploads == nil {
		return nil, ErrNoUploads
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := save()
	if err != nil {
		return nil, err
	}
	if field == FieldImage {
		r.Image = &key
	} else {
		r.File = &key
	}
	if err := s.repo.Update(ctx, r); err != nil {
		if derr := s.uploads.Discard(ctx, key); derr != nil {
			logger.Warn("orphaned upload left in storage", "key", key, "error", derr)
		}
		return nil, fmt.Errorf("saving upload key: %w", err)
	}
	return r, nil
}

// Download reads back the upload stored in the record's file or image
// field. ErrNoUpload is returned when the field is empty.
func (s *Service) Download(ctx context.Context, id uuid.UUID, field UploadField) (*Download, error) {
	if s.uploads == nil {
		return nil, ErrNoUploads
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	key := r.File
	if field == FieldImage {
		key = r.Image
	}
	if key == nil || *key == "" {
		return nil, ErrNoUpload
	}
	data, contentType, err := s.uploads.Open(ctx, *key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", *key, err)
	}
	return &Download{Key: *key, ContentType: contentType, Data: data}, nil
}
