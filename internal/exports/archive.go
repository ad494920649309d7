package exports

import (
	"bytes"
	"context"
	"time"

	"energiebroker_backend/internal/adapters/storage"
	"energiebroker_backend/internal/comparison/transport"
	"energiebroker_backend/internal/events"
	"energiebroker_backend/platform/apperr"
	"energiebroker_backend/platform/logger"

	"github.com/google/uuid"
)

// Archiver uploads rendered exports to object storage and hands out download links.
type Archiver struct {
	storage storage.StorageService
	store   Store
	bucket  string
	bus     events.Bus
	log     *logger.Logger
	now     func() time.Time
}

// NewArchiver creates an archiver. A nil storage service disables archiving.
func NewArchiver(svc storage.StorageService, store Store, bucket string, bus events.Bus, log *logger.Logger) *Archiver {
	return &Archiver{storage: svc, store: store, bucket: bucket, bus: bus, log: log, now: time.Now}
}

// Enabled reports whether object storage is configured.
func (a *Archiver) Enabled() bool {
	return a != nil && a.storage != nil
}

// Archive stores the file and returns a presigned download link.
func (a *Archiver) Archive(ctx context.Context, f File, cmp transport.Comparison) (transport.ExportArchiveResponse, error) {
	if !a.Enabled() {
		return transport.ExportArchiveResponse{}, apperr.Unavailable("export archive is not configured")
	}

	now := a.now().UTC()
	folder := now.Format("2006/01")
	key, err := a.storage.UploadFile(ctx, a.bucket, folder, f.FileName, f.ContentType, bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return transport.ExportArchiveResponse{}, err
	}

	rec := Record{
		ID:        uuid.New(),
		Format:    f.Format,
		Bucket:    a.bucket,
		ObjectKey: key,
		SizeBytes: int64(len(f.Data)),
		Contracts: len(cmp.Entries),
		Customer:  string(cmp.Customer),
		CreatedAt: now,
	}
	if err := a.store.Create(ctx, rec); err != nil {
		return transport.ExportArchiveResponse{}, err
	}

	link, err := a.storage.GenerateDownloadURL(ctx, a.bucket, key)
	if err != nil {
		return transport.ExportArchiveResponse{}, err
	}

	if a.bus != nil {
		a.bus.Publish(ctx, events.ComparisonExported{
			BaseEvent: events.NewBaseEvent(),
			ExportID:  rec.ID,
			Format:    rec.Format,
			ObjectKey: rec.ObjectKey,
		})
	}
	a.log.WithContext(ctx).Info("comparison export archived", "export_id", rec.ID.String(), "key", key)

	return transport.ExportArchiveResponse{
		ExportID:    rec.ID.String(),
		Format:      rec.Format,
		FileKey:     key,
		DownloadURL: link.URL,
		ExpiresAt:   link.ExpiresAt,
	}, nil
}

// DownloadURL returns a fresh download link for an archived export.
func (a *Archiver) DownloadURL(ctx context.Context, id uuid.UUID) (*storage.PresignedURL, error) {
	if !a.Enabled() {
		return nil, apperr.Unavailable("export archive is not configured")
	}
	rec, err := a.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.storage.GenerateDownloadURL(ctx, rec.Bucket, rec.ObjectKey)
}

// List returns the most recent archived exports.
func (a *Archiver) List(ctx context.Context, limit int) ([]Record, error) {
	return a.store.List(ctx, limit)
}
