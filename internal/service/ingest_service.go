package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"gstrates/internal/config"
	"gstrates/internal/document"
	"gstrates/internal/domain"
	"gstrates/internal/extract"
	"gstrates/internal/metrics"
	"gstrates/internal/normalize"
	"gstrates/internal/port"
	"gstrates/internal/reconcile"
)

// IngestInput is the DTO for ingesting one document.
type IngestInput struct {
	FileName string
	Data     []byte
	// SourceDocument overrides the name recorded on catalogue rows.
	SourceDocument string
	// UploadedBy is the token subject of the caller, empty for CLI and seed runs.
	UploadedBy string
}

// IngestService turns uploaded documents into catalogue changes.
type IngestService interface {
	Ingest(ctx context.Context, input IngestInput) (*domain.IngestReport, error)
	// SeedIfEmpty ingests every supported file in dir when the catalogue has
	// no records. It returns the number of documents ingested.
	SeedIfEmpty(ctx context.Context, fsys afero.Fs, dir string) (int, error)
}

type ingestService struct {
	catalogue  port.RateCatalogue
	reconciler *reconcile.Reconciler
	normalizer *normalize.Normalizer
	storage    port.ObjectStorage
	metrics    *metrics.Collector
	bucket     string
	maxBytes   int64
}

// NewIngestService creates a new IngestService. A nil storage skips archiving.
func NewIngestService(
	catalogue port.RateCatalogue,
	reconciler *reconcile.Reconciler,
	normalizer *normalize.Normalizer,
	storage port.ObjectStorage,
	collector *metrics.Collector,
	cfg *config.IngestConfig,
	bucket string,
) IngestService {
	return &ingestService{
		catalogue:  catalogue,
		reconciler: reconciler,
		normalizer: normalizer,
		storage:    storage,
		metrics:    collector,
		bucket:     bucket,
		maxBytes:   cfg.MaxFileSizeMB * 1024 * 1024,
	}
}

func (s *ingestService) Ingest(ctx context.Context, input IngestInput) (*domain.IngestReport, error) {
	report, err := s.ingest(ctx, input)
	s.metrics.ObserveIngest(report, err)
	return report, err
}

func (s *ingestService) ingest(ctx context.Context, input IngestInput) (*domain.IngestReport, error) {
	name := filepath.Base(strings.TrimSpace(input.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if s.maxBytes > 0 && int64(len(input.Data)) > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	src, err := document.Detect(name, input.Data)
	if err != nil {
		return nil, err
	}

	report := &domain.IngestReport{
		DocumentID:     uuid.New(),
		FileName:       name,
		SourceDocument: input.SourceDocument,
		UploadedBy:     input.UploadedBy,
		Changes:        []domain.RateChange{},
	}
	if report.SourceDocument == "" {
		report.SourceDocument = name
	}

	key, err := s.archive(ctx, report, src.Type(), input.Data)
	if err != nil {
		return nil, err
	}

	pages, err := src.Pages(ctx, input.Data)
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	rows := extract.ExtractPages(pages)
	normalized := s.normalizer.Normalize(rows)
	report.Pages = len(pages)
	report.ParsedRows = len(rows)
	report.ValidRows = len(normalized)

	if len(normalized) == 0 {
		zap.L().Warn("ingestService.Ingest: no usable rows",
			zap.String("file", name), zap.Int("pages", len(pages)), zap.Int("parsed_rows", len(rows)))
	}

	result, err := s.reconciler.Reconcile(ctx, normalized, report.SourceDocument)
	if result != nil {
		report.Inserted = result.Inserted
		report.Updated = result.Updated
		report.Merged = result.Merged
		report.Unchanged = result.Unchanged
		report.Changes = result.Changes
	}
	if err != nil {
		zap.L().Error("ingestService.Ingest: reconciliation aborted",
			zap.String("file", name), zap.Int("applied", len(report.Changes)), zap.Error(err))
		return report, fmt.Errorf("ingesting %s: %w", name, err)
	}

	zap.L().Info("ingestService.Ingest: document ingested",
		zap.String("document_id", report.DocumentID.String()),
		zap.String("file", name),
		zap.String("uploaded_by", report.UploadedBy),
		zap.Int("pages", report.Pages),
		zap.Int("valid_rows", report.ValidRows),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("merged", report.Merged),
		zap.Int("unchanged", report.Unchanged))
	return report, nil
}

// archive returns the object key, or "" when archiving is disabled.
func (s *ingestService) archive(ctx context.Context, report *domain.IngestReport, ft domain.FileType, data []byte) (string, error) {
	if s.storage == nil {
		return "", nil
	}
	key := fmt.Sprintf("documents/%s/%s", report.DocumentID, report.FileName)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.AllowedFileTypes[ft],
		Size:        int64(len(data)),
	})
	if err != nil {
		zap.L().Error("ingestService.Ingest: archive upload failed",
			zap.String("key", key), zap.Error(err))
		return "", domain.ErrUploadFailed
	}
	return key, nil
}

// discard removes the archived copy of a document that could not be read.
func (s *ingestService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, s.bucket, key); err != nil {
		zap.L().Warn("ingestService.Ingest: removing unreadable document from archive",
			zap.String("key", key), zap.Error(err))
	}
}

func (s *ingestService) SeedIfEmpty(ctx context.Context, fsys afero.Fs, dir string) (int, error) {
	count, err := s.catalogue.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: counting catalogue: %w", err)
	}
	if count > 0 {
		zap.L().Info("ingestService.SeedIfEmpty: catalogue already populated, skipping",
			zap.Int("records", count))
		return 0, nil
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("seed: reading %s: %w", dir, err)
	}

	var (
		seeded int
		errs   []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
		if _, ok := domain.AllowedExtensions[ext]; !ok {
			continue
		}

		data, err := afero.ReadFile(fsys, filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("seed: reading %s: %w", e.Name(), err))
			continue
		}
		_, err = s.Ingest(ctx, IngestInput{
			FileName:       e.Name(),
			Data:           data,
			SourceDocument: domain.SeedSourcePrefix + e.Name(),
		})
		if err != nil {
			zap.L().Error("ingestService.SeedIfEmpty: seed file failed",
				zap.String("file", e.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		seeded++
	}
	return seeded, errors.Join(errs...)
}
