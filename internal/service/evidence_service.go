package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campoverde/plano-api/internal/dto"
	"github.com/campoverde/plano-api/internal/models"
	"github.com/campoverde/plano-api/internal/observability"
	"github.com/campoverde/plano-api/internal/repository"
)

var (
	// ErrEvidenceNotFound indicates the evidence row does not exist for this
	// organization.
	ErrEvidenceNotFound = errors.New("evidence not found")
	// ErrUnknownEvidenceType indicates a type outside photo/attendance_list.
	ErrUnknownEvidenceType = errors.New("unknown evidence type")
	// ErrEvidenceTooLarge indicates the payload exceeded the configured limit.
	ErrEvidenceTooLarge = errors.New("evidence file exceeds maximum allowed size")
	// ErrEvidenceTypeNotAllowed indicates the detected MIME type is not
	// permitted for the declared evidence kind.
	ErrEvidenceTypeNotAllowed = errors.New("file type not allowed for this evidence kind")
)

// BlobStore abstracts the external byte storage collaborator.
type BlobStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (publicID string, url string, err error)
	Delete(ctx context.Context, publicID string) error
}

// EvidenceService manages the proof-of-execution files attached to an
// organization's plan. Byte payloads live in the blob store; this service
// owns the metadata rows.
type EvidenceService interface {
	Upload(ctx context.Context, orgID uint, file *multipart.FileHeader, evidenceType string, description *string, actor string) (dto.EvidenceResponse, error)
	List(ctx context.Context, orgID uint) ([]dto.EvidenceResponse, error)
	Delete(ctx context.Context, orgID uint, evidenceID uint, actor string) error
	DownloadURL(ctx context.Context, orgID uint, evidenceID uint) (string, error)
}

type evidenceService struct {
	repo     repository.EvidenceRepository
	orgs     repository.OrganizationRepository
	blobs    BlobStore
	cache    *redis.Client
	activity ActivityPublisher
	maxSize  int64
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewEvidenceService builds the evidence service.
func NewEvidenceService(repo repository.EvidenceRepository, orgs repository.OrganizationRepository, blobs BlobStore, cache *redis.Client, activity ActivityPublisher, maxSizeMB int, logger zerolog.Logger) EvidenceService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &evidenceService{
		repo:     repo,
		orgs:     orgs,
		blobs:    blobs,
		cache:    cache,
		activity: activity,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		logger:   logger.With().Str("component", "evidence_service").Logger(),
		tracer:   otel.Tracer("github.com/campoverde/plano-api/internal/service/evidence"),
	}
}

func (s *evidenceService) Upload(ctx context.Context, orgID uint, file *multipart.FileHeader, evidenceType string, description *string, actor string) (dto.EvidenceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evidence.upload")
	defer span.End()

	span.SetAttributes(
		attribute.Int("evidence.organization_id", int(orgID)),
		attribute.String("evidence.type", evidenceType),
		attribute.Int64("evidence.max_bytes", s.maxSize),
	)

	if err := s.requireOrganization(ctx, orgID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "organization lookup failed")
		return dto.EvidenceResponse{}, err
	}

	if !models.IsValidEvidenceType(evidenceType) {
		span.RecordError(ErrUnknownEvidenceType)
		span.SetStatus(codes.Error, "validation failed")
		return dto.EvidenceResponse{}, ErrUnknownEvidenceType
	}

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.EvidenceResponse{}, err
	}

	if file.Size > s.maxSize {
		observability.EvidenceRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrEvidenceTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.EvidenceResponse{}, ErrEvidenceTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.EvidenceResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.EvidenceResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.EvidenceRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrEvidenceTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.EvidenceResponse{}, ErrEvidenceTooLarge
	}

	mime := mimetype.Detect(buf.Bytes()).String()
	span.SetAttributes(attribute.String("evidence.detected_mime", mime))
	if !mimeAllowedFor(evidenceType, mime) {
		observability.EvidenceRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrEvidenceTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.EvidenceResponse{}, ErrEvidenceTypeNotAllowed
	}

	publicID, url, err := s.blobs.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.EvidenceRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.EvidenceResponse{}, fmt.Errorf("failed to store evidence file: %w", err)
	}

	evidence := models.Evidence{
		OrganizationID: orgID,
		Type:           evidenceType,
		FileName:       file.Filename,
		Description:    description,
		PublicID:       publicID,
		URL:            url,
		MimeType:       mime,
		SizeBytes:      int64(buf.Len()),
		UploadedBy:     actor,
	}

	if err := s.repo.Create(ctx, &evidence); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.EvidenceResponse{}, err
	}

	observability.EvidenceUploads().WithLabelValues(evidenceType).Inc()
	span.SetStatus(codes.Ok, "stored")

	s.invalidateView(ctx, orgID)
	if s.activity != nil {
		s.activity.Publish(ctx, dto.ActivityEvent{
			OrganizationID: orgID,
			Verb:           dto.ActivityEvidenceUploaded,
			EvidenceID:     evidence.ID,
			Actor:          actor,
			OccurredAt:     time.Now(),
		})
	}
	s.logger.Info().Uint("organization_id", orgID).Uint("evidence_id", evidence.ID).Str("type", evidenceType).Msg("evidence uploaded")

	return dto.NewEvidenceResponse(evidence), nil
}

func (s *evidenceService) List(ctx context.Context, orgID uint) ([]dto.EvidenceResponse, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	return dto.NewEvidenceResponseSlice(items), nil
}

func (s *evidenceService) Delete(ctx context.Context, orgID uint, evidenceID uint, actor string) error {
	evidence, err := s.ownedEvidence(ctx, orgID, evidenceID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, evidence.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvidenceNotFound
		}
		return err
	}

	// The metadata row is already gone; a failed blob release only leaves an
	// orphaned payload behind, cleaned up out-of-band.
	if err := s.blobs.Delete(ctx, evidence.PublicID); err != nil {
		s.logger.Error().Err(err).
			Uint("organization_id", orgID).
			Uint("evidence_id", evidence.ID).
			Str("public_id", evidence.PublicID).
			Msg("failed to release evidence blob, orphan left in storage")
	}

	s.invalidateView(ctx, orgID)
	if s.activity != nil {
		s.activity.Publish(ctx, dto.ActivityEvent{
			OrganizationID: orgID,
			Verb:           dto.ActivityEvidenceDeleted,
			EvidenceID:     evidence.ID,
			Actor:          actor,
			OccurredAt:     time.Now(),
		})
	}
	s.logger.Info().Uint("organization_id", orgID).Uint("evidence_id", evidence.ID).Msg("evidence deleted")

	return nil
}

func (s *evidenceService) DownloadURL(ctx context.Context, orgID uint, evidenceID uint) (string, error) {
	evidence, err := s.ownedEvidence(ctx, orgID, evidenceID)
	if err != nil {
		return "", err
	}

	return evidence.URL, nil
}

func (s *evidenceService) ownedEvidence(ctx context.Context, orgID uint, evidenceID uint) (models.Evidence, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return models.Evidence{}, err
	}

	evidence, err := s.repo.GetByID(ctx, evidenceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evidence{}, ErrEvidenceNotFound
		}
		return models.Evidence{}, err
	}
	if evidence.OrganizationID != orgID {
		return models.Evidence{}, ErrEvidenceNotFound
	}

	return evidence, nil
}

func (s *evidenceService) requireOrganization(ctx context.Context, orgID uint) error {
	exists, err := s.orgs.Exists(ctx, orgID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrOrganizationNotFound
	}
	return nil
}

func (s *evidenceService) invalidateView(ctx context.Context, orgID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, planViewCacheKey(orgID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("organization_id", orgID).Msg("failed to invalidate plan view cache")
	}
}

// mimeAllowedFor gates the detected MIME type per evidence kind: photos must
// be images, attendance lists may be scanned images or PDFs.
func mimeAllowedFor(evidenceType, mime string) bool {
	lower := strings.ToLower(strings.TrimSpace(mime))
	isImage := strings.HasPrefix(lower, "image/")

	switch evidenceType {
	case models.EvidenceTypePhoto:
		return isImage
	case models.EvidenceTypeAttendanceList:
		return isImage || lower == "application/pdf"
	default:
		return false
	}
}
