package document

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/auth"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/sirupsen/logrus"
)

const DefaultLinkExpiry = 15 * time.Minute

var ErrDuplicateKey = errors.New("object key already registered")

type DocumentService interface {
	Register(ctx context.Context, dto RegisterDocumentDTO) (*Document, error)
	List(ctx context.Context, projectID *uuid.UUID) ([]Document, error)
	DownloadLink(ctx context.Context, id uuid.UUID) (*DownloadLink, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	repo   DocumentRepository
	store  ObjectStore
	caps   capability.Set
	expiry time.Duration
	now    func() time.Time
}

func NewService(repo DocumentRepository, store ObjectStore, caps capability.Set, expiry time.Duration) DocumentService {
	if expiry <= 0 {
		expiry = DefaultLinkExpiry
	}
	return &documentService{repo: repo, store: store, caps: caps, expiry: expiry, now: time.Now}
}

func (s *documentService) require(needStore bool) error {
	if err := capability.Require(s.caps.Documents, capability.StepDocuments); err != nil {
		return err
	}
	if needStore && s.store == nil {
		return apperror.NotConfigured(capability.StepDocuments)
	}
	return nil
}

// Register records metadata for an object that was already uploaded. Size
// and content type are read from the store when the caller leaves them out.
func (s *documentService) Register(ctx context.Context, dto RegisterDocumentDTO) (*Document, error) {
	log := config.WithContext(ctx)

	if err := s.require(true); err != nil {
		return nil, err
	}
	key := strings.TrimPrefix(strings.TrimSpace(dto.ObjectKey), "/")
	if key == "" {
		return nil, apperror.Invalid("object_key is required")
	}
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = path.Base(key)
	}

	exists, err := s.repo.ExistsByObjectKey(ctx, key)
	if err != nil {
		log.WithError(err).Error("Failed to check object key")
		return nil, err
	}
	if exists {
		return nil, apperror.Wrap(apperror.KindIntegrity, "object key already registered", ErrDuplicateKey)
	}

	info, err := s.store.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, apperror.Invalid("no object stored under " + key)
		}
		log.WithError(err).WithField("object_key", key).Error("Failed to stat object")
		return nil, apperror.Upstream("storage", err)
	}

	d := &Document{
		Name:        name,
		ObjectKey:   key,
		ContentType: dto.ContentType,
		SizeBytes:   dto.SizeBytes,
		ProjectID:   dto.ProjectID,
	}
	if d.ContentType == "" {
		d.ContentType = info.ContentType
	}
	if d.SizeBytes <= 0 {
		d.SizeBytes = info.Size
	}
	if claims, err := auth.GetUserClaimsFromContext(ctx); err == nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			d.UploadedBy = &id
		}
	}

	if err := s.repo.Create(ctx, d); err != nil {
		log.WithError(err).Error("Failed to register document")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"document_id": d.ID,
		"object_key":  d.ObjectKey,
	}).Info("Document registered")
	return d, nil
}

func (s *documentService) List(ctx context.Context, projectID *uuid.UUID) ([]Document, error) {
	if err := s.require(false); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, projectID)
}

func (s *documentService) get(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "document not found", err)
		}
		return nil, err
	}
	return d, nil
}

func (s *documentService) DownloadLink(ctx context.Context, id uuid.UUID) (*DownloadLink, error) {
	if err := s.require(true); err != nil {
		return nil, err
	}
	d, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	u, err := s.store.PresignGet(ctx, d.ObjectKey, d.Name, s.expiry)
	if err != nil {
		config.WithContext(ctx).WithError(err).WithField("document_id", id).Error("Failed to presign download")
		return nil, apperror.Upstream("storage", err)
	}
	return &DownloadLink{URL: u.String(), ExpiresAt: s.now().Add(s.expiry).UTC()}, nil
}

// Delete removes the stored object, then its metadata.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)

	if err := s.require(true); err != nil {
		return err
	}
	d, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, d.ObjectKey); err != nil {
		log.WithError(err).WithField("object_key", d.ObjectKey).Error("Failed to remove object")
		return apperror.Upstream("storage", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete document")
		return err
	}
	log.WithField("document_id", id).Info("Document deleted")
	return nil
}
