package mapping

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/sirupsen/logrus"
)

type MappingService interface {
	ListMappings(ctx context.Context) ([]ColumnMapping, error)
	LoadIndex(ctx context.Context) (Index, error)
	UpsertMapping(ctx context.Context, dto UpsertMappingDTO) (*ColumnMapping, error)
	DeleteMapping(ctx context.Context, id uuid.UUID) error

	ListBoards(ctx context.Context) ([]Board, error)
	UpsertBoard(ctx context.Context, dto UpsertBoardDTO) (*Board, error)
	DeleteBoard(ctx context.Context, boardID string) error
}

type mappingService struct {
	repo MappingRepository
	caps capability.Set
}

func NewService(repo MappingRepository, caps capability.Set) MappingService {
	return &mappingService{repo: repo, caps: caps}
}

func (s *mappingService) requireMappings() error {
	return capability.Require(s.caps.ColumnMappings, capability.StepColumnMappings)
}

func (s *mappingService) requireBoards() error {
	return capability.Require(s.caps.ProjectSync, capability.StepProjectSync)
}

func (s *mappingService) ListMappings(ctx context.Context) ([]ColumnMapping, error) {
	if err := s.requireMappings(); err != nil {
		return nil, err
	}
	return s.repo.ListMappings(ctx)
}

func (s *mappingService) LoadIndex(ctx context.Context) (Index, error) {
	mappings, err := s.ListMappings(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(mappings), nil
}

func (s *mappingService) UpsertMapping(ctx context.Context, dto UpsertMappingDTO) (*ColumnMapping, error) {
	log := config.WithContext(ctx)

	if err := s.requireMappings(); err != nil {
		return nil, err
	}
	if !dto.ColumnType.IsValid() {
		return nil, apperror.Invalid("unknown column type " + string(dto.ColumnType))
	}
	columnID := strings.TrimSpace(dto.ExternalColumnID)
	if columnID == "" {
		return nil, apperror.Invalid("external_column_id is required")
	}
	boardID := dto.BoardID
	if boardID != nil && strings.TrimSpace(*boardID) == "" {
		boardID = nil
	}

	existing, err := s.repo.FindMapping(ctx, dto.ColumnType, boardID)
	if err != nil {
		log.WithError(err).Error("Failed to look up column mapping")
		return nil, err
	}

	m := existing
	if m == nil {
		m = &ColumnMapping{ColumnType: dto.ColumnType, BoardID: boardID}
	}
	m.ExternalColumnID = columnID

	if err := s.repo.SaveMapping(ctx, m); err != nil {
		log.WithError(err).Error("Failed to save column mapping")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"column_type": m.ColumnType,
		"board_id":    m.BoardID,
		"column_id":   m.ExternalColumnID,
	}).Info("Column mapping saved")
	return m, nil
}

func (s *mappingService) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	if err := s.requireMappings(); err != nil {
		return err
	}
	if err := s.repo.DeleteMapping(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.Wrap(apperror.KindNotFound, "column mapping not found", err)
		}
		return err
	}
	return nil
}

func (s *mappingService) ListBoards(ctx context.Context) ([]Board, error) {
	if err := s.requireBoards(); err != nil {
		return nil, err
	}
	return s.repo.ListBoards(ctx)
}

func (s *mappingService) UpsertBoard(ctx context.Context, dto UpsertBoardDTO) (*Board, error) {
	if err := s.requireBoards(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dto.BoardID) == "" {
		return nil, apperror.Invalid("board_id is required")
	}
	if !dto.Kind.IsValid() {
		return nil, apperror.Invalid("board kind must be main, flexi, completed or leads")
	}

	b := &Board{BoardID: strings.TrimSpace(dto.BoardID), Name: dto.Name, Kind: dto.Kind}
	if err := s.repo.UpsertBoard(ctx, b); err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to save board")
		return nil, err
	}
	return b, nil
}

func (s *mappingService) DeleteBoard(ctx context.Context, boardID string) error {
	if err := s.requireBoards(); err != nil {
		return err
	}
	if err := s.repo.DeleteBoard(ctx, boardID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.Wrap(apperror.KindNotFound, "board not found", err)
		}
		return err
	}
	return nil
}
