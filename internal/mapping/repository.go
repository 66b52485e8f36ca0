package mapping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("mapping not found")

type MappingRepository interface {
	ListMappings(ctx context.Context) ([]ColumnMapping, error)
	FindMapping(ctx context.Context, field Field, boardID *string) (*ColumnMapping, error)
	SaveMapping(ctx context.Context, m *ColumnMapping) error
	DeleteMapping(ctx context.Context, id uuid.UUID) error

	ListBoards(ctx context.Context) ([]Board, error)
	UpsertBoard(ctx context.Context, b *Board) error
	DeleteBoard(ctx context.Context, boardID string) error
}

type mappingRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) ListMappings(ctx context.Context) ([]ColumnMapping, error) {
	var mappings []ColumnMapping
	err := r.db.WithContext(ctx).Order("column_type ASC, board_id ASC").Find(&mappings).Error
	return mappings, err
}

// FindMapping looks up the row for (field, board). A nil board matches the global row.
func (r *mappingRepository) FindMapping(ctx context.Context, field Field, boardID *string) (*ColumnMapping, error) {
	q := r.db.WithContext(ctx).Where("column_type = ?", field)
	if boardID == nil {
		q = q.Where("board_id IS NULL")
	} else {
		q = q.Where("board_id = ?", *boardID)
	}

	var m ColumnMapping
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *mappingRepository) SaveMapping(ctx context.Context, m *ColumnMapping) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *mappingRepository) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&ColumnMapping{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mappingRepository) ListBoards(ctx context.Context) ([]Board, error) {
	var boards []Board
	err := r.db.WithContext(ctx).Order("kind ASC, name ASC").Find(&boards).Error
	return boards, err
}

func (r *mappingRepository) UpsertBoard(ctx context.Context, b *Board) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "board_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "kind", "updated_at"}),
	}).Create(b).Error
}

func (r *mappingRepository) DeleteBoard(ctx context.Context, boardID string) error {
	res := r.db.WithContext(ctx).Where("board_id = ?", boardID).Delete(&Board{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
