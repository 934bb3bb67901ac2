package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// analysisDocument is a row of the analysis_documents table.
type analysisDocument struct {
	RecordKey  string         `gorm:"column:record_key;primaryKey"`
	Data       datatypes.JSON `gorm:"column:data;type:jsonb"`
	ModifiedAt time.Time      `gorm:"column:modified_at"`
}

func (analysisDocument) TableName() string {
	return "analysis_documents"
}

// NewPostgresAnalysisStore creates a store backed by the analysis_documents table.
func NewPostgresAnalysisStore(db *gorm.DB, log *logger.Logger) AnalysisStore {
	return &postgresAnalysisStore{db: db, logger: log, now: time.Now}
}

type postgresAnalysisStore struct {
	db     *gorm.DB
	logger *logger.Logger
	now    func() time.Time
}

// Write inserts the document, replacing the whole row if the key already exists.
func (s *postgresAnalysisStore) Write(ctx context.Context, key string, data []byte) error {
	row := analysisDocument{RecordKey: key, Data: datatypes.JSON(data), ModifiedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "modified_at"}),
	}).Create(&row).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to write analysis document", logger.ErrorField(err), logger.StringField("key", key))
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *postgresAnalysisStore) Read(ctx context.Context, key string) ([]byte, error) {
	var row analysisDocument
	err := s.db.WithContext(ctx).Where("record_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("key %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(row.Data), nil
}

func (s *postgresAnalysisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&analysisDocument{}).
		Where("record_key LIKE ?", escapeLike(prefix)+"%").
		Order("record_key ASC").
		Pluck("record_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *postgresAnalysisStore) ModTime(ctx context.Context, key string) (time.Time, error) {
	var row analysisDocument
	err := s.db.WithContext(ctx).Select("record_key", "modified_at").Where("record_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, fmt.Errorf("key %s: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read modification time of %s: %w", key, err)
	}
	return row.ModifiedAt, nil
}

// escapeLike escapes LIKE metacharacters; '_' appears in every analysis key.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
