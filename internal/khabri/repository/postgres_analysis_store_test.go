package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"market-khabri/internal/entity"
	"market-khabri/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestPostgresStore(t *testing.T) (*postgresAnalysisStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	store := NewPostgresAnalysisStore(db, logger.NewNop()).(*postgresAnalysisStore)
	store.now = func() time.Time { return time.Date(2025, time.October, 10, 9, 30, 0, 0, time.UTC) }
	return store, mock
}

func TestPostgresAnalysisStore_ListEscapesPrefix(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectQuery(`SELECT .*record_key.* FROM "analysis_documents" WHERE record_key LIKE \$1 ORDER BY record_key ASC`).
		WithArgs(`analyses/LT\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"record_key"}).
			AddRow("analyses/LT_20250101_100000.000000000.json").
			AddRow("analyses/LT_20250102_100000.000000000.json"))

	keys, err := store.List(context.Background(), "analyses/LT_")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"analyses/LT_20250101_100000.000000000.json",
		"analyses/LT_20250102_100000.000000000.json",
	}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAnalysisStore_WriteUpserts(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "analysis_documents"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT ("record_key") DO UPDATE SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Write(context.Background(), "upcoming_dates.json", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAnalysisStore_WriteFailure(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "analysis_documents"`)).
		WillReturnError(errors.New("connection reset"))

	err := store.Write(context.Background(), "upcoming_dates.json", []byte(`[]`))
	assert.ErrorContains(t, err, "connection reset")
}

func TestPostgresAnalysisStore_ReadAndModTime(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	modified := time.Date(2025, time.October, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "analysis_documents" WHERE record_key = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "data", "modified_at"}).
			AddRow("analyses/TCS_1.json", []byte(`{"a":1}`), modified))
	mock.ExpectQuery(`SELECT .*modified_at.* FROM "analysis_documents" WHERE record_key = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "modified_at"}).
			AddRow("analyses/TCS_1.json", modified))

	data, err := store.Read(context.Background(), "analyses/TCS_1.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	mt, err := store.ModTime(context.Background(), "analyses/TCS_1.json")
	require.NoError(t, err)
	assert.True(t, mt.Equal(modified))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAnalysisStore_MissingKeys(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "analysis_documents"`)).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "data", "modified_at"}))
	mock.ExpectQuery(`SELECT .*modified_at.* FROM "analysis_documents"`).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "modified_at"}))

	_, err := store.Read(context.Background(), "analyses/nope.json")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = store.ModTime(context.Background(), "analyses/nope.json")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
