package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/observability"
)

// Querier is the slice of pgxpool.Pool the store needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getDocumentSQL = `SELECT co.feature FROM cjdb.city_object co WHERE co.object_id = $1`

	getDocumentsSQL = `SELECT co.object_id, co.feature FROM cjdb.city_object co ` +
		`WHERE co.object_id = ANY($1)`

	metadataSQL = `SELECT m.obj FROM cjdb.metadata m LIMIT 1`
)

// PGStore reads CityJSON feature documents from the cjdb schema.
type PGStore struct {
	db  Querier
	log *slog.Logger
}

func NewPGStore(db Querier, log *slog.Logger) *PGStore {
	return &PGStore{db: db, log: log}
}

func (s *PGStore) GetDocument(ctx context.Context, id model.FeatureID) (json.RawMessage, error) {
	start := time.Now()
	var raw []byte
	err := s.db.QueryRow(ctx, getDocumentSQL, string(id)).Scan(&raw)
	observability.ObserveFeatureStore("get", err, time.Since(start).Seconds())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return json.RawMessage(raw), nil
}

// GetDocuments loads a batch in one round trip. The database returns
// rows in whatever order it likes; the result is reordered to match
// ids, and ids without a row are reported as missing rather than
// failing the batch.
func (s *PGStore) GetDocuments(ctx context.Context, ids []model.FeatureID) ([]json.RawMessage, []model.FeatureID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}

	start := time.Now()
	rows, err := s.db.Query(ctx, getDocumentsSQL, args)
	observability.ObserveFeatureStore("get_batch", err, time.Since(start).Seconds())
	if err != nil {
		return nil, nil, fmt.Errorf("load document batch: %w", err)
	}
	defer rows.Close()

	byID := make(map[model.FeatureID]json.RawMessage, len(ids))
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan document row: %w", err)
		}
		byID[model.FeatureID(id)] = json.RawMessage(raw)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate document rows: %w", err)
	}

	docs := make([]json.RawMessage, 0, len(ids))
	var missing []model.FeatureID
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		docs = append(docs, doc)
	}
	if len(missing) > 0 {
		observability.AddMissingDocuments(len(missing))
		s.log.Warn("documents missing from feature store",
			"requested", len(ids), "missing", len(missing))
	}
	return docs, missing, nil
}

func (s *PGStore) Metadata(ctx context.Context) (json.RawMessage, error) {
	start := time.Now()
	var raw []byte
	err := s.db.QueryRow(ctx, metadataSQL).Scan(&raw)
	observability.ObserveFeatureStore("metadata", err, time.Since(start).Seconds())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset metadata: %w", err)
	}
	return json.RawMessage(raw), nil
}
