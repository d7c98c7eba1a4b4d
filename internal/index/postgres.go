package index

import (
	"context"
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
	queryBBoxSQL = `SELECT co.object_id FROM cjdb.city_object co ` +
		`WHERE ST_Intersects(co.ground_geometry, ST_MakeEnvelope($1, $2, $3, $4, 28992)) ` +
		`ORDER BY co.object_id`

	listAllSQL = `SELECT co.object_id FROM cjdb.city_object co ORDER BY co.object_id`
)

// PGStore answers spatial queries from the cjdb schema in PostGIS.
// ST_Intersects gives the inclusive-edge semantics the API promises,
// and ORDER BY keeps pagination stable across calls.
type PGStore struct {
	db  Querier
	log *slog.Logger
}

func NewPGStore(db Querier, log *slog.Logger) *PGStore {
	return &PGStore{db: db, log: log}
}

func (s *PGStore) QueryBBox(ctx context.Context, b model.BBox) ([]model.FeatureID, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, queryBBoxSQL, b.MinX, b.MinY, b.MaxX, b.MaxY)
	observability.ObserveSpatialQuery("bbox", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("spatial bbox query: %w", err)
	}
	return collectIDs(rows)
}

func (s *PGStore) ListAll(ctx context.Context) ([]model.FeatureID, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, listAllSQL)
	observability.ObserveSpatialQuery("list_all", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("list all object ids: %w", err)
	}
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]model.FeatureID, error) {
	defer rows.Close()
	var out []model.FeatureID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan object id: %w", err)
		}
		out = append(out, model.FeatureID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate object ids: %w", err)
	}
	return out, nil
}
