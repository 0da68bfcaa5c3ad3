package issuancestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the run-history store
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) CreateRun(ctx context.Context, run *Run) error {
	dao := toRunDao(run)
	_, err := s.db.NewInsert().
		Model(dao).
		Returning("created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	run.CreatedAt, run.UpdatedAt = dao.CreatedAt, dao.UpdatedAt
	return nil
}

func (s *pgStore) UpdateRun(ctx context.Context, run *Run) error {
	dao := toRunDao(run)
	dao.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().
		Model(dao).
		Column("status", "stage_reached", "failed_stage", "error_kind", "error",
			"final_tx_id", "transactions", "updated_at", "completed_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	run.UpdatedAt = dao.UpdatedAt
	return nil
}

func (s *pgStore) GetRun(ctx context.Context, id string) (*Run, error) {
	dao := new(RunDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return toRun(dao), nil
}

func (s *pgStore) ListRuns(ctx context.Context, opts ...QueryOption) ([]*Run, error) {
	options := buildOptions(opts)

	var daos []RunDao
	query := s.db.NewSelect().Model(&daos)
	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}
	if options.Status != nil {
		query = query.Where("status = ?", string(*options.Status))
	}
	err := query.
		Order("created_at DESC").
		Limit(options.Limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*Run, len(daos))
	for i := range daos {
		runs[i] = toRun(&daos[i])
	}
	return runs, nil
}

func (s *pgStore) AppendEvent(ctx context.Context, event *Event) error {
	dao := toEventDao(event)
	_, err := s.db.NewInsert().
		Model(dao).
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	event.Seq, event.CreatedAt = dao.ID, dao.CreatedAt
	return nil
}

func (s *pgStore) ListEvents(ctx context.Context, runID string) ([]*Event, error) {
	var daos []EventDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("run_id = ?", runID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	events := make([]*Event, len(daos))
	for i := range daos {
		events[i] = toEvent(&daos[i])
	}
	return events, nil
}
