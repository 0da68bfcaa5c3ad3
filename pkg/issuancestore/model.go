package issuancestore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

// RunDao is a data access object that maps directly to the 'issuance_runs' table in PostgreSQL.
type RunDao struct {
	bun.BaseModel      `bun:"table:issuance_runs,alias:r"`
	ID                 string            `bun:"id,pk,type:varchar(36)"`
	Symbol             string            `bun:"symbol,notnull,type:varchar(40)"`
	Mode               string            `bun:"mode,notnull,type:varchar(16)"`
	Definition         token.Definition  `bun:"definition,type:jsonb,notnull"`
	Resume             bool              `bun:"resume,notnull,default:false"`
	Status             string            `bun:"status,notnull,type:varchar(16)"`
	StageReached       *string           `bun:"stage_reached,type:varchar(32)"`
	FailedStage        *string           `bun:"failed_stage,type:varchar(32)"`
	ErrorKind          *string           `bun:"error_kind,type:varchar(32)"`
	Error              *string           `bun:"error,type:text"`
	FinalTransactionID *string           `bun:"final_tx_id,type:varchar(64)"`
	Transactions       map[string]string `bun:"transactions,type:jsonb"`
	CreatedAt          time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	CompletedAt        *time.Time        `bun:"completed_at"`
}

// EventDao is a data access object that maps directly to the 'issuance_events' table in PostgreSQL.
type EventDao struct {
	bun.BaseModel `bun:"table:issuance_events,alias:e"`
	ID            int64     `bun:"id,pk,autoincrement"`
	RunID         string    `bun:"run_id,notnull,type:varchar(36)"`
	Stage         *string   `bun:"stage,type:varchar(32)"`
	Level         string    `bun:"level,notnull,type:varchar(16)"`
	Message       string    `bun:"message,notnull,type:text"`
	Error         *string   `bun:"error,type:text"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRunDao(run *Run) *RunDao {
	return &RunDao{
		ID:                 run.ID,
		Symbol:             run.Symbol,
		Mode:               string(run.Mode),
		Definition:         run.Definition,
		Resume:             run.Resume,
		Status:             string(run.Status),
		StageReached:       optional(run.StageReached),
		FailedStage:        optional(run.FailedStage),
		ErrorKind:          optional(run.ErrorKind),
		Error:              optional(run.Error),
		FinalTransactionID: optional(run.FinalTransactionID),
		Transactions:       run.Transactions,
		CreatedAt:          run.CreatedAt,
		UpdatedAt:          run.UpdatedAt,
		CompletedAt:        run.CompletedAt,
	}
}

func toRun(dao *RunDao) *Run {
	return &Run{
		ID:                 dao.ID,
		Symbol:             dao.Symbol,
		Mode:               token.Mode(dao.Mode),
		Definition:         dao.Definition,
		Resume:             dao.Resume,
		Status:             Status(dao.Status),
		StageReached:       deref(dao.StageReached),
		FailedStage:        deref(dao.FailedStage),
		ErrorKind:          deref(dao.ErrorKind),
		Error:              deref(dao.Error),
		FinalTransactionID: deref(dao.FinalTransactionID),
		Transactions:       dao.Transactions,
		CreatedAt:          dao.CreatedAt,
		UpdatedAt:          dao.UpdatedAt,
		CompletedAt:        dao.CompletedAt,
	}
}

func toEventDao(e *Event) *EventDao {
	return &EventDao{
		RunID:     e.RunID,
		Stage:     optional(e.Stage),
		Level:     e.Level,
		Message:   e.Message,
		Error:     optional(e.Error),
		CreatedAt: e.CreatedAt,
	}
}

func toEvent(dao *EventDao) *Event {
	return &Event{
		RunID:     dao.RunID,
		Seq:       dao.ID,
		Stage:     deref(dao.Stage),
		Level:     dao.Level,
		Message:   dao.Message,
		Error:     deref(dao.Error),
		CreatedAt: dao.CreatedAt,
	}
}
