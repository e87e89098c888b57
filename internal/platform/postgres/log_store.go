package postgres

import (
	"context"
	"log/slog"

	"github.com/volunteerhq/volunteer-api/internal/audit"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
	"github.com/volunteerhq/volunteer-api/internal/store"
)

// LogStore implements audit.Store on the logs table.
type LogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

func NewLogStore(db store.DBTX, log *slog.Logger) *LogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &LogStore{db: db, logger: log.With(slog.String("component", "log_store"))}
}

var _ audit.Store = (*LogStore)(nil)

func (s *LogStore) Insert(ctx context.Context, entry audit.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	var data any
	if len(entry.Data) > 0 {
		data = []byte(entry.Data)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logs (log_kind, log_mutation, log_source_user_id, log_target_id, log_data, log_date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Kind, string(entry.Mutation), entry.SourceUserID, entry.TargetID, data, entry.Date,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert log entry",
			slog.String("kind", entry.Kind),
			slog.Int64("target_id", entry.TargetID),
			slog.String("error", err.Error()))
		return store.NewStoreError("log", "insert", MapError(err))
	}
	return nil
}
