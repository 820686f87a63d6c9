// Package saga runs a relational unit of work together with the blob store
// side effects that the transaction cannot cover.
//
// Side effects register their undo with Unit.OnRollback. When the work
// function fails or the commit fails, the transaction is rolled back first
// and the compensations run afterwards in reverse order. Actions registered
// with Unit.AfterCommit run only once the commit succeeded. Neither kind of
// action can change the outcome returned to the caller: failures are logged,
// and compensation failures are attached to the primary error as secondary
// errors.
//
// There is no durable log. A crash between commit and compensation can leave
// an orphaned blob, never a row that points at a missing blob.
package saga

import (
	"context"
	"fmt"
	"sync"

	"menuely/internal/model"
	"menuely/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Action is a compensation or an after-commit step.
type Action func(ctx context.Context) error

type step struct {
	name string
	fn   Action
}

// Unit is the handle passed to the work function. Tx must be used for every
// repository call of the operation.
type Unit struct {
	Tx pgx.Tx

	mu            sync.Mutex
	compensations []step
	afterCommit   []step
}

// OnRollback registers fn to run if the unit does not commit. It is safe for
// concurrent use.
func (u *Unit) OnRollback(name string, fn Action) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.compensations = append(u.compensations, step{name: name, fn: fn})
}

// AfterCommit registers fn to run once the unit has committed. It is safe for
// concurrent use.
func (u *Unit) AfterCommit(name string, fn Action) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.afterCommit = append(u.afterCommit, step{name: name, fn: fn})
}

// Runner executes work functions inside a unit of work.
type Runner struct {
	uow    repository.UnitOfWork
	logger zerolog.Logger
}

// NewRunner creates a Runner on top of uow.
func NewRunner(uow repository.UnitOfWork, logger zerolog.Logger) *Runner {
	return &Runner{
		uow:    uow,
		logger: logger.With().Str("component", "saga").Logger(),
	}
}

// Run begins a transaction, calls fn and commits. Errors that are not
// already a model.DomainError come back as internal errors; a failed commit
// comes back as a conflict.
func (r *Runner) Run(ctx context.Context, operation string, fn func(ctx context.Context, u *Unit) error) error {
	logger := r.logger.With().Str("operation", operation).Logger()

	tx, err := r.uow.BeginTx(ctx)
	if err != nil {
		return model.NewInternalError("failed to begin unit of work", err)
	}

	u := &Unit{Tx: tx}
	finished := false

	defer func() {
		if p := recover(); p != nil {
			if !finished {
				_ = r.abort(ctx, logger, u)
			}
			panic(p)
		}
	}()

	if err := fn(ctx, u); err != nil {
		finished = true
		compErr := r.abort(ctx, logger, u)
		return withCompensation(asDomain(err), compErr)
	}

	err = tx.Commit(ctx)
	finished = true
	if err != nil {
		logger.Error().Err(err).Msg("failed to commit unit of work")
		compErr := r.abort(ctx, logger, u)
		return withCompensation(model.NewConflictError("failed to commit changes", err), compErr)
	}

	r.runAfterCommit(ctx, logger, u)
	return nil
}

// abort rolls the transaction back, then runs compensations newest first.
// It returns the combined compensation failures, if any.
func (r *Runner) abort(ctx context.Context, logger zerolog.Logger, u *Unit) error {
	cleanupCtx := context.WithoutCancel(ctx)

	if err := u.Tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Error().Err(err).Msg("failed to roll back unit of work")
	}

	u.mu.Lock()
	steps := u.compensations
	u.compensations = nil
	u.mu.Unlock()

	var failures error
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		if err := s.fn(cleanupCtx); err != nil {
			logger.Error().Err(err).Str("compensation", s.name).Msg("compensation failed")
			failures = errors.CombineErrors(failures, errors.Wrapf(err, "compensation %s", s.name))
			continue
		}
		logger.Debug().Str("compensation", s.name).Msg("compensation applied")
	}

	return failures
}

func (r *Runner) runAfterCommit(ctx context.Context, logger zerolog.Logger, u *Unit) {
	cleanupCtx := context.WithoutCancel(ctx)

	u.mu.Lock()
	steps := u.afterCommit
	u.afterCommit = nil
	u.mu.Unlock()

	for _, s := range steps {
		if err := s.fn(cleanupCtx); err != nil {
			logger.Warn().Err(err).Str("action", s.name).Msg("after-commit action failed")
		}
	}
}

func asDomain(err error) error {
	var de *model.DomainError
	if errors.As(err, &de) {
		return err
	}
	return model.NewInternalError("unexpected failure", err)
}

func withCompensation(primary, compErr error) error {
	if compErr == nil {
		return primary
	}
	return errors.WithSecondaryError(primary, fmt.Errorf("compensation failed: %w", compErr))
}
