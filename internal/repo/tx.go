package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx bundles transaction-scoped repos for a single aggregate write.
// Every repo in the bundle shares one underlying transaction, so a failure
// anywhere rolls back everything written through any of them.
type Tx struct {
	Users       UserRepo
	Itineraries ItineraryRepo
	Days        DayRepo
	Stops       StopRepo
	Photos      PhotoRepo
	Reviews     ReviewRepo
	ResetTokens ResetTokenRepo
}

// NewTx builds a repo bundle over the given connection. Pass a pgx.Tx for
// transactional writes or a pool for ad-hoc use in tests.
func NewTx(db db) Tx {
	return Tx{
		Users:       NewUserRepo(db),
		Itineraries: NewItineraryRepo(db),
		Days:        NewDayRepo(db),
		Stops:       NewStopRepo(db),
		Photos:      NewPhotoRepo(db),
		Reviews:     NewReviewRepo(db),
		ResetTokens: NewResetTokenRepo(db),
	}
}

// TxRunner runs a function inside one database transaction, handing it a
// repo bundle scoped to that transaction. If fn returns an error the
// transaction is rolled back and the error is returned; otherwise the
// transaction is committed.
//
// The service layer depends on this interface, not the pgx implementation,
// so reconciler unit tests can run fn against in-memory mock repos.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// pgTxRunner is the pgxpool-backed TxRunner used in production.
type pgTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constructs a TxRunner over the given pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgTxRunner{pool: pool}
}

func (r *pgTxRunner) InTx(ctx context.Context, fn func(tx Tx) error) error {
	pgtx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TxRunner: begin: %w", err)
	}
	// Rollback after a successful commit is a no-op, so the deferred call
	// is safe on both paths.
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(NewTx(pgtx)); err != nil {
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TxRunner: commit: %w", err)
	}
	return nil
}
