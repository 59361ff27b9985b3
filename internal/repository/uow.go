package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/orders-service/internal/port"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories run
// their statements against whichever context the unit of work currently holds.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UnitOfWork binds the order, product and customer repositories to one shared
// transactional context. An instance is scoped to a single request and must
// not be shared between goroutines.
type UnitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	orders    *orderRepository
	products  *productRepository
	customers *customerRepository
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	u := &UnitOfWork{pool: pool}
	u.orders = &orderRepository{db: u}
	u.products = &productRepository{db: u}
	u.customers = &customerRepository{db: u}
	return u
}

func (u *UnitOfWork) Orders() port.OrderRepository       { return u.orders }
func (u *UnitOfWork) Products() port.ProductRepository   { return u.products }
func (u *UnitOfWork) Customers() port.CustomerRepository { return u.customers }

// querier returns the open transaction if there is one, the pool otherwise.
func (u *UnitOfWork) querier() querier {
	if u.tx != nil {
		return u.tx
	}
	return u.pool
}

// Begin is a no-op when a transaction is already open: at most one active
// transaction per unit of work instance.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return nil
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	u.tx = tx

	return nil
}

// Commit flushes and commits the open transaction. Statements issued between
// Begin and Commit run eagerly inside the transaction, so a failed commit
// leaves nothing partially applied.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil

	if err := tx.Commit(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Error().Err(rbErr).Msg("repository: failed to rollback after commit failure")
		}
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}

	return nil
}

// Rollback is safe on every exit path: it is a no-op without an open
// transaction and tolerates an already-closed one.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil

	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("repository: failed to rollback transaction: %w", err)
	}

	return nil
}
