package journal

import (
	"context"
	"database/sql"
	"errors"

	journalerrors "go-payouts/internal/journal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *Run) error
	FindByPeriod(ctx context.Context, period string, limit int) ([]Run, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db = db.Session(&gorm.Session{NewDB: true})
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, run *Run) error {
	err := r.conn(ctx).Create(run).Error
	if isUniqueViolation(err) {
		return journalerrors.ErrDuplicateRequest
	}
	return err
}

func (r *repository) FindByPeriod(ctx context.Context, period string, limit int) ([]Run, error) {
	var runs []Run
	err := r.conn(ctx).
		Where("period = ?", period).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
