package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ong_equipment_tool/apperr"
	"ong_equipment_tool/metrics"
	"ong_equipment_tool/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FineRate supplies fine_per_day. Implementations never fail; they fall
// back to zero.
type FineRate interface {
	FinePerDay(ctx context.Context) decimal.Decimal
}

type Repo struct {
	DB          *gorm.DB
	Log         *zap.Logger
	Metrics     *metrics.Recorder
	Fines       FineRate
	LockTimeout time.Duration
	Now         func() time.Time

	locks *keyedLocks
}

func NewRepo(db *gorm.DB, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{
		DB:          db,
		Log:         log,
		LockTimeout: DefaultLockTimeout,
		Now:         func() time.Time { return time.Now().UTC() },
		locks:       newKeyedLocks(),
	}
}

// Actor is the authenticated user behind a mutation.
type Actor struct {
	ID       string
	Username string
}

func (a Actor) ref() *string {
	if a.ID == "" {
		return nil
	}
	id := a.ID
	return &id
}

func (r *Repo) now() time.Time { return r.Now().UTC() }

func isPostgres(tx *gorm.DB) bool { return tx.Dialector.Name() == DriverPostgres }

// inTx runs fn in one transaction. Equipment locks taken through the locker
// are released after commit or rollback.
func (r *Repo) inTx(ctx context.Context, what string, fn func(tx *gorm.DB, lk *locker) error) error {
	lk := &locker{repo: r, ctx: ctx, held: map[string]func(){}}
	defer lk.releaseAll()

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, lk)
	})
	if err == nil {
		return nil
	}
	err = apperr.FromStore(err, what)
	if apperr.KindOf(err) == apperr.KindInternal {
		r.Log.Error("store failure", zap.String("op", what), zap.Bool("retryable", apperr.IsRetryable(err)), zap.Error(err))
	}
	return err
}

// observe records metrics for a ledger operation; use with a named error.
func (r *Repo) observe(ledger, op string, start time.Time, err *error) {
	result := "ok"
	if *err != nil {
		result = string(apperr.KindOf(*err))
	}
	r.Metrics.Observe(ledger, op, result, time.Since(start))
}

// locker takes row locks inside one transaction. Postgres gets
// SELECT ... FOR UPDATE bounded by lock_timeout; sqlite has no row locks,
// so equipment ids are guarded by an in-process keyed mutex instead.
type locker struct {
	repo       *Repo
	ctx        context.Context
	held       map[string]func()
	timeoutSet bool
}

func (lk *locker) releaseAll() {
	for _, release := range lk.held {
		release()
	}
}

func (lk *locker) pgTimeout(tx *gorm.DB) error {
	if lk.timeoutSet {
		return nil
	}
	ms := lk.repo.LockTimeout.Milliseconds()
	if ms <= 0 {
		ms = DefaultLockTimeout.Milliseconds()
	}
	if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)).Error; err != nil {
		return err
	}
	lk.timeoutSet = true
	return nil
}

// row loads one ledger row by id, locked on postgres.
func (lk *locker) row(tx *gorm.DB, dst any, what, id string) error {
	q := tx
	if isPostgres(tx) {
		if err := lk.pgTimeout(tx); err != nil {
			return apperr.FromStore(err, what)
		}
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return apperr.FromStore(q.First(dst, "id = ?", id).Error, what)
}

// equipment locks and loads one equipment row.
func (lk *locker) equipment(tx *gorm.DB, id string) (*models.Equipment, error) {
	var eq models.Equipment
	if isPostgres(tx) {
		if err := lk.row(tx, &eq, "equipment", id); err != nil {
			return nil, err
		}
		return &eq, nil
	}

	if _, ok := lk.held[id]; !ok {
		release, err := lk.repo.locks.acquire(lk.ctx, id, lk.repo.LockTimeout)
		if err != nil {
			return nil, err
		}
		lk.held[id] = release
	}
	if err := tx.First(&eq, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, "equipment")
	}
	return &eq, nil
}

// equipments locks several rows in ascending id order.
func (lk *locker) equipments(tx *gorm.DB, ids ...string) (map[string]*models.Equipment, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	out := make(map[string]*models.Equipment, len(sorted))
	for _, id := range sorted {
		if _, ok := out[id]; ok {
			continue
		}
		eq, err := lk.equipment(tx, id)
		if err != nil {
			return nil, err
		}
		out[id] = eq
	}
	return out, nil
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

func pageBounds(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// paginate counts q and loads one page of it.
func paginate[T any](q *gorm.DB, page, size int, order string, preload ...string) (*Page[T], error) {
	page, size = pageBounds(page, size)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	find := q.Session(&gorm.Session{})
	for _, p := range preload {
		find = find.Preload(p)
	}
	items := make([]T, 0, size)
	if err := find.Order(order).Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Total: total, Page: page, Size: size}, nil
}
