package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
)

// Repository aggregates every repository so services take one dependency.
type Repository struct {
	User             UserRepository
	Station          StationRepository
	Driver           DriverRepository
	Van              VanRepository
	Leave            LeaveRepository
	WorkingHours     WorkingHoursRepository
	WorkingHoursEdit WorkingHoursEditRepository
	Maintenance      MaintenanceLogRepository

	// Tx runs a unit of work. Tests substitute an in-memory implementation.
	Tx Transactor
}

// Transactor runs fn against a Repository bound to one transaction,
// committing when fn returns nil and rolling back otherwise.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository wires the gorm implementations.
func NewRepository(db *gorm.DB) *Repository {
	r := withDB(db)
	r.Tx = &gormTransactor{db: db}
	return r
}

func withDB(db *gorm.DB) *Repository {
	return &Repository{
		User:             NewUserRepo(db),
		Station:          NewStationRepo(db),
		Driver:           NewDriverRepo(db),
		Van:              NewVanRepo(db),
		Leave:            NewLeaveRepo(db),
		WorkingHours:     NewWorkingHoursRepo(db),
		WorkingHoursEdit: NewWorkingHoursEditRepo(db),
		Maintenance:      NewMaintenanceLogRepo(db),
	}
}

// Transaction see Transactor.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.Tx.Transaction(ctx, fn)
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := withDB(tx)
		// nested calls join the outer transaction
		txRepo.Tx = joinedTransactor{repo: txRepo}
		return fn(txRepo)
	})
}

type joinedTransactor struct {
	repo *Repository
}

func (j joinedTransactor) Transaction(_ context.Context, fn func(tx *Repository) error) error {
	return fn(j.repo)
}

// dateArg binds a civil date as YYYY-MM-DD so the server never shifts it
// through a session time zone.
func dateArg(t time.Time) string {
	return model.CivilDate(t).Format(model.DateLayout)
}

// softDelete marks a row deleted.
func softDelete(ctx context.Context, db *gorm.DB, m interface{}, idColumn, id, deletedBy string) error {
	res := db.WithContext(ctx).
		Model(m).
		Where(idColumn+" = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
