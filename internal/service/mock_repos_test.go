package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
	"fleetdesk/backend/pkg/redis"
)

// ── in-memory store shared by the mock repositories ──
//
// Rows are stored and handed out by value so a service mutating a loaded
// row does not touch the store until it calls Update, like a real database.

type memDB struct {
	users    map[string]model.User
	stations map[string]model.Station
	drivers  map[string]model.Driver
	vans     map[string]model.Van
	leaves   map[string]model.DriverLeave
	hours    map[string]model.WorkingHoursRecord
	edits    []model.WorkingHoursEdit
	logs     map[string]model.MaintenanceLog
	seq      int

	// injected failures
	failEditCreate   error
	failHoursList    error
	failRaiseMileage error
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[string]model.User),
		stations: make(map[string]model.Station),
		drivers:  make(map[string]model.Driver),
		vans:     make(map[string]model.Van),
		leaves:   make(map[string]model.DriverLeave),
		hours:    make(map[string]model.WorkingHoursRecord),
		logs:     make(map[string]model.MaintenanceLog),
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memSnapshot struct {
	users    map[string]model.User
	stations map[string]model.Station
	drivers  map[string]model.Driver
	vans     map[string]model.Van
	leaves   map[string]model.DriverLeave
	hours    map[string]model.WorkingHoursRecord
	edits    []model.WorkingHoursEdit
	logs     map[string]model.MaintenanceLog
}

func (db *memDB) snapshot() memSnapshot {
	return memSnapshot{
		users:    copyMap(db.users),
		stations: copyMap(db.stations),
		drivers:  copyMap(db.drivers),
		vans:     copyMap(db.vans),
		leaves:   copyMap(db.leaves),
		hours:    copyMap(db.hours),
		edits:    append([]model.WorkingHoursEdit(nil), db.edits...),
		logs:     copyMap(db.logs),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.users, db.stations, db.drivers, db.vans = s.users, s.stations, s.drivers, s.vans
	db.leaves, db.hours, db.edits, db.logs = s.leaves, s.hours, s.edits, s.logs
}

// memTx rolls the store back when fn fails.
type memTx struct {
	db   *memDB
	repo *repository.Repository
}

func (t *memTx) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	snap := t.db.snapshot()
	if err := fn(t.repo); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

func newMockRepository() (*repository.Repository, *memDB) {
	db := newMemDB()
	repo := &repository.Repository{
		User:             &mockUserRepo{db},
		Station:          &mockStationRepo{db},
		Driver:           &mockDriverRepo{db},
		Van:              &mockVanRepo{db},
		Leave:            &mockLeaveRepo{db},
		WorkingHours:     &mockWorkingHoursRepo{db},
		WorkingHoursEdit: &mockEditRepo{db},
		Maintenance:      &mockMaintenanceRepo{db},
	}
	repo.Tx = &memTx{db: db, repo: repo}
	return repo, db
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.UserID == "" {
		u.UserID = m.db.nextID("user")
	}
	u.Version = 1
	m.db.users[u.UserID] = *u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.db.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if u.StationID != nil {
		if st, ok := m.db.stations[*u.StationID]; ok {
			u.Station = &st
		}
	}
	return &u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.db.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *model.User) error {
	stored, ok := m.db.users[u.UserID]
	if !ok || stored.Version != u.Version {
		return pkgerrors.ErrOptimisticLock
	}
	u.Version++
	m.db.users[u.UserID] = *u
	return nil
}

func (m *mockUserRepo) List(_ context.Context, stationID string, offset, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range m.db.users {
		if stationID == "" || (u.StationID != nil && *u.StationID == stationID) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, offset, limit), int64(len(out)), nil
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// ── Mock StationRepository ──

type mockStationRepo struct{ db *memDB }

func (m *mockStationRepo) Create(_ context.Context, s *model.Station) error {
	for _, existing := range m.db.stations {
		if existing.Code == s.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.StationID == "" {
		s.StationID = m.db.nextID("station")
	}
	s.Version = 1
	m.db.stations[s.StationID] = *s
	return nil
}

func (m *mockStationRepo) GetByID(_ context.Context, id string) (*model.Station, error) {
	if s, ok := m.db.stations[id]; ok {
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStationRepo) GetByCode(_ context.Context, code string) (*model.Station, error) {
	for _, s := range m.db.stations {
		if s.Code == code {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStationRepo) List(_ context.Context, activeOnly bool) ([]model.Station, error) {
	var out []model.Station
	for _, s := range m.db.stations {
		if !activeOnly || s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockStationRepo) Update(_ context.Context, s *model.Station) error {
	stored, ok := m.db.stations[s.StationID]
	if !ok || stored.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	m.db.stations[s.StationID] = *s
	return nil
}

func (m *mockStationRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.db.stations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.stations, id)
	return nil
}

func (m *mockStationRepo) CountDrivers(_ context.Context, stationID string) (int64, error) {
	var n int64
	for _, d := range m.db.drivers {
		if d.StationID == stationID {
			n++
		}
	}
	return n, nil
}

// ── Mock DriverRepository ──

type mockDriverRepo struct{ db *memDB }

func (m *mockDriverRepo) Create(_ context.Context, d *model.Driver) error {
	for _, existing := range m.db.drivers {
		if existing.PersonnelNo == d.PersonnelNo {
			return gorm.ErrDuplicatedKey
		}
	}
	if d.DriverID == "" {
		d.DriverID = m.db.nextID("driver")
	}
	d.Version = 1
	m.db.drivers[d.DriverID] = *d
	return nil
}

func (m *mockDriverRepo) GetByID(_ context.Context, id string) (*model.Driver, error) {
	if d, ok := m.db.drivers[id]; ok {
		return &d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func sortDrivers(ds []model.Driver) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].LastName != ds[j].LastName {
			return ds[i].LastName < ds[j].LastName
		}
		return ds[i].FirstName < ds[j].FirstName
	})
}

func (m *mockDriverRepo) ListByStation(_ context.Context, stationID string) ([]model.Driver, error) {
	var out []model.Driver
	for _, d := range m.db.drivers {
		if d.StationID == stationID && d.IsActive {
			out = append(out, d)
		}
	}
	sortDrivers(out)
	return out, nil
}

func (m *mockDriverRepo) List(_ context.Context, f repository.DriverFilter, offset, limit int) ([]model.Driver, int64, error) {
	var out []model.Driver
	for _, d := range m.db.drivers {
		if f.StationID != "" && d.StationID != f.StationID {
			continue
		}
		if f.ActiveOnly && !d.IsActive {
			continue
		}
		if f.Search != "" && !strings.HasPrefix(strings.ToLower(d.LastName), strings.ToLower(f.Search)) &&
			!strings.HasPrefix(strings.ToLower(d.FirstName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, d)
	}
	sortDrivers(out)
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockDriverRepo) Update(_ context.Context, d *model.Driver) error {
	stored, ok := m.db.drivers[d.DriverID]
	if !ok || stored.Version != d.Version {
		return pkgerrors.ErrOptimisticLock
	}
	d.Version++
	m.db.drivers[d.DriverID] = *d
	return nil
}

func (m *mockDriverRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.db.drivers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.drivers, id)
	return nil
}

// ── Mock VanRepository ──

type mockVanRepo struct{ db *memDB }

func (m *mockVanRepo) Create(_ context.Context, v *model.Van) error {
	if v.VanID == "" {
		v.VanID = m.db.nextID("van")
	}
	v.Version = 1
	m.db.vans[v.VanID] = *v
	return nil
}

func (m *mockVanRepo) GetByID(_ context.Context, id string) (*model.Van, error) {
	if v, ok := m.db.vans[id]; ok {
		return &v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVanRepo) List(_ context.Context, stationID, status string, offset, limit int) ([]model.Van, int64, error) {
	var out []model.Van
	for _, v := range m.db.vans {
		if (stationID == "" || v.StationID == stationID) && (status == "" || v.Status == status) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlateNumber < out[j].PlateNumber })
	return page(out, offset, limit), int64(len(out)), nil
}

func (m *mockVanRepo) Update(_ context.Context, v *model.Van) error {
	stored, ok := m.db.vans[v.VanID]
	if !ok || stored.Version != v.Version {
		return pkgerrors.ErrOptimisticLock
	}
	v.Version++
	m.db.vans[v.VanID] = *v
	return nil
}

func (m *mockVanRepo) RaiseMileage(_ context.Context, id string, km int) error {
	if m.db.failRaiseMileage != nil {
		return m.db.failRaiseMileage
	}
	v, ok := m.db.vans[id]
	if ok && v.Mileage < km {
		v.Mileage = km
		v.Version++
		m.db.vans[id] = v
	}
	return nil
}

func (m *mockVanRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.db.vans[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.vans, id)
	return nil
}

// ── Mock LeaveRepository ──

type mockLeaveRepo struct{ db *memDB }

func (m *mockLeaveRepo) Create(_ context.Context, l *model.DriverLeave) error {
	if l.LeaveID == "" {
		l.LeaveID = m.db.nextID("leave")
	}
	m.db.leaves[l.LeaveID] = *l
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id string) (*model.DriverLeave, error) {
	if l, ok := m.db.leaves[id]; ok {
		return &l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.db.leaves[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.leaves, id)
	return nil
}

func overlaps(l model.DriverLeave, from, to time.Time) bool {
	return !model.CivilDate(l.StartDate).After(model.CivilDate(to)) &&
		!model.CivilDate(l.EndDate).Before(model.CivilDate(from))
}

func (m *mockLeaveRepo) ListByStationAndDate(_ context.Context, stationID string, date time.Time) ([]model.DriverLeave, error) {
	var out []model.DriverLeave
	for _, l := range m.db.leaves {
		if l.StationID == stationID && l.Covers(date) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLeaveRepo) ListByStationAndRange(_ context.Context, stationID string, from, to time.Time) ([]model.DriverLeave, error) {
	var out []model.DriverLeave
	for _, l := range m.db.leaves {
		if l.StationID == stationID && overlaps(l, from, to) {
			if d, ok := m.db.drivers[l.DriverID]; ok {
				l.Driver = &d
			}
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *mockLeaveRepo) ListOverlapping(_ context.Context, driverID string, from, to time.Time) ([]model.DriverLeave, error) {
	var out []model.DriverLeave
	for _, l := range m.db.leaves {
		if l.DriverID == driverID && overlaps(l, from, to) {
			out = append(out, l)
		}
	}
	return out, nil
}

// ── Mock WorkingHoursRepository ──
//
// Create emulates the partial unique index on (driver_id, work_date)
// WHERE status <> 'rejected'.

type mockWorkingHoursRepo struct{ db *memDB }

func (m *mockWorkingHoursRepo) Create(_ context.Context, rec *model.WorkingHoursRecord) error {
	for _, r := range m.db.hours {
		if r.DriverID == rec.DriverID && r.WorkDate.Equal(rec.WorkDate) && r.Status != model.WorkingHoursRejected {
			return gorm.ErrDuplicatedKey
		}
	}
	if rec.WorkingHoursID == "" {
		rec.WorkingHoursID = m.db.nextID("wh")
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	rec.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.db.seq, 0, time.UTC)
	stored := *rec
	stored.Driver, stored.Van, stored.Edits = nil, nil, nil
	m.db.hours[rec.WorkingHoursID] = stored
	return nil
}

func (m *mockWorkingHoursRepo) withRelations(r model.WorkingHoursRecord) model.WorkingHoursRecord {
	if d, ok := m.db.drivers[r.DriverID]; ok {
		r.Driver = &d
	}
	if r.VanID != nil {
		if v, ok := m.db.vans[*r.VanID]; ok {
			r.Van = &v
		}
	}
	return r
}

func (m *mockWorkingHoursRepo) GetByID(_ context.Context, id string) (*model.WorkingHoursRecord, error) {
	r, ok := m.db.hours[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	r = m.withRelations(r)
	for i := range m.db.edits {
		if m.db.edits[i].WorkingHoursID == id {
			e := m.db.edits[i]
			r.Edits = append(r.Edits, &e)
		}
	}
	return &r, nil
}

func (m *mockWorkingHoursRepo) Update(_ context.Context, rec *model.WorkingHoursRecord) error {
	stored, ok := m.db.hours[rec.WorkingHoursID]
	if !ok || stored.Version != rec.Version {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version++
	next := *rec
	next.Driver, next.Van, next.Edits = nil, nil, nil
	m.db.hours[rec.WorkingHoursID] = next
	return nil
}

func (m *mockWorkingHoursRepo) list(keep func(r model.WorkingHoursRecord) bool) ([]model.WorkingHoursRecord, error) {
	if m.db.failHoursList != nil {
		return nil, m.db.failHoursList
	}
	var out []model.WorkingHoursRecord
	for _, r := range m.db.hours {
		if keep(r) {
			out = append(out, m.withRelations(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WorkDate.Equal(out[j].WorkDate) {
			return out[i].WorkDate.Before(out[j].WorkDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(model.CivilDate(from)) && !d.After(model.CivilDate(to))
}

func (m *mockWorkingHoursRepo) ListByDriverAndDate(_ context.Context, driverID string, date time.Time) ([]model.WorkingHoursRecord, error) {
	return m.list(func(r model.WorkingHoursRecord) bool {
		return r.DriverID == driverID && r.WorkDate.Equal(model.CivilDate(date))
	})
}

func (m *mockWorkingHoursRepo) ListByStationAndDate(_ context.Context, stationID string, date time.Time) ([]model.WorkingHoursRecord, error) {
	return m.list(func(r model.WorkingHoursRecord) bool {
		return r.StationID == stationID && r.WorkDate.Equal(model.CivilDate(date))
	})
}

func (m *mockWorkingHoursRepo) ListByStationAndRange(_ context.Context, stationID string, from, to time.Time) ([]model.WorkingHoursRecord, error) {
	return m.list(func(r model.WorkingHoursRecord) bool {
		return r.StationID == stationID && inRange(r.WorkDate, from, to)
	})
}

func (m *mockWorkingHoursRepo) ListByDriverAndRange(_ context.Context, driverID string, from, to time.Time) ([]model.WorkingHoursRecord, error) {
	return m.list(func(r model.WorkingHoursRecord) bool {
		return r.DriverID == driverID && inRange(r.WorkDate, from, to)
	})
}

// ── Mock WorkingHoursEditRepository ──

type mockEditRepo struct{ db *memDB }

func (m *mockEditRepo) Create(_ context.Context, e *model.WorkingHoursEdit) error {
	if m.db.failEditCreate != nil {
		return m.db.failEditCreate
	}
	if e.EditID == "" {
		e.EditID = m.db.nextID("edit")
	}
	m.db.edits = append(m.db.edits, *e)
	return nil
}

func (m *mockEditRepo) ListByRecord(_ context.Context, recordID string) ([]model.WorkingHoursEdit, error) {
	var out []model.WorkingHoursEdit
	for _, e := range m.db.edits {
		if e.WorkingHoursID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ── Mock MaintenanceLogRepository ──

type mockMaintenanceRepo struct{ db *memDB }

func (m *mockMaintenanceRepo) Create(_ context.Context, l *model.MaintenanceLog) error {
	if l.MaintenanceLogID == "" {
		l.MaintenanceLogID = m.db.nextID("mlog")
	}
	m.db.logs[l.MaintenanceLogID] = *l
	return nil
}

func (m *mockMaintenanceRepo) GetByID(_ context.Context, id string) (*model.MaintenanceLog, error) {
	if l, ok := m.db.logs[id]; ok {
		return &l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMaintenanceRepo) ListByVan(_ context.Context, vanID string) ([]model.MaintenanceLog, error) {
	var out []model.MaintenanceLog
	for _, l := range m.db.logs {
		if l.VanID == vanID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceDate.After(out[j].ServiceDate) })
	return out, nil
}

func (m *mockMaintenanceRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.db.logs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.db.logs, id)
	return nil
}

// ── infrastructure fakes ──

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
	failAll error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll != nil {
		return c.failAll
	}
	raw, ok := c.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll != nil {
		return c.failAll
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, keys...)
	if c.failAll != nil {
		return c.failAll
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

type publishedEvent struct {
	queue string
	body  any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, queue string, v any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{queue: queue, body: v})
	return nil
}

type fakeBlacklist struct {
	revoked map[string]time.Duration
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

type fakeStore struct {
	objects map[string][]byte
	failPut error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.failPut != nil {
		return s.failPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStore) PresignedURL(_ context.Context, key, filename string) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://objects.test/" + key + "?filename=" + filename, nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}
