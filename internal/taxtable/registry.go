package taxtable

import (
	"sort"
	"sync/atomic"
	"time"

	"paycompliance/internal/apperror"
)

type snapshot struct {
	tables   map[Key]*Table
	loadedAt time.Time
	source   string
}

// Registry serves immutable tables by (country, year). The set is loaded
// once at construction and replaced only by an explicit Reload.
type Registry struct {
	source  Source
	current atomic.Pointer[snapshot]
	now     func() time.Time
}

// Load builds a registry from src. It fails if any table is invalid or
// duplicated.
func Load(src Source) (*Registry, error) {
	r := &Registry{source: src, now: time.Now}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the source and atomically swaps in the new set. On error
// the previous set stays active.
func (r *Registry) Reload() error {
	tables, err := r.source.Load()
	if err != nil {
		return apperror.Wrap(err, apperror.CodeConfiguration, "failed to load tax tables", apperror.ErrConfiguration.HTTPStatus)
	}

	next := &snapshot{
		tables:   make(map[Key]*Table, len(tables)),
		loadedAt: r.now(),
		source:   r.source.Describe(),
	}
	for _, t := range tables {
		k := t.key()
		if _, dup := next.tables[k]; dup {
			return apperror.Configuration("duplicate tax table %s", k)
		}
		next.tables[k] = t
	}

	r.current.Store(next)
	return nil
}

// Table returns the table for country and year, or a configuration error.
// There is no fallback to another country or year.
func (r *Registry) Table(country string, year int) (*Table, error) {
	k := Key{Country: NormalizeCountry(country), Year: year}
	snap := r.current.Load()
	if snap != nil {
		if t, ok := snap.tables[k]; ok {
			return t, nil
		}
	}
	return nil, apperror.Configuration("no tax table for %s", k)
}

// Keys lists the loaded tables ordered by country then year.
func (r *Registry) Keys() []Key {
	snap := r.current.Load()
	if snap == nil {
		return nil
	}
	keys := make([]Key, 0, len(snap.tables))
	for k := range snap.tables {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].Year < keys[j].Year
	})
	return keys
}

// LoadedAt reports when the active set was loaded and from where.
func (r *Registry) LoadedAt() (time.Time, string) {
	snap := r.current.Load()
	if snap == nil {
		return time.Time{}, ""
	}
	return snap.loadedAt, snap.source
}

// RequirePayroll fails unless a payroll-capable table exists for the pair.
// Used at startup for the deployment's default country.
func (r *Registry) RequirePayroll(country string, year int) error {
	t, err := r.Table(country, year)
	if err != nil {
		return err
	}
	if !t.HasPayroll() {
		return apperror.Configuration("tax table %s has no payroll sections", t.key())
	}
	return nil
}
