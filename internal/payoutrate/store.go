package payoutrate

import (
	"sort"

	"go-payouts/internal/period"
)

type drafts struct {
	record  Value
	fixed   Value
	percent Value
}

func (d *drafts) get(m Mode) Value {
	switch m {
	case ModeRecord:
		return d.record
	case ModeFixed:
		return d.fixed
	case ModePercent:
		return d.percent
	}
	return Empty()
}

func (d *drafts) set(m Mode, v Value) {
	switch m {
	case ModeRecord:
		d.record = v
	case ModeFixed:
		d.fixed = v
	case ModePercent:
		d.percent = v
	}
}

func (d *drafts) empty() bool {
	return d.record.IsEmpty() && d.fixed.IsEmpty() && d.percent.IsEmpty()
}

// Store keeps the server rates of one period together with the operator's
// unsaved edits. It is not safe for concurrent use.
type Store struct {
	period period.Period
	server PeriodRates
	drafts map[string]*drafts
}

func NewStore(p period.Period, server PeriodRates) *Store {
	if server == nil {
		server = PeriodRates{}
	}
	return &Store{
		period: p,
		server: server,
		drafts: make(map[string]*drafts),
	}
}

func (s *Store) Period() period.Period {
	return s.period
}

// SetEditedValue clamps raw and stores it as the draft of the employee's
// mode. Blank input clears the draft so the server value shows again.
func (s *Store) SetEditedValue(employeeID string, mode Mode, raw string) (Value, error) {
	if !mode.Valid() {
		return Empty(), ErrInvalidMode
	}

	v := Clamp(mode, raw)

	d, ok := s.drafts[employeeID]
	if !ok {
		d = &drafts{}
		s.drafts[employeeID] = d
	}
	d.set(mode, v)
	if d.empty() {
		delete(s.drafts, employeeID)
	}
	return v, nil
}

func (s *Store) Draft(employeeID string, mode Mode) Value {
	if d, ok := s.drafts[employeeID]; ok {
		return d.get(mode)
	}
	return Empty()
}

func (s *Store) Server(employeeID string) EmployeeRates {
	r, ok := s.server[employeeID]
	if !ok {
		r.EmployeeID = employeeID
	}
	return r
}

// Rates resolves all three modes of an employee.
func (s *Store) Rates(employeeID string) Rates {
	server := s.Server(employeeID)
	return Rates{
		PerRecord: Resolve(s.Draft(employeeID, ModeRecord), server.Record.Value),
		Fixed:     Resolve(s.Draft(employeeID, ModeFixed), server.Fixed.Value),
		Percent:   Resolve(s.Draft(employeeID, ModePercent), server.Percent.Value),
	}
}

func (s *Store) HasDrafts(employeeID string) bool {
	_, ok := s.drafts[employeeID]
	return ok
}

// Dirty lists the employees with at least one unsaved edit.
func (s *Store) Dirty() []string {
	ids := make([]string, 0, len(s.drafts))
	for id := range s.drafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Pending returns the upserts a save must issue: for every dirty employee,
// each mode that has an input (draft or server), addressed to the known
// record id when there is one.
func (s *Store) Pending() []Record {
	var out []Record
	for _, id := range s.Dirty() {
		server := s.Server(id)
		for _, m := range Modes {
			in := Input(s.Draft(id, m), server.Slot(m).Value)
			n, ok := in.Int64()
			if !ok {
				continue
			}
			out = append(out, Record{
				ID:         server.Slot(m).ID,
				EmployeeID: id,
				Period:     s.period,
				Mode:       m,
				Rate:       n,
			})
		}
	}
	return out
}

// Replace installs freshly loaded server rates and drops every draft.
func (s *Store) Replace(server PeriodRates) {
	if server == nil {
		server = PeriodRates{}
	}
	s.server = server
	s.drafts = make(map[string]*drafts)
}
