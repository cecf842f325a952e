// Package mock provides a function-field mock of the db interfaces for
// tests. Unset fields panic, so a test touching an unexpected store method
// fails loudly instead of passing by accident.
package mock

import (
	"time"

	"github.com/gitinsky/gatekeeper/db"
)

// Db implements db.DbApp. Assign only the funcs the test exercises.
type Db struct {
	GetByExternalIDFunc func(externalID string) (*db.Identity, error)
	GetByEmailFunc      func(email string) (*db.Identity, error)
	UpsertPendingFunc   func(p db.PendingUpsert) error
	ConsumeCodeFunc     func(externalID, code string, now time.Time) (bool, error)
	ExpireSessionFunc   func(externalID string, cutoff time.Time) (bool, error)
	TouchFunc           func(externalID string, now time.Time) error
	SetAdminFunc        func(externalID string, isAdmin bool) error
	SetStatusFunc       func(externalID string, status db.Status) error

	InsertInteractionFunc func(it db.Interaction) error
	GetStatsFunc          func() (*db.Stats, error)

	ClearDeadCodesFunc    func(cutoff time.Time) (int64, error)
	PruneInteractionsFunc func(cutoff time.Time) (int64, error)
}

var _ db.DbApp = (*Db)(nil)

func (m *Db) GetByExternalID(externalID string) (*db.Identity, error) {
	if m.GetByExternalIDFunc != nil {
		return m.GetByExternalIDFunc(externalID)
	}
	panic("mock: GetByExternalID not implemented")
}

func (m *Db) GetByEmail(email string) (*db.Identity, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(email)
	}
	panic("mock: GetByEmail not implemented")
}

func (m *Db) UpsertPending(p db.PendingUpsert) error {
	if m.UpsertPendingFunc != nil {
		return m.UpsertPendingFunc(p)
	}
	panic("mock: UpsertPending not implemented")
}

func (m *Db) ConsumeCode(externalID, code string, now time.Time) (bool, error) {
	if m.ConsumeCodeFunc != nil {
		return m.ConsumeCodeFunc(externalID, code, now)
	}
	panic("mock: ConsumeCode not implemented")
}

func (m *Db) ExpireSession(externalID string, cutoff time.Time) (bool, error) {
	if m.ExpireSessionFunc != nil {
		return m.ExpireSessionFunc(externalID, cutoff)
	}
	panic("mock: ExpireSession not implemented")
}

func (m *Db) Touch(externalID string, now time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(externalID, now)
	}
	panic("mock: Touch not implemented")
}

func (m *Db) SetAdmin(externalID string, isAdmin bool) error {
	if m.SetAdminFunc != nil {
		return m.SetAdminFunc(externalID, isAdmin)
	}
	panic("mock: SetAdmin not implemented")
}

func (m *Db) SetStatus(externalID string, status db.Status) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(externalID, status)
	}
	panic("mock: SetStatus not implemented")
}

func (m *Db) InsertInteraction(it db.Interaction) error {
	if m.InsertInteractionFunc != nil {
		return m.InsertInteractionFunc(it)
	}
	panic("mock: InsertInteraction not implemented")
}

func (m *Db) GetStats() (*db.Stats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc()
	}
	panic("mock: GetStats not implemented")
}

func (m *Db) ClearDeadCodes(cutoff time.Time) (int64, error) {
	if m.ClearDeadCodesFunc != nil {
		return m.ClearDeadCodesFunc(cutoff)
	}
	panic("mock: ClearDeadCodes not implemented")
}

func (m *Db) PruneInteractions(cutoff time.Time) (int64, error) {
	if m.PruneInteractionsFunc != nil {
		return m.PruneInteractionsFunc(cutoff)
	}
	panic("mock: PruneInteractions not implemented")
}
