package web

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

// memStore is an in-memory implementation of every core store.
type memStore struct {
	mu       sync.Mutex
	vendors  map[string]*vendor.Vendor
	history  []core.ImportHistory
	requests []*core.TierUpgradeRequest
	audit    []core.AuditEntry
}

func newMemStore(vs ...vendor.Vendor) *memStore {
	m := &memStore{vendors: make(map[string]*vendor.Vendor)}
	for _, v := range vs {
		c := v.Clone()
		m.vendors[v.ID] = &c
	}
	return m
}

func (m *memStore) GetVendor(_ context.Context, id string) (*vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[id]
	if !ok {
		return nil, core.ErrVendorNotFound
	}
	c := v.Clone()
	return &c, nil
}

func (m *memStore) ListVendors(_ context.Context, ids []string) ([]vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []vendor.Vendor{}
	for _, id := range ids {
		if v, ok := m.vendors[id]; ok {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}

func (m *memStore) UpdateVendorFields(_ context.Context, id string, changes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vendors[id]
	if !ok {
		return core.ErrVendorNotFound
	}
	if v.Values == nil {
		v.Values = make(map[string]any)
	}
	for k, val := range changes {
		v.Values[k] = val
	}
	return nil
}

func (m *memStore) UpdateVendorTier(_ context.Context, id string, t tier.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setTier(id, t)
}

func (m *memStore) setTier(id string, t tier.Level) error {
	v, ok := m.vendors[id]
	if !ok {
		return core.ErrVendorNotFound
	}
	v.Tier = t
	return nil
}

func (m *memStore) tierOf(id string) tier.Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vendors[id].Tier
}

func (m *memStore) CreateImportHistory(_ context.Context, h core.ImportHistory) (*core.ImportHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = fmt.Sprintf("hist-%d", len(m.history)+1)
	m.history = append(m.history, h)
	return &h, nil
}

func (m *memStore) ListImportHistory(_ context.Context, vendorID string, limit int) ([]core.ImportHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []core.ImportHistory{}
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if m.history[i].VendorID == vendorID {
			out = append(out, m.history[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateTierRequest(_ context.Context, req core.TierUpgradeRequest) (*core.TierUpgradeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = fmt.Sprintf("req-%d", len(m.requests)+1)
	stored := req
	m.requests = append(m.requests, &stored)
	return &req, nil
}

func (m *memStore) find(id string) *core.TierUpgradeRequest {
	for _, r := range m.requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (m *memStore) GetTierRequest(_ context.Context, id string) (*core.TierUpgradeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(id)
	if r == nil {
		return nil, core.ErrRequestNotFound
	}
	c := *r
	return &c, nil
}

func (m *memStore) FindPendingTierRequest(_ context.Context, vendorID string) (*core.TierUpgradeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.VendorID == vendorID && r.Status == core.StatusPending {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListTierRequests(_ context.Context, f core.TierRequestFilter) ([]core.TierUpgradeRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []core.TierUpgradeRequest
	for i := len(m.requests) - 1; i >= 0; i-- {
		r := m.requests[i]
		if (f.Status == "" || r.Status == f.Status) &&
			(f.Type == "" || r.RequestType == f.Type) &&
			(f.VendorID == "" || r.VendorID == f.VendorID) {
			matched = append(matched, *r)
		}
	}
	start := min(f.Offset(), len(matched))
	end := min(start+f.Limit, len(matched))
	return matched[start:end], len(matched), nil
}

func (m *memStore) review(u core.TierRequestUpdate) (*core.TierUpgradeRequest, error) {
	r := m.find(u.ID)
	if r == nil {
		return nil, core.ErrRequestNotFound
	}
	if !core.CanTransition(r.Status, u.Status) {
		return nil, core.ErrInvalidTransition
	}
	at := u.ReviewedAt
	r.Status = u.Status
	r.ReviewedAt = &at
	r.ReviewedBy = u.ReviewedBy
	r.RejectionReason = u.RejectionReason
	c := *r
	return &c, nil
}

func (m *memStore) UpdateTierRequestStatus(_ context.Context, u core.TierRequestUpdate) (*core.TierUpgradeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.review(u)
}

func (m *memStore) ApproveTierRequest(_ context.Context, u core.TierRequestUpdate, t tier.Level) (*core.TierUpgradeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, err := m.review(u)
	if err != nil {
		return nil, err
	}
	if err := m.setTier(r.VendorID, t); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *memStore) InsertAuditLog(_ context.Context, e core.AuditEntry) (*core.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = fmt.Sprintf("audit-%d", len(m.audit)+1)
	m.audit = append(m.audit, e)
	return &e, nil
}

func (m *memStore) matchingAudit(f core.AuditLogFilter) []core.AuditEntry {
	var out []core.AuditEntry
	for i := len(m.audit) - 1; i >= 0; i-- {
		e := m.audit[i]
		if (f.VendorID == "" || e.VendorID == f.VendorID) && (f.Action == "" || e.Action == f.Action) {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) ListAuditLog(_ context.Context, f core.AuditLogFilter) ([]core.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matchingAudit(f)
	start := min(f.Offset, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], nil
}

func (m *memStore) CountAuditLog(_ context.Context, f core.AuditLogFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matchingAudit(f))), nil
}

func (m *memStore) ArchiveAuditLog(context.Context, int, int) (int64, error) { return 0, nil }

func (m *memStore) PurgeAuditArchive(context.Context, int) (int64, error) { return 0, nil }
