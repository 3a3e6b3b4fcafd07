package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// defaultTiers builds the tier service from the built-in policy.
func defaultTiers(reg *fields.Registry) *tier.Service {
	tiers, err := tier.LoadService("", reg.AccessLevels())
	if err != nil {
		panic(err)
	}
	return tiers
}

type vendorUpdate struct {
	ID      string
	Changes map[string]any
}

type fakeVendors struct {
	mu        sync.Mutex
	vendors   map[string]*vendor.Vendor
	updates   []vendorUpdate
	getErr    error
	updateErr error
}

func newFakeVendors(vs ...vendor.Vendor) *fakeVendors {
	f := &fakeVendors{vendors: make(map[string]*vendor.Vendor)}
	for _, v := range vs {
		c := v.Clone()
		f.vendors[v.ID] = &c
	}
	return f
}

func (f *fakeVendors) GetVendor(_ context.Context, id string) (*vendor.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.vendors[id]
	if !ok {
		return nil, ErrVendorNotFound
	}
	c := v.Clone()
	return &c, nil
}

func (f *fakeVendors) ListVendors(_ context.Context, ids []string) ([]vendor.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []vendor.Vendor{}
	for _, id := range ids {
		if v, ok := f.vendors[id]; ok {
			out = append(out, v.Clone())
		}
	}
	return out, nil
}

func (f *fakeVendors) UpdateVendorFields(_ context.Context, id string, changes map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	v, ok := f.vendors[id]
	if !ok {
		return ErrVendorNotFound
	}
	copied := make(map[string]any, len(changes))
	for k, val := range changes {
		copied[k] = val
		if v.Values == nil {
			v.Values = make(map[string]any)
		}
		v.Values[k] = val
	}
	f.updates = append(f.updates, vendorUpdate{ID: id, Changes: copied})
	return nil
}

func (f *fakeVendors) UpdateVendorTier(_ context.Context, id string, t tier.Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vendors[id]
	if !ok {
		return ErrVendorNotFound
	}
	v.Tier = t
	return nil
}

func (f *fakeVendors) tierOf(id string) tier.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vendors[id].Tier
}

type fakeHistory struct {
	mu      sync.Mutex
	records []ImportHistory
	err     error
}

func (f *fakeHistory) CreateImportHistory(_ context.Context, h ImportHistory) (*ImportHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	h.ID = fmt.Sprintf("hist-%d", len(f.records)+1)
	f.records = append(f.records, h)
	return &h, nil
}

func (f *fakeHistory) ListImportHistory(_ context.Context, vendorID string, limit int) ([]ImportHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []ImportHistory{}
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].VendorID == vendorID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

type fakeRequests struct {
	mu       sync.Mutex
	requests map[string]*TierUpgradeRequest
	order    []string
	vendors  *fakeVendors
}

func newFakeRequests(vendors *fakeVendors) *fakeRequests {
	return &fakeRequests{requests: make(map[string]*TierUpgradeRequest), vendors: vendors}
}

func (f *fakeRequests) CreateTierRequest(_ context.Context, req TierUpgradeRequest) (*TierUpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = fmt.Sprintf("req-%d", len(f.order)+1)
	f.requests[req.ID] = &req
	f.order = append(f.order, req.ID)
	c := req
	return &c, nil
}

func (f *fakeRequests) GetTierRequest(_ context.Context, id string) (*TierUpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeRequests) FindPendingTierRequest(_ context.Context, vendorID string) (*TierUpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if r := f.requests[id]; r.VendorID == vendorID && r.Status == StatusPending {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRequests) ListTierRequests(_ context.Context, filter TierRequestFilter) ([]TierUpgradeRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []TierUpgradeRequest
	for i := len(f.order) - 1; i >= 0; i-- {
		r := f.requests[f.order[i]]
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Type != "" && r.RequestType != filter.Type {
			continue
		}
		if filter.VendorID != "" && r.VendorID != filter.VendorID {
			continue
		}
		matched = append(matched, *r)
	}
	total := len(matched)
	start := min(filter.Offset(), total)
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (f *fakeRequests) update(u TierRequestUpdate) (*TierUpgradeRequest, error) {
	r, ok := f.requests[u.ID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	if !CanTransition(r.Status, u.Status) {
		return nil, ErrInvalidTransition
	}
	at := u.ReviewedAt
	r.Status = u.Status
	r.ReviewedAt = &at
	r.ReviewedBy = u.ReviewedBy
	r.RejectionReason = u.RejectionReason
	c := *r
	return &c, nil
}

func (f *fakeRequests) UpdateTierRequestStatus(_ context.Context, u TierRequestUpdate) (*TierUpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.update(u)
}

func (f *fakeRequests) ApproveTierRequest(ctx context.Context, u TierRequestUpdate, newTier tier.Level) (*TierUpgradeRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.update(u)
	if err != nil {
		return nil, err
	}
	if err := f.vendors.UpdateVendorTier(ctx, r.VendorID, newTier); err != nil {
		return nil, err
	}
	return r, nil
}

type fakeAudit struct {
	mu       sync.Mutex
	entries  []AuditEntry
	err      error
	archived int64
	purged   int64
	calls    int
}

func (f *fakeAudit) InsertAuditLog(_ context.Context, e AuditEntry) (*AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e.ID = fmt.Sprintf("audit-%d", len(f.entries)+1)
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeAudit) filtered(filter AuditLogFilter) []AuditEntry {
	var out []AuditEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if filter.VendorID != "" && e.VendorID != filter.VendorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeAudit) ListAuditLog(_ context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.filtered(filter)
	start := min(filter.Offset, len(all))
	end := min(start+filter.Limit, len(all))
	return all[start:end], nil
}

func (f *fakeAudit) CountAuditLog(_ context.Context, filter AuditLogFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.filtered(filter))), nil
}

func (f *fakeAudit) ArchiveAuditLog(context.Context, int, int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.archived, nil
}

func (f *fakeAudit) PurgeAuditArchive(context.Context, int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purged, nil
}

func (f *fakeAudit) actions() []AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AuditAction, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

type testEnv struct {
	svc      *Service
	vendors  *fakeVendors
	history  *fakeHistory
	requests *fakeRequests
	audit    *fakeAudit
}

func newTestEnv(vs ...vendor.Vendor) *testEnv {
	env := &testEnv{
		vendors: newFakeVendors(vs...),
		history: &fakeHistory{},
		audit:   &fakeAudit{},
	}
	env.requests = newFakeRequests(env.vendors)
	svc, err := NewService(Deps{
		Vendors:  env.vendors,
		History:  env.history,
		Requests: env.requests,
		Audit:    env.audit,
		Now:      fixedClock,
	}, Config{MaxConcurrent: 2, MaxWaitTime: time.Second})
	if err != nil {
		panic(err)
	}
	env.svc = svc
	return env
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
