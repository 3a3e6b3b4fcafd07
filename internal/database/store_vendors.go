package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

// GetVendor loads one vendor. Ids that are not UUIDs cannot exist.
func (s *Store) GetVendor(ctx context.Context, id string) (*vendor.Vendor, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return nil, core.ErrVendorNotFound
	}
	row, err := s.q.GetVendor(ctx, pgID)
	if err != nil {
		if isNoRows(err) {
			return nil, core.ErrVendorNotFound
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return vendorFromRow(row)
}

// ListVendors loads the vendors among ids that exist.
func (s *Store) ListVendors(ctx context.Context, ids []string) ([]vendor.Vendor, error) {
	pgIDs := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		if u := ToPgUUID(id); u.Valid {
			pgIDs = append(pgIDs, u)
		}
	}
	if len(pgIDs) == 0 {
		return []vendor.Vendor{}, nil
	}

	rows, err := s.q.ListVendorsByIDs(ctx, pgIDs)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	out := make([]vendor.Vendor, 0, len(rows))
	for _, row := range rows {
		v, err := vendorFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// CreateVendor inserts a vendor and returns it with its generated id.
func (s *Store) CreateVendor(ctx context.Context, v vendor.Vendor) (*vendor.Vendor, error) {
	values := v.Values
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode vendor data: %w", err)
	}
	locs := v.Locations
	if locs == nil {
		locs = []vendor.Location{}
	}
	locations, err := json.Marshal(locs)
	if err != nil {
		return nil, fmt.Errorf("encode locations: %w", err)
	}

	row, err := s.q.InsertVendor(ctx, InsertVendorParams{
		Tier:      v.Tier.Normalize().String(),
		Data:      data,
		Locations: locations,
	})
	if err != nil {
		return nil, fmt.Errorf("insert vendor: %w", err)
	}
	return vendorFromRow(row)
}

// UpdateVendorFields merges changes into the vendor's data in a single
// UPDATE, so a row's changes land together or not at all.
func (s *Store) UpdateVendorFields(ctx context.Context, id string, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return core.ErrVendorNotFound
	}
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("encode vendor changes: %w", err)
	}

	n, err := s.q.MergeVendorData(ctx, MergeVendorDataParams{ID: pgID, Changes: payload})
	if err != nil {
		return fmt.Errorf("update vendor fields: %w", err)
	}
	if n == 0 {
		return core.ErrVendorNotFound
	}
	return nil
}

// UpdateVendorTier sets the vendor's tier.
func (s *Store) UpdateVendorTier(ctx context.Context, id string, t tier.Level) error {
	return updateTier(ctx, s.q, id, t)
}

func updateTier(ctx context.Context, q *Queries, id string, t tier.Level) error {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return core.ErrVendorNotFound
	}
	n, err := q.UpdateVendorTier(ctx, UpdateVendorTierParams{ID: pgID, Tier: t.Normalize().String()})
	if err != nil {
		return fmt.Errorf("update vendor tier: %w", err)
	}
	if n == 0 {
		return core.ErrVendorNotFound
	}
	return nil
}

func vendorFromRow(row Vendor) (*vendor.Vendor, error) {
	v := &vendor.Vendor{
		ID:        PgUUIDToString(row.ID),
		Tier:      tier.ParseOrFree(row.Tier),
		Values:    map[string]any{},
		Locations: []vendor.Location{},
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &v.Values); err != nil {
			return nil, fmt.Errorf("decode vendor %s data: %w", v.ID, err)
		}
	}
	if len(row.Locations) > 0 {
		if err := json.Unmarshal(row.Locations, &v.Locations); err != nil {
			return nil, fmt.Errorf("decode vendor %s locations: %w", v.ID, err)
		}
	}
	return v, nil
}
