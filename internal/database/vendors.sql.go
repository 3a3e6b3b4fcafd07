package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getVendor = `-- name: GetVendor :one
SELECT id, tier, data, locations, created_at, updated_at
FROM vendors
WHERE id = $1
`

func (q *Queries) GetVendor(ctx context.Context, id pgtype.UUID) (Vendor, error) {
	row := q.db.QueryRow(ctx, getVendor, id)
	var i Vendor
	err := row.Scan(
		&i.ID,
		&i.Tier,
		&i.Data,
		&i.Locations,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listVendorsByIDs = `-- name: ListVendorsByIDs :many
SELECT id, tier, data, locations, created_at, updated_at
FROM vendors
WHERE id = ANY($1::uuid[])
ORDER BY data->>'name', id
`

func (q *Queries) ListVendorsByIDs(ctx context.Context, ids []pgtype.UUID) ([]Vendor, error) {
	rows, err := q.db.Query(ctx, listVendorsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Vendor
	for rows.Next() {
		var i Vendor
		if err := rows.Scan(
			&i.ID,
			&i.Tier,
			&i.Data,
			&i.Locations,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertVendor = `-- name: InsertVendor :one
INSERT INTO vendors (tier, data, locations)
VALUES ($1, $2, $3)
RETURNING id, tier, data, locations, created_at, updated_at
`

type InsertVendorParams struct {
	Tier      string
	Data      []byte
	Locations []byte
}

func (q *Queries) InsertVendor(ctx context.Context, arg InsertVendorParams) (Vendor, error) {
	row := q.db.QueryRow(ctx, insertVendor, arg.Tier, arg.Data, arg.Locations)
	var i Vendor
	err := row.Scan(
		&i.ID,
		&i.Tier,
		&i.Data,
		&i.Locations,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const mergeVendorData = `-- name: MergeVendorData :execrows
UPDATE vendors
SET data = data || $2::jsonb,
    updated_at = now()
WHERE id = $1
`

type MergeVendorDataParams struct {
	ID      pgtype.UUID
	Changes []byte
}

func (q *Queries) MergeVendorData(ctx context.Context, arg MergeVendorDataParams) (int64, error) {
	result, err := q.db.Exec(ctx, mergeVendorData, arg.ID, arg.Changes)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateVendorTier = `-- name: UpdateVendorTier :execrows
UPDATE vendors
SET tier = $2,
    updated_at = now()
WHERE id = $1
`

type UpdateVendorTierParams struct {
	ID   pgtype.UUID
	Tier string
}

func (q *Queries) UpdateVendorTier(ctx context.Context, arg UpdateVendorTierParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateVendorTier, arg.ID, arg.Tier)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
