package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"spotrank/internal/domain"
)

// Batched lookups stay below the server's placeholder limit.
const maxInList = 500

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}
func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPlace(ctx context.Context, p domain.Place) error {
	_, err := r.db.ExecContext(ctx, upsertPlaceSQL,
		p.ID,
		valStr(p.Name),
		valStr(p.City),
		valStr(p.Country),
		valStr(p.Address),
		valF64(p.Lat),
		valF64(p.Lon),
		jsonList(p.Photos),
		jsonList(p.Types),
		valJSON(p.RawJSON),
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, placeID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, placeID, status, reason)
	return err
}

// GetPlaces returns metadata keyed by place id. Unknown ids are simply absent.
func (r *Repo) GetPlaces(ctx context.Context, ids []string) (map[string]domain.Place, error) {
	out := make(map[string]domain.Place, len(ids))
	for start := 0; start < len(ids); start += maxInList {
		end := start + maxInList
		if end > len(ids) {
			end = len(ids)
		}
		if err := r.getPlacesBatch(ctx, ids[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) getPlacesBatch(ctx context.Context, ids []string, out map[string]domain.Place) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := getPlacesPrefixSQL + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Place
		var name, city, country, addr sql.NullString
		var lat, lon sql.NullFloat64
		var photosJSON, typesJSON []byte
		if err := rows.Scan(&p.ID, &name, &city, &country, &addr, &lat, &lon, &photosJSON, &typesJSON); err != nil {
			return err
		}
		p.Name = nullStr(name)
		p.City = nullStr(city)
		p.Country = nullStr(country)
		p.Address = nullStr(addr)
		if lat.Valid && lon.Valid {
			la, lo := lat.Float64, lon.Float64
			p.Lat, p.Lon = &la, &lo
		}
		_ = json.Unmarshal(photosJSON, &p.Photos)
		_ = json.Unmarshal(typesJSON, &p.Types)
		out[p.ID] = p
	}
	return rows.Err()
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	s := ns.String
	return &s
}
