package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/izikbr/calorific2-app/internal/model"
)

// SQLiteEstimateCache keeps estimator answers in the estimate_cache table.
type SQLiteEstimateCache struct {
	DB *sql.DB
}

func NewSQLiteEstimateCache(db *sql.DB) *SQLiteEstimateCache {
	return &SQLiteEstimateCache{DB: db}
}

func (c *SQLiteEstimateCache) Get(ctx context.Context, key string) ([]model.FoodEstimate, bool, error) {
	var payload, expiresRaw string
	err := c.DB.QueryRowContext(ctx, `SELECT payload_json, expires_at FROM estimate_cache WHERE cache_key = ?`, key).Scan(&payload, &expiresRaw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup estimate cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil {
		return nil, false, fmt.Errorf("parse estimate cache expiry: %w", err)
	}
	if time.Now().After(expiresAt) {
		return nil, false, nil
	}
	var items []model.FoodEstimate
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, false, fmt.Errorf("decode estimate cache payload: %w", err)
	}
	return items, true, nil
}

func (c *SQLiteEstimateCache) Put(ctx context.Context, key, kind string, items []model.FoodEstimate, ttl time.Duration) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode estimate cache payload: %w", err)
	}
	now := time.Now().UTC()
	_, err = c.DB.ExecContext(ctx, `
INSERT INTO estimate_cache(cache_key, kind, payload_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET
  kind=excluded.kind,
  payload_json=excluded.payload_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, key, kind, string(payload), now.Format(time.RFC3339), now.Add(ttl).Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert estimate cache: %w", err)
	}
	return nil
}

type EstimateCacheItem struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	Names     []string  `json:"names"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ListEstimateCache(db *sql.DB, limit int) ([]EstimateCacheItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT cache_key, kind, payload_json, expires_at FROM estimate_cache ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list estimate cache: %w", err)
	}
	defer rows.Close()
	out := make([]EstimateCacheItem, 0)
	for rows.Next() {
		var item EstimateCacheItem
		var payload, expires string
		if err := rows.Scan(&item.Key, &item.Kind, &payload, &expires); err != nil {
			return nil, fmt.Errorf("scan estimate cache: %w", err)
		}
		item.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		var items []model.FoodEstimate
		if json.Unmarshal([]byte(payload), &items) == nil {
			for _, e := range items {
				item.Names = append(item.Names, e.Name)
			}
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate cache: %w", err)
	}
	return out, nil
}

// PurgeEstimateCache deletes expired rows, or every row when all is set.
func PurgeEstimateCache(db *sql.DB, all bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if all {
		res, err = db.Exec(`DELETE FROM estimate_cache`)
	} else {
		res, err = db.Exec(`DELETE FROM estimate_cache WHERE expires_at < ?`, time.Now().UTC().Format(time.RFC3339))
	}
	if err != nil {
		return 0, fmt.Errorf("purge estimate cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge estimate cache rows affected: %w", err)
	}
	return affected, nil
}
