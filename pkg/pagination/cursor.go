// Package pagination implements the opaque cursor used by the
// transaction-listing feed (spec.md §4.8). A cursor encodes the
// (created_at, entry_id) of the last row on the previous page, base64
// encoding a small JSON envelope so the wire value carries no exploitable
// structure.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// DefaultLimit and MaxLimit bound a single page per spec.md §4.8.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Cursor identifies a position in the (created_at desc, entry_id desc) feed.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	EntryID   string    `json:"entry_id"`
}

// IsZero reports whether the cursor carries no position (first page).
func (c Cursor) IsZero() bool {
	return c.EntryID == "" && c.CreatedAt.IsZero()
}

// Encode renders the cursor as the opaque string returned to callers.
func Encode(c Cursor) (string, error) {
	if c.IsZero() {
		return "", nil
	}

	buf, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("pagination: encode cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Decode parses an opaque cursor string produced by Encode. An empty
// string decodes to the zero Cursor (first page).
func Decode(encoded string) (Cursor, error) {
	if encoded == "" {
		return Cursor{}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, fmt.Errorf("pagination: malformed cursor: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("pagination: malformed cursor: %w", err)
	}

	return c, nil
}

// ClampLimit applies the default and max bounds from spec.md §4.8.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}

	if limit > MaxLimit {
		return MaxLimit
	}

	return limit
}

// Apply adds the keyset predicate and ORDER BY/LIMIT clauses for a
// reverse-chronological (created_at desc, entry_id desc) feed to query,
// fetching one extra row so the caller can detect a next page.
func Apply(query squirrel.SelectBuilder, cursor Cursor, limit int) squirrel.SelectBuilder {
	if !cursor.IsZero() {
		query = query.Where(squirrel.Or{
			squirrel.Lt{"entry.created_at": cursor.CreatedAt},
			squirrel.And{
				squirrel.Eq{"entry.created_at": cursor.CreatedAt},
				squirrel.Lt{"entry.id": cursor.EntryID},
			},
		})
	}

	return query.
		OrderBy("entry.created_at DESC", "entry.id DESC").
		Limit(uint64(ClampLimit(limit) + 1))
}

// Page trims a fetched row set (which may contain one extra "has more"
// row) down to the page limit and reports whether a next page exists.
func Page[T any](rows []T, limit int, lastOf func(T) Cursor) (page []T, next string, err error) {
	limit = ClampLimit(limit)

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	page = rows

	if hasMore && len(page) > 0 {
		next, err = Encode(lastOf(page[len(page)-1]))
		if err != nil {
			return nil, "", err
		}
	}

	return page, next, nil
}
