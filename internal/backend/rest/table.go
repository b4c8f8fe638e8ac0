package rest

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/leadsync/internal/core"
)

// Table is a remote table addressed through the PostgREST API.
// It implements core.Table.
type Table struct {
	c    *Client
	name string
	key  string
}

var _ core.Table = (*Table)(nil)

// Table returns a handle for the named table keyed by keyField.
func (c *Client) Table(name, keyField string) *Table {
	return &Table{c: c, name: name, key: keyField}
}

func (t *Table) path() string {
	return "/rest/v1/" + t.name
}

func (t *Table) keyFilter(key string) map[string]string {
	return map[string]string{t.key: "eq." + key}
}

// Lookup returns the existing record for key, or (nil, nil) when absent.
func (t *Table) Lookup(ctx context.Context, key string) (core.Record, error) {
	var rows []core.Record

	res, err := t.c.http.R().
		SetContext(ctx).
		SetQueryParams(t.keyFilter(key)).
		SetQueryParam("select", "*").
		SetQueryParam("limit", "1").
		SetResult(&rows).
		Get(t.path())
	if err != nil {
		return nil, fmt.Errorf("lookup %s=%s: %w", t.key, key, err)
	}
	if err := checkResponse(res); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// BulkInsert creates all records in one request. The remote rejects the
// whole request if any record violates the unique key.
func (t *Table) BulkInsert(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	res, err := t.c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=minimal").
		SetBody(records).
		Post(t.path())
	if err != nil {
		return fmt.Errorf("insert %d records into %s: %w", len(records), t.name, err)
	}
	return checkResponse(res)
}

// Update patches the record matching key with partial.
// Returns an error wrapping core.ErrNotFound when no record matched.
func (t *Table) Update(ctx context.Context, key string, partial core.Record) error {
	var rows []core.Record

	res, err := t.c.http.R().
		SetContext(ctx).
		SetQueryParams(t.keyFilter(key)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetBody(partial).
		SetResult(&rows).
		Patch(t.path())
	if err != nil {
		return fmt.Errorf("update %s=%s: %w", t.key, key, err)
	}
	if err := checkResponse(res); err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("update %s=%s: %w", t.key, key, core.ErrNotFound)
	}
	return nil
}
