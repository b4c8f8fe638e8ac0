package rest

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// listPageSize is the page size for object listing.
const listPageSize = 1000

// Storage is one bucket of the backend's object storage API.
type Storage struct {
	c          *Client
	bucket     string
	publicBase string
}

// Storage returns a handle for bucket. publicBase overrides the base of
// public object URLs; empty means the project URL.
func (c *Client) Storage(bucket, publicBase string) *Storage {
	if publicBase == "" {
		publicBase = c.baseURL
	}
	return &Storage{c: c, bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}
}

func (s *Storage) objectPath(name string) string {
	return "/storage/v1/object/" + url.PathEscape(s.bucket) + "/" + escapeObject(name)
}

// Put uploads body as name without overwriting. An existing object is
// reported as an error wrapping core.ErrConflict.
func (s *Storage) Put(ctx context.Context, name string, body []byte, contentType string) error {
	res, err := s.c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetBody(body).
		Post(s.objectPath(name))
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return checkResponse(res)
}

type listRequest struct {
	Prefix string            `json:"prefix"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	SortBy map[string]string `json:"sortBy"`
}

type listEntry struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

// List returns the names of all objects under prefix, sorted by name.
// Folder placeholders are omitted.
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	for offset := 0; ; offset += listPageSize {
		var page []listEntry

		res, err := s.c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(listRequest{
				Prefix: prefix,
				Limit:  listPageSize,
				Offset: offset,
				SortBy: map[string]string{"column": "name", "order": "asc"},
			}).
			SetResult(&page).
			Post("/storage/v1/object/list/" + url.PathEscape(s.bucket))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.bucket, err)
		}
		if err := checkResponse(res); err != nil {
			return nil, err
		}

		for _, e := range page {
			if e.ID == nil {
				continue
			}
			if prefix != "" {
				names = append(names, path.Join(prefix, e.Name))
			} else {
				names = append(names, e.Name)
			}
		}

		if len(page) < listPageSize {
			return names, nil
		}
	}
}

// Delete removes the named objects in one request.
func (s *Storage) Delete(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	res, err := s.c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string][]string{"prefixes": names}).
		Delete("/storage/v1/object/" + url.PathEscape(s.bucket))
	if err != nil {
		return fmt.Errorf("delete %d objects from %s: %w", len(names), s.bucket, err)
	}
	return checkResponse(res)
}

// PublicURL returns the public URL of an object.
func (s *Storage) PublicURL(name string) string {
	return s.publicBase + "/storage/v1/object/public/" + url.PathEscape(s.bucket) + "/" + escapeObject(name)
}

// escapeObject escapes each path segment of an object name.
func escapeObject(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
