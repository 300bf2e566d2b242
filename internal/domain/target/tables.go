package target

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrTableNotAllowed = errors.New("target table is not allowed")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrRowNotFound     = errors.New("target row not found")
	ErrEmptyData       = errors.New("change_data is empty")
	ErrInvalidRowID    = errors.New("id must be a string")
)

// Schema lists the writable columns of an allow-listed table.
type Schema struct {
	Table   string
	Columns map[string]struct{}
}

func newSchema(table string, cols ...string) Schema {
	s := Schema{Table: table, Columns: make(map[string]struct{}, len(cols)+3)}
	for _, c := range append([]string{"id", "created_at", "updated_at"}, cols...) {
		s.Columns[c] = struct{}{}
	}
	return s
}

var registry = map[string]Schema{
	"profiles":         newSchema("profiles", "user_id", "display_name", "email", "avatar_url", "bio"),
	"customers":        newSchema("customers", "name", "email", "phone", "company", "notes"),
	"documents":        newSchema("documents", "title", "file_name", "html_content", "share_token", "password_hash", "is_public", "owner_id"),
	"notes":            newSchema("notes", "title", "content", "customer_id", "author_id"),
	"member_documents": newSchema("member_documents", "member_id", "document_id", "granted_by", "expires_at"),
	"subscriptions":    newSchema("subscriptions", "customer_id", "product_id", "status", "starts_at", "ends_at"),
}

// Allowed reports whether table is on the allow-list.
func Allowed(table string) bool {
	_, ok := registry[table]
	return ok
}

// Tables returns the allow-list sorted by name.
func Tables() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the schema for an allow-listed table.
func Lookup(table string) (Schema, error) {
	s, ok := registry[table]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q (allowed: %s)", ErrTableNotAllowed, table, strings.Join(Tables(), ", "))
	}
	return s, nil
}

// CheckRowID accepts a missing id or a string one; the store generates empty ids.
func CheckRowID(data map[string]any) error {
	v, ok := data["id"]
	if !ok || v == nil {
		return nil
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("%w, got %T", ErrInvalidRowID, v)
	}
	return nil
}

// CheckColumns rejects keys that are not columns of the table.
func (s Schema) CheckColumns(data map[string]any) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := s.Columns[k]; !ok {
			return fmt.Errorf("%w %q for table %q", ErrUnknownColumn, k, s.Table)
		}
	}
	return nil
}
