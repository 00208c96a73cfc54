// Package docstore is the document-store facade the tip models are written against.
// Documents are schemaless: every payload is a Data map, and the store only knows about
// ids, timestamps and per-document permissions.
package docstore

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Reserved field names usable in queries
const (
	FieldID        = "$id"
	FieldCreatedAt = "$createdAt"
	FieldUpdatedAt = "$updatedAt"
)

// DefaultLimit is applied to List calls without an explicit Limit query
const DefaultLimit = 25

// Store is implemented by every backend (MongoDB, in-memory)
type Store interface {
	// Create stores a new document; an empty id lets the store generate one
	Create(ctx context.Context, collection string, id string, data Data, permissions []Permission) (*Document, error)
	Get(ctx context.Context, collection string, id string) (*Document, error)
	// Update merges data into the document (partial update)
	Update(ctx context.Context, collection string, id string, data Data) (*Document, error)
	// Increment atomically adds deltas to numeric fields (missing fields count as 0).
	// It is a server-side counter operation and not subject to document permissions.
	Increment(ctx context.Context, collection string, id string, deltas map[string]float64) (*Document, error)
	Delete(ctx context.Context, collection string, id string) error
	List(ctx context.Context, collection string, queries ...Query) ([]*Document, error)
}

// Document is a stored record with its system fields separated from the payload
type Document struct {
	ID          string       `json:"$id"`
	Collection  string       `json:"$collection"`
	CreatedAt   time.Time    `json:"$createdAt"`
	UpdatedAt   time.Time    `json:"$updatedAt"`
	Permissions []Permission `json:"$permissions"`
	Data        Data         `json:"data"`
}

// Data is the schemaless payload of a document
type Data map[string]interface{}

// Clone returns a shallow copy
func (d Data) Clone() Data {
	c := make(Data, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// String returns the value of key as a string ("" if missing)
func (d Data) String(key string) string {
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int32, int64, float32, float64:
		return strconv.FormatFloat(toFloat(v), 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	b, err := json.Marshal(d[key])
	if err != nil {
		return ""
	}
	return string(b)
}

// Float returns a numeric value; numeric strings (legacy documents) are parsed, anything else is 0
func (d Data) Float(key string) float64 {
	v, ok := d[key]
	if !ok || v == nil {
		return 0
	}
	if s, isString := v.(string); isString {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return toFloat(v)
}

// Int returns the numeric value of key truncated to an int
func (d Data) Int(key string) int {
	return int(d.Float(key))
}

// Time returns a time value; RFC3339 strings are parsed, unparsable values give the zero time
func (d Data) Time(key string) time.Time {
	return parseTime(d[key])
}

func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func isInteger(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

type userKey struct{}

// WithUser attaches the calling user's id; the store checks permissions against it
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the user attached by WithUser ("" for anonymous calls)
func UserFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userKey{}).(string)
	return userID
}
