package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/twinj/uuid"
)

type memoryEntry struct {
	doc *Document
	seq int64
}

// Memory is an in-process Store used for local development and tests.
// It enforces the same permission rules as the MongoDB backend.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryEntry
	locked      map[string]bool
	seq         int64

	// Now is the clock used for system timestamps
	Now func() time.Time
}

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]*memoryEntry),
		locked:      make(map[string]bool),
		Now:         time.Now,
	}
}

// Lock makes every write to collection fail with an unauthorized error, the way a
// collection without write permissions behaves
func (m *Memory) Lock(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[collection] = true
}

// Unlock reverts Lock
func (m *Memory) Unlock(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locked, collection)
}

// Put stores a document as-is, bypassing permission checks (fixtures and imports)
func (m *Memory) Put(collection string, doc Document) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewV4().String()
	}
	if doc.Data == nil {
		doc.Data = Data{}
	}
	doc.Collection = collection
	stored := doc
	stored.Data = doc.Data.Clone()
	m.seq++
	m.coll(collection)[doc.ID] = &memoryEntry{doc: &stored, seq: m.seq}
	return copyDocument(&stored)
}

func (m *Memory) coll(name string) map[string]*memoryEntry {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]*memoryEntry)
		m.collections[name] = c
	}
	return c
}

func (m *Memory) writable(collection string) error {
	if m.locked[collection] {
		return errUnauthorized("the current user is not authorized to perform the requested action")
	}
	return nil
}

func (m *Memory) Create(ctx context.Context, collection string, id string, data Data, permissions []Permission) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writable(collection); err != nil {
		return nil, err
	}
	if err := checkCreate(permissions, UserFrom(ctx)); err != nil {
		return nil, err
	}

	c := m.coll(collection)
	if id == "" {
		id = uuid.NewV4().String()
	}
	if _, exists := c[id]; exists {
		return nil, &Error{Code: 409, Message: "document with the requested id already exists"}
	}

	now := m.Now()
	doc := &Document{
		ID:          id,
		Collection:  collection,
		CreatedAt:   now,
		UpdatedAt:   now,
		Permissions: append([]Permission(nil), permissions...),
		Data:        stripReserved(data),
	}
	m.seq++
	c[id] = &memoryEntry{doc: doc, seq: m.seq}

	return copyDocument(doc), nil
}

func (m *Memory) Get(ctx context.Context, collection string, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(e.doc), nil
}

func (m *Memory) Update(ctx context.Context, collection string, id string, data Data) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := m.writable(collection); err != nil {
		return nil, err
	}
	if !allowed(e.doc.Permissions, ActionUpdate, UserFrom(ctx)) {
		return nil, errUnauthorized("the current user is not authorized to perform the requested action")
	}

	for k, v := range stripReserved(data) {
		e.doc.Data[k] = v
	}
	e.doc.UpdatedAt = m.Now()

	return copyDocument(e.doc), nil
}

func (m *Memory) Increment(ctx context.Context, collection string, id string, deltas map[string]float64) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := m.writable(collection); err != nil {
		return nil, err
	}

	for field, delta := range deltas {
		current, exists := e.doc.Data[field]
		integral := delta == float64(int64(delta)) && (!exists || current == nil || isInteger(current))
		sum := e.doc.Data.Float(field) + delta
		if integral {
			e.doc.Data[field] = int64(sum)
		} else {
			e.doc.Data[field] = sum
		}
	}
	e.doc.UpdatedAt = m.Now()

	return copyDocument(e.doc), nil
}

func (m *Memory) Delete(ctx context.Context, collection string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	e, ok := c[id]
	if !ok {
		return ErrNotFound
	}
	if err := m.writable(collection); err != nil {
		return err
	}
	if !allowed(e.doc.Permissions, ActionDelete, UserFrom(ctx)) {
		return errUnauthorized("the current user is not authorized to perform the requested action")
	}
	delete(c, id)
	return nil
}

func (m *Memory) List(ctx context.Context, collection string, queries ...Query) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan := compile(queries)

	m.mu.RLock()
	entries := make([]*memoryEntry, 0)
	for _, e := range m.coll(collection) {
		if matches(e.doc, plan.filters) {
			entries = append(entries, e)
		}
	}
	m.mu.RUnlock()

	// without an explicit order the newest documents come first, ties by insertion
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		for _, o := range plan.orders {
			c := compareValues(fieldValue(a.doc, o.Field), fieldValue(b.doc, o.Field))
			if c == 0 {
				continue
			}
			if o.kind == queryOrderDesc {
				return c > 0
			}
			return c < 0
		}
		if len(plan.orders) == 0 {
			if c := a.doc.CreatedAt.Compare(b.doc.CreatedAt); c != 0 {
				return c > 0
			}
		}
		return a.seq > b.seq
	})

	if len(entries) > plan.limit {
		entries = entries[:plan.limit]
	}

	docs := make([]*Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, copyDocument(e.doc))
	}
	return docs, nil
}

func matches(doc *Document, filters []Query) bool {
	for _, f := range filters {
		if !equalValues(fieldValue(doc, f.Field), f.Value) {
			return false
		}
	}
	return true
}

func fieldValue(doc *Document, field string) interface{} {
	switch field {
	case FieldID:
		return doc.ID
	case FieldCreatedAt:
		return doc.CreatedAt
	case FieldUpdatedAt:
		return doc.UpdatedAt
	}
	return doc.Data[field]
}

func equalValues(a, b interface{}) bool {
	if isNumber(a) && isNumber(b) {
		return toFloat(a) == toFloat(b)
	}
	ta, aIsTime := a.(time.Time)
	tb, bIsTime := b.(time.Time)
	if aIsTime && bIsTime {
		return ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders numbers, times and strings; nil sorts before everything
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if isNumber(a) && isNumber(b) {
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	ta, aIsTime := a.(time.Time)
	tb, bIsTime := b.(time.Time)
	if aIsTime && bIsTime {
		return ta.Compare(tb)
	}
	sa, aIsString := a.(string)
	sb, bIsString := b.(string)
	if aIsString && bIsString {
		return strings.Compare(sa, sb)
	}
	return 0
}

// stripReserved copies data without the system fields a client must not set
func stripReserved(data Data) Data {
	c := make(Data, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, "$") {
			continue
		}
		c[k] = v
	}
	return c
}

func copyDocument(doc *Document) *Document {
	c := *doc
	c.Permissions = append([]Permission(nil), doc.Permissions...)
	c.Data = doc.Data.Clone()
	return &c
}
