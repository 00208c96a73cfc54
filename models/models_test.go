package models

import (
	"context"
	"errors"
	"time"

	"sleep-tips/docstore"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// newTestStore returns a memory store whose clock advances one second per write
func newTestStore() *docstore.Memory {
	mem := docstore.NewMemory()
	now := testNow.Add(-time.Hour)
	mem.Now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return mem
}

// ownerRejectingStore refuses documents with user permissions, like a collection
// which only allows guests to create documents
type ownerRejectingStore struct {
	docstore.Store
}

func (s ownerRejectingStore) Create(ctx context.Context, collection string, id string, data docstore.Data, permissions []docstore.Permission) (*docstore.Document, error) {
	for _, p := range permissions {
		if p.Role != docstore.Any {
			return nil, &docstore.Error{Code: 401, Message: "user is not authorized to set permissions"}
		}
	}
	return s.Store.Create(ctx, collection, id, data, permissions)
}

// unfilteredStore fails every query with an equality filter (attribute without index)
type unfilteredStore struct {
	docstore.Store
}

func (s unfilteredStore) List(ctx context.Context, collection string, queries ...docstore.Query) ([]*docstore.Document, error) {
	for _, q := range queries {
		if q.Value != nil {
			return nil, errors.New("index not found: " + q.Field)
		}
	}
	return s.Store.List(ctx, collection, queries...)
}

func sessionOf(userID string) SessionReader {
	return func(ctx context.Context) (string, error) {
		if userID == "" {
			return "", errors.New("no session")
		}
		return userID, nil
	}
}
