package models

import (
	"context"
	"strings"

	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/logger"

	"go.uber.org/zap"
)

// Category groups tips
type Category struct {
	Header
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"userID"`
}

const categoryListLimit = 100

// CategoryModel provides the logic to the interface and access to the document store
type CategoryModel struct {
	Store       docstore.Store
	Collection  string
	CurrentUser SessionReader
}

func categoryFromDocument(doc *docstore.Document) Category {
	return Category{
		Header:      headerOf(doc),
		Title:       doc.Data.String("title"),
		Description: doc.Data.String("description"),
		OwnerID:     doc.Data.String("userID"),
	}
}

// List returns the newest categories; an unauthorized read gives an empty list
func (m CategoryModel) List(ctx context.Context) ([]Category, error) {
	docs, err := m.Store.List(ctx, m.Collection,
		docstore.Limit(categoryListLimit),
		docstore.OrderDesc(docstore.FieldCreatedAt))
	if err != nil {
		if docstore.IsUnauthorized(err) {
			logger.L.Error("category list unauthorized", zap.Error(err))
			return []Category{}, nil
		}
		return nil, readError(err, helpers.FuncName())
	}

	categories := make([]Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, categoryFromDocument(doc))
	}
	return categories, nil
}

// Create adds a category owned by the caller
func (m CategoryModel) Create(ctx context.Context, callerID string, title string, description string) (*Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrCategoryTitleMissing
	}

	data := docstore.Data{
		"title":       title,
		"description": strings.TrimSpace(description),
		"userID":      callerID,
	}

	doc, err := createWithFallback(ctx, m.Store, m.Collection, callerID, data, m.CurrentUser, helpers.FuncName())
	if err != nil {
		return nil, err
	}

	category := categoryFromDocument(doc)
	return &category, nil
}

// Update changes title and/or description (nil leaves the field untouched)
func (m CategoryModel) Update(ctx context.Context, id string, callerID string, title *string, description *string) (*Category, error) {
	data := docstore.Data{}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return nil, ErrCategoryTitleMissing
		}
		data["title"] = t
	}
	if description != nil {
		data["description"] = strings.TrimSpace(*description)
	}

	doc, err := m.Store.Update(docstore.WithUser(ctx, callerID), m.Collection, id, data)
	if err != nil {
		return nil, writeError(ctx, err, m.CurrentUser, callerID, helpers.FuncName())
	}

	category := categoryFromDocument(doc)
	return &category, nil
}

// Delete removes a category, tips keep their reference
func (m CategoryModel) Delete(ctx context.Context, id string, callerID string) error {
	err := m.Store.Delete(docstore.WithUser(ctx, callerID), m.Collection, id)
	if err != nil {
		return writeError(ctx, err, m.CurrentUser, callerID, helpers.FuncName())
	}
	return nil
}
