package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/logger"
	"sleep-tips/lookups"

	"go.uber.org/zap"
)

// Tip is the "interface" used for client communication
type Tip struct {
	Header
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	CategoryID  string     `json:"categoryId"`
	AuthorID    string     `json:"userID"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Tags        string     `json:"tags"`
	// denormalized, advisory once per-user ratings exist
	RatingCount   int     `json:"ratingCount"`
	RatingSum     float64 `json:"ratingSum"`
	AverageRating float64 `json:"averageRating"`
	CommentsCount int     `json:"commentsCount"`
}

// TipFilter restricts List
type TipFilter struct {
	Limit         int
	IncludeDrafts bool
	CategoryID    string
	AuthorID      string // client-side, tips carry the author under several names
}

// TipSearch restricts Search
type TipSearch struct {
	Text          string
	CategoryID    string
	IncludeDrafts bool
	Limit         int
}

// fixed result caps
const (
	tipListLimit   = 100
	tipSearchLimit = 200
)

// TipModel provides the logic to the interface and access to the document store
type TipModel struct {
	Store      docstore.Store
	Collection string
	// confirms the caller's identity after a rejected write
	CurrentUser SessionReader
}

func tipFromDocument(doc *docstore.Document) Tip {
	d := doc.Data

	tip := Tip{
		Header:        headerOf(doc),
		Title:         d.String("title"),
		Body:          d.String("body"),
		CategoryID:    d.String("categoryId"),
		Status:        d.String("status"),
		Tags:          d.String("tags"),
		CommentsCount: d.Int("commentsCount"),
	}
	if tip.Body == "" {
		tip.Body = d.String("description")
	}
	if k, ok := lookups.FirstKey(d, lookups.TipAuthorKeys); ok {
		tip.AuthorID = d.String(k)
	}
	if published := d.Time("publishedAt"); !published.IsZero() {
		tip.PublishedAt = &published
	}

	agg := tipAggregate(doc)
	tip.RatingCount = agg.Count
	tip.RatingSum = agg.Sum
	tip.AverageRating = round2(agg.Average())

	return tip
}

// tipAggregate reads the denormalized counters of a tip document
func tipAggregate(doc *docstore.Document) RatingAggregate {
	agg := RatingAggregate{
		Sum:   doc.Data.Float("ratingSum"),
		Count: doc.Data.Int("ratingCount"),
	}
	if agg.Count < 0 {
		agg.Count = 0
	}
	if agg.Sum < 0 {
		agg.Sum = 0
	}
	return agg
}

// Normalize prepares a payload for writing (immutable): tags are flattened. creating
// defaults the status and injects the author; updates merge into the stored document,
// which keeps both.
func (m TipModel) Normalize(payload docstore.Data, callerID string, creating bool) docstore.Data {
	p := payload.Clone()

	switch tags := p["tags"].(type) {
	case []string:
		p["tags"] = strings.Join(tags, ",")
	case []interface{}:
		p["tags"] = joinTags(tags)
	}

	if creating {
		if s, _ := p["status"].(string); s == "" {
			p["status"] = lookups.TipStatusDraft
		}
		if s, _ := p["userID"].(string); s == "" && callerID != "" {
			p["userID"] = callerID
		}
	}
	delete(p, "userId")

	return p
}

// joinTags comma-joins string tags; anything else is stored as JSON
func joinTags(tags []interface{}) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		s, ok := t.(string)
		if !ok {
			b, err := json.Marshal(tags)
			if err != nil {
				return ""
			}
			return string(b)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ",")
}

// Create adds a new tip owned by the caller
func (m TipModel) Create(ctx context.Context, callerID string, payload docstore.Data) (*Tip, error) {
	if strings.TrimSpace(payload.String("title")) == "" {
		return nil, ErrTipTitleMissing
	}

	data := m.Normalize(payload, callerID, true)

	doc, err := createWithFallback(ctx, m.Store, m.Collection, callerID, data, m.CurrentUser, helpers.FuncName())
	if err != nil {
		return nil, err
	}

	tip := tipFromDocument(doc)
	return &tip, nil
}

// Get returns a single tip
func (m TipModel) Get(ctx context.Context, id string) (*Tip, error) {
	doc, err := m.Store.Get(ctx, m.Collection, id)
	if err != nil {
		return nil, readError(err, helpers.FuncName())
	}

	tip := tipFromDocument(doc)
	return &tip, nil
}

// Update writes a partial payload; the status is only changed when given
func (m TipModel) Update(ctx context.Context, id string, callerID string, payload docstore.Data) (*Tip, error) {
	if title, ok := payload["title"]; ok {
		if s, _ := title.(string); strings.TrimSpace(s) == "" {
			return nil, ErrTipTitleMissing
		}
	}

	data := m.Normalize(payload, callerID, false)

	doc, err := m.Store.Update(docstore.WithUser(ctx, callerID), m.Collection, id, data)
	if err != nil {
		return nil, writeError(ctx, err, m.CurrentUser, callerID, helpers.FuncName())
	}

	tip := tipFromDocument(doc)
	return &tip, nil
}

// Publish sets the status; publishedAt is only stamped when publishing
func (m TipModel) Publish(ctx context.Context, id string, callerID string, publish bool) (*Tip, error) {
	data := docstore.Data{"status": lookups.TipStatus(publish)}
	if publish {
		data["publishedAt"] = time.Now().UTC()
	}

	return m.Update(ctx, id, callerID, data)
}

// Delete removes a tip (ratings and comments are kept, they are unreachable without it)
func (m TipModel) Delete(ctx context.Context, id string, callerID string) error {
	err := m.Store.Delete(docstore.WithUser(ctx, callerID), m.Collection, id)
	if err != nil {
		return writeError(ctx, err, m.CurrentUser, callerID, helpers.FuncName())
	}
	return nil
}

// List returns tips newest first; an unauthorized read gives an empty list
func (m TipModel) List(ctx context.Context, filter TipFilter) ([]Tip, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = tipListLimit
	}

	queries := []docstore.Query{
		docstore.Limit(limit),
		docstore.OrderDesc(docstore.FieldCreatedAt),
	}
	if !filter.IncludeDrafts {
		queries = append(queries, docstore.Equal("status", lookups.TipStatusPublished))
	}
	if filter.CategoryID != "" {
		queries = append(queries, docstore.Equal("categoryId", filter.CategoryID))
	}

	docs, err := m.Store.List(ctx, m.Collection, queries...)
	if err != nil {
		if docstore.IsUnauthorized(err) {
			logger.L.Error("tip list unauthorized", zap.Error(err))
			return []Tip{}, nil
		}
		return nil, readError(err, helpers.FuncName())
	}

	tips := make([]Tip, 0, len(docs))
	for _, doc := range docs {
		tip := tipFromDocument(doc)
		if filter.AuthorID != "" && tip.AuthorID != filter.AuthorID {
			continue
		}
		tips = append(tips, tip)
	}

	return tips, nil
}

// Search filters the newest tips by a case-insensitive text match on title and body
func (m TipModel) Search(ctx context.Context, search TipSearch) ([]Tip, error) {
	limit := search.Limit
	if limit <= 0 {
		limit = tipSearchLimit
	}

	tips, err := m.List(ctx, TipFilter{
		Limit:         limit,
		IncludeDrafts: search.IncludeDrafts,
		CategoryID:    search.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(search.Text))
	if text == "" {
		return tips, nil
	}

	found := make([]Tip, 0)
	for _, tip := range tips {
		if strings.Contains(strings.ToLower(tip.Title), text) || strings.Contains(strings.ToLower(tip.Body), text) {
			found = append(found, tip)
		}
	}

	return found, nil
}
