package models

import (
	"context"
	"strings"

	"sleep-tips/apperror"
	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/logger"
	"sleep-tips/lookups"

	"go.uber.org/zap"
)

// Comment is the "interface" used for client communication; stored documents may use
// any of the legacy field names (see lookups)
type Comment struct {
	Header
	TipID      string `json:"tipID"`
	UserID     string `json:"userID"`
	Text       string `json:"text"`
	AuthorName string `json:"authorName"`
}

const (
	commentListLimit = 100
	userIDShortLen   = 8
	anonymousName    = "anonymous"
)

// CommentModel provides the logic to the interface and access to the document store
type CommentModel struct {
	Store      docstore.Store
	Collection string
	Tips       string
	// injected from the profile model
	GetUserNames func(ctx context.Context, userIDs []string) map[string]string
}

func commentFromDocument(doc *docstore.Document) Comment {
	d := doc.Data
	c := Comment{Header: headerOf(doc)}

	if k, ok := lookups.FirstKey(d, lookups.CommentTipKeys); ok {
		c.TipID = d.String(k)
	}
	if k, ok := lookups.FirstKey(d, lookups.CommentUserKeys); ok {
		c.UserID = d.String(k)
	}
	if k, ok := lookups.FirstKey(d, lookups.CommentTextKeys); ok {
		c.Text = d.String(k)
	}
	if k, ok := lookups.FirstKey(d, lookups.CommentNameKeys); ok {
		c.AuthorName = d.String(k)
	}

	return c
}

// Fetch returns the newest comments of a tip, whatever key the documents use to reference it
func (m CommentModel) Fetch(ctx context.Context, tipID string) ([]Comment, error) {
	failed := 0
	for _, key := range lookups.CommentTipKeys {
		docs, err := m.Store.List(ctx, m.Collection,
			docstore.Equal(key, tipID),
			docstore.OrderDesc(docstore.FieldCreatedAt),
			docstore.Limit(commentListLimit))
		if err != nil {
			failed++
			logger.L.Warn("comment query failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if len(docs) > 0 {
			logger.L.Debug("comments found", zap.String("key", key), zap.Int("count", len(docs)))
			return commentsFromDocuments(docs), nil
		}
	}

	// older comments beyond the scan are missed
	docs, err := m.Store.List(ctx, m.Collection,
		docstore.OrderDesc(docstore.FieldCreatedAt),
		docstore.Limit(commentListLimit))
	if err != nil {
		logger.L.Warn("comment scan failed", zap.Error(err))
		if failed == len(lookups.CommentTipKeys) {
			return nil, helpers.WrapError(err, helpers.FuncName())
		}
		return []Comment{}, nil
	}

	matched := make([]*docstore.Document, 0)
	for _, doc := range docs {
		for _, key := range lookups.CommentTipKeys {
			if v, ok := doc.Data[key]; ok && v != nil && doc.Data.String(key) == tipID {
				matched = append(matched, doc)
				break
			}
		}
	}

	return commentsFromDocuments(matched), nil
}

func commentsFromDocuments(docs []*docstore.Document) []Comment {
	comments := make([]Comment, 0, len(docs))
	for _, doc := range docs {
		comments = append(comments, commentFromDocument(doc))
	}
	return comments
}

// AttachAuthorNames sets AuthorName on every comment: the embedded name, else the
// profile's username, else the shortened user id, else "anonymous"
func (m CommentModel) AttachAuthorNames(ctx context.Context, comments []Comment) []Comment {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, c := range comments {
		if c.AuthorName != "" || c.UserID == "" || seen[c.UserID] {
			continue
		}
		seen[c.UserID] = true
		ids = append(ids, c.UserID)
	}

	names := map[string]string{}
	if len(ids) > 0 && m.GetUserNames != nil {
		names = m.GetUserNames(ctx, ids)
	}

	named := make([]Comment, len(comments))
	for i, c := range comments {
		switch {
		case c.AuthorName != "":
		case names[c.UserID] != "":
			c.AuthorName = names[c.UserID]
		case c.UserID != "":
			c.AuthorName = shortID(c.UserID)
		default:
			c.AuthorName = anonymousName
		}
		named[i] = c
	}

	return named
}

func shortID(id string) string {
	if len(id) <= userIDShortLen {
		return id
	}
	return id[:userIDShortLen]
}

// Create adds a comment of the caller to a tip
func (m CommentModel) Create(ctx context.Context, tipID string, userID string, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}
	if userID == "" {
		return nil, apperror.ErrNotLoggedIn
	}

	ctx = docstore.WithUser(ctx, userID)

	data := docstore.Data{
		lookups.CommentTipKeys[0]:  tipID,
		lookups.CommentUserKeys[0]: userID,
		lookups.CommentTextKeys[0]: text,
	}
	doc, err := m.Store.Create(ctx, m.Collection, "", data, docstore.OwnerPermissions(userID))
	if err != nil {
		return nil, writeError(ctx, err, nil, userID, helpers.FuncName())
	}

	m.countComment(ctx, tipID, 1)

	comment := commentFromDocument(doc)
	return &comment, nil
}

// Update replaces the text of the caller's comment, in whichever field it is stored
func (m CommentModel) Update(ctx context.Context, commentID string, callerID string, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}

	doc, err := m.owned(ctx, commentID, callerID)
	if err != nil {
		return nil, err
	}

	textKey := lookups.CommentTextKeys[0]
	if k, ok := lookups.FirstKey(doc.Data, lookups.CommentTextKeys); ok {
		textKey = k
	}

	updated, err := m.Store.Update(docstore.WithUser(ctx, callerID), m.Collection, commentID, docstore.Data{textKey: text})
	if err != nil {
		return nil, writeError(ctx, err, nil, callerID, helpers.FuncName())
	}

	comment := commentFromDocument(updated)
	return &comment, nil
}

// Delete removes the caller's comment
func (m CommentModel) Delete(ctx context.Context, commentID string, callerID string) error {
	doc, err := m.owned(ctx, commentID, callerID)
	if err != nil {
		return err
	}

	ctx = docstore.WithUser(ctx, callerID)
	if err := m.Store.Delete(ctx, m.Collection, commentID); err != nil {
		return writeError(ctx, err, nil, callerID, helpers.FuncName())
	}

	if tipID := commentFromDocument(doc).TipID; tipID != "" {
		m.countComment(ctx, tipID, -1)
	}

	return nil
}

// owned reads a comment and checks the caller wrote it
func (m CommentModel) owned(ctx context.Context, commentID string, callerID string) (*docstore.Document, error) {
	if callerID == "" {
		return nil, apperror.ErrNotLoggedIn
	}

	doc, err := m.Store.Get(ctx, m.Collection, commentID)
	if err != nil {
		return nil, readError(err, helpers.FuncName())
	}

	if commentFromDocument(doc).UserID != callerID {
		return nil, apperror.ErrDenied
	}

	return doc, nil
}

// countComment maintains the tip's commentsCount (best effort, never below 0)
func (m CommentModel) countComment(ctx context.Context, tipID string, delta float64) {
	if delta < 0 {
		tip, err := m.Store.Get(ctx, m.Tips, tipID)
		if err != nil || tip.Data.Float("commentsCount") <= 0 {
			return
		}
	}

	if _, err := m.Store.Increment(ctx, m.Tips, tipID, map[string]float64{"commentsCount": delta}); err != nil {
		logger.L.Debug("commentsCount not maintained", zap.String("tip", tipID), zap.Error(err))
	}
}
