package models

import (
	"context"
	"errors"
	"math"

	"sleep-tips/apperror"
	"sleep-tips/docstore"
	"sleep-tips/helpers"
	"sleep-tips/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// collection names in the document store
const (
	CollectionCategories = "tip_category"
	CollectionTips       = "sleep_tips"
	CollectionRatings    = "ratings"
	CollectionComments   = "comments"
	CollectionProfiles   = "profiles"
)

// SessionReader returns the user id of the session behind ctx (injected from authentication)
type SessionReader func(ctx context.Context) (string, error)

// confirmSession logs the server-side view of the caller after the store rejected a write,
// the store's own message does not tell a missing session apart from missing permissions
func confirmSession(ctx context.Context, read SessionReader, callerID string, op string) {
	if read == nil {
		return
	}

	sessionID, err := read(ctx)
	switch {
	case err != nil:
		logger.L.Warn("no valid session", zap.String("op", op), zap.String("caller", callerID), zap.Error(err))
	case sessionID != callerID:
		logger.L.Warn("caller does not match session", zap.String("op", op), zap.String("caller", callerID), zap.String("session", sessionID))
	default:
		logger.L.Warn("session valid, write rejected by permissions", zap.String("op", op), zap.String("caller", callerID))
	}
}

// createWithFallback creates an owner-writable document; if the store rejects that, it
// retries without owner permissions (public read only). Both failures are reported together.
func createWithFallback(ctx context.Context, store docstore.Store, collection string, callerID string, data docstore.Data, session SessionReader, op string) (*docstore.Document, error) {
	ctx = docstore.WithUser(ctx, callerID)

	perms := docstore.PublicRead()
	if callerID != "" {
		perms = docstore.OwnerPermissions(callerID)
	}

	doc, err := store.Create(ctx, collection, "", data, perms)
	if err == nil {
		return doc, nil
	}
	if !docstore.IsUnauthorized(err) {
		logger.L.Error("create failed", zap.String("op", op), zap.Error(err))
		return nil, helpers.WrapError(err, op)
	}

	confirmSession(ctx, session, callerID, op)

	doc, fbErr := store.Create(ctx, collection, "", data, docstore.PublicRead())
	if fbErr != nil {
		logger.L.Error("unprivileged create failed", zap.String("op", op), zap.Error(fbErr))
		return nil, multierr.Combine(apperror.ErrUnauthorized, err, fbErr)
	}

	logger.L.Warn("created without owner permissions", zap.String("op", op), zap.String("id", doc.ID))
	return doc, nil
}

// writeError translates store errors of update/delete operations
func writeError(ctx context.Context, err error, session SessionReader, callerID string, op string) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return apperror.ErrNoData
	case docstore.IsUnauthorized(err):
		confirmSession(ctx, session, callerID, op)
		return apperror.ErrUnauthorized
	}
	logger.L.Error("write failed", zap.String("op", op), zap.Error(err))
	return helpers.WrapError(err, op)
}

// readError translates store errors of read operations
func readError(err error, op string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperror.ErrNoData
	}
	logger.L.Error("read failed", zap.String("op", op), zap.Error(err))
	return helpers.WrapError(err, op)
}

// round2 mirrors the two decimals stored in averageRating
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
