package controllers

import (
	"errors"
	"net/http"

	"sleep-tips/apperror"
	"sleep-tips/logger"
	"sleep-tips/models"

	"go.uber.org/zap"
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	NotLoggedIn
	// generic system
	NotFound
	MultipleRecords
	ActionDenied
	PermissionDenied
	// tip & category
	TipTitleMissing
	CategoryTitleMissing
	// rating & ranking
	RatingOutOfRange
	RatingNotRecorded
	InvalidTimeRange
	InvalidDirection
	// comment
	CommentEmpty
	SystemError = 99999
)

// errorCodes maps model errors to the API; the first match wins
var errorCodes = []struct {
	err        error
	code       int32
	httpStatus int
}{
	// combined errors of the rating fallback carry the cause as well
	{models.ErrRatingNotRecorded, RatingNotRecorded, http.StatusInternalServerError},
	{apperror.ErrNotLoggedIn, NotLoggedIn, http.StatusUnauthorized},
	{apperror.ErrUnauthorized, PermissionDenied, http.StatusForbidden},
	{apperror.ErrDenied, ActionDenied, http.StatusUnprocessableEntity},
	{apperror.ErrNoData, NotFound, http.StatusNotFound},
	{apperror.ErrMultipleRecords, MultipleRecords, http.StatusInternalServerError},
	{models.ErrTipTitleMissing, TipTitleMissing, http.StatusUnprocessableEntity},
	{models.ErrCategoryTitleMissing, CategoryTitleMissing, http.StatusUnprocessableEntity},
	{models.ErrRatingOutOfRange, RatingOutOfRange, http.StatusUnprocessableEntity},
	{models.ErrInvalidTimeRange, InvalidTimeRange, http.StatusUnprocessableEntity},
	{models.ErrInvalidDirection, InvalidDirection, http.StatusUnprocessableEntity},
	{models.ErrCommentEmpty, CommentEmpty, http.StatusUnprocessableEntity},
}

// HandleError encodes the std ErrorResponse
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {
	if err == nil {
		return 0, apiError
	}

	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			apiError.Code = e.code
			apiError.Message = apiError.String(apiError.Code)
			return e.httpStatus, apiError
		}
	}

	logger.L.Error("request failed", zap.Error(err))
	apiError.Code = SystemError
	apiError.Message = apiError.String(apiError.Code)
	return http.StatusInternalServerError, apiError
}

// newError is used for request errors detected by the handlers themselves
func newError(code int32) ErrorResponse {
	var apiError ErrorResponse
	apiError.Code = code
	apiError.Message = apiError.String(code)
	return apiError
}

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common (system)
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case NotLoggedIn:
		msg = "requires authorization"
	case NotFound:
		msg = "record not found"
	case MultipleRecords:
		msg = "multiple records found"
	case ActionDenied:
		msg = "update/delete action not allowed"
	case PermissionDenied:
		msg = "missing permission"
	// tip & category
	case TipTitleMissing:
		msg = "tip title is required"
	case CategoryTitleMissing:
		msg = "category title is required"
	// rating & ranking
	case RatingOutOfRange:
		msg = "rating must be an integer between 1 and 5"
	case RatingNotRecorded:
		msg = "rating could not be recorded"
	case InvalidTimeRange:
		msg = "range must be week, month or all"
	case InvalidDirection:
		msg = "direction must be top or bottom"
	// comment
	case CommentEmpty:
		msg = "comment is required"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}
