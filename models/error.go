package models

import (
	"errors"
)

// custom error types (generic types found in apperror package)

// tip & category
// transformed by controllers to respective Unprocessable Entity (422)
var (
	ErrTipTitleMissing      = errors.New("tip title is required")
	ErrCategoryTitleMissing = errors.New("category title is required")
)

// rating
var (
	ErrRatingOutOfRange  = errors.New("rating must be an integer between 1 and 5")
	ErrRatingNotRecorded = errors.New("unable to record rating")
)

// ranking
var (
	ErrInvalidTimeRange = errors.New("time range must be week, month or all")
	ErrInvalidDirection = errors.New("direction must be top or bottom")
)

// comment
// transformed by controllers to respective Unprocessable Entity (422)
var (
	ErrCommentEmpty = errors.New("comment is required")
)
