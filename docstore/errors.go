package docstore

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
)

// ErrNotFound is returned by Get, Update, Increment and Delete for unknown ids
var ErrNotFound = errors.New("document not found")

// Error is a rejection by the store, carrying an HTTP-like code
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("store error %d: %s", e.Code, e.Message)
}

func errUnauthorized(msg string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: msg}
}

var unauthorizedPattern = regexp.MustCompile(`(?i)not authorized|unauthorized`)

// IsUnauthorized reports whether err is a session/permission rejection, either by code
// or, for errors which lost their type on the way, by message
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var se *Error
	if errors.As(err, &se) {
		if se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden {
			return true
		}
	}
	return unauthorizedPattern.MatchString(err.Error())
}
