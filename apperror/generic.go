package apperror

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoData          = Error("no records found")
	ErrMultipleRecords = Error("mulitple records found")
	ErrDenied          = Error("not allowed") // eg. upd/del of someone else's content
	ErrUnauthorized    = Error("unauthorized")
	ErrNotLoggedIn     = Error("requires authorization")
)
