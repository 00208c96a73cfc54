package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/chmike/securecookie"
)

// https://github.com/chmike/securecookie

var cookieParams = securecookie.Params{
	Path:     "/",              // cookie received only when URL starts with this path
	Domain:   "",               // cookie received only when URL domain matches this one
	MaxAge:   3600 * 24 * 7,    // cookie becomes invalid 1 week after it is set
	HTTPOnly: true,             // disallow access by remote javascript code
	Secure:   false,            // cookie received only with HTTPS, never with HTTP
	SameSite: securecookie.Lax, // cookie received with same or sub-domain names
}

// SetCookie stores value as JSON in a signed cookie
func SetCookie(w http.ResponseWriter, name string, hashKey string, value interface{}) error {
	sck, err := securecookie.New(name, []byte(hashKey), cookieParams)
	if err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return sck.SetValue(w, b)
}

// GetCookie returns the verified raw value of a signed cookie
func GetCookie(r *http.Request, name string, hashKey string) ([]byte, error) {
	sck, err := securecookie.New(name, []byte(hashKey), cookieParams)
	if err != nil {
		return nil, err
	}

	return sck.GetValue(nil, r)
}
