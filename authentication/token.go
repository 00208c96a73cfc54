package authentication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sleep-tips/apperror"
	"sleep-tips/helpers"
	"sleep-tips/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/twinj/uuid"
	"go.uber.org/zap"
)

// AT is the key of the access token inside the session cookie
const AT = "access_token"

// UserIDKey is where the middleware puts the caller into the gin context
const UserIDKey = "userID"

const accessTokenTTL = 15 * time.Minute

// TokenDetails holds a signed access token and its registry key
type TokenDetails struct {
	AccessToken string
	AccessUUID  string
	AtExpires   int64
}

// AccessDetails Token Metadata for the registry (Key/Value redis)
type AccessDetails struct {
	TokenUUID string
	UserID    string
}

type sessionKey struct{}

// CreateToken signs an access token for the user; tokens are normally issued by the
// login service sharing ACCESS_SECRET and the registry
func CreateToken(userID string) (*TokenDetails, error) {
	td := &TokenDetails{
		AtExpires:  time.Now().Add(accessTokenTTL).Unix(),
		AccessUUID: "at_" + uuid.NewV4().String(),
	}

	atClaims := jwt.MapClaims{}
	atClaims["authorized"] = true
	atClaims["access_uuid"] = td.AccessUUID
	atClaims["user_id"] = userID
	atClaims["exp"] = td.AtExpires

	at := jwt.NewWithClaims(jwt.SigningMethodHS256, atClaims)
	var err error
	td.AccessToken, err = at.SignedString([]byte(settings.AccessSecret))
	if err != nil {
		return nil, err
	}

	return td, nil
}

// CreateAuth registers the token in the registry (redis) until it expires
func CreateAuth(ctx context.Context, userID string, td *TokenDetails) error {
	ttl := time.Until(time.Unix(td.AtExpires, 0))
	return client.Set(ctx, td.AccessUUID, userID, ttl).Err()
}

// DeleteAuth removes a token from the registry (returns count of deleted records)
func DeleteAuth(ctx context.Context, givenUUID string) (int64, error) {
	return client.Del(ctx, givenUUID).Result()
}

// ExtractToken returns the still encoded access token, read from the session cookie
// or an "Authorization: Bearer" header
func ExtractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), nil
		}
	}

	cval, err := helpers.GetCookie(r, settings.CookieName, settings.CookieHashKey)
	if err != nil {
		return "", apperror.ErrNotLoggedIn
	}

	tokens := make(map[string]string)
	if err := json.Unmarshal(cval, &tokens); err != nil {
		return "", err
	}
	if tokens[AT] == "" {
		return "", apperror.ErrNotLoggedIn
	}

	return tokens[AT], nil
}

// VerifyToken checks the signature
func VerifyToken(r *http.Request) (*jwt.Token, error) {
	tokenString, err := ExtractToken(r)
	if err != nil {
		return nil, err
	}

	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// make sure the token method conforms to "SigningMethodHMAC"
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(settings.AccessSecret), nil
	})
}

// ExtractTokenMetadata reads the registry key and the user from a valid token
func ExtractTokenMetadata(r *http.Request) (*AccessDetails, error) {
	token, err := VerifyToken(r)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	accessUUID, ok := claims["access_uuid"].(string)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	return &AccessDetails{
		TokenUUID: accessUUID,
		UserID:    userID,
	}, nil
}

// FetchAuth reads the userID via the metadata from the registry; a token that is no
// longer registered (logout, expiry) is unauthorized
func FetchAuth(ctx context.Context, authD *AccessDetails) (string, error) {
	userID, err := client.Get(ctx, authD.TokenUUID).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperror.ErrUnauthorized
	}
	if err != nil {
		return "", helpers.WrapError(err, helpers.FuncName())
	}
	if userID != authD.UserID {
		return "", apperror.ErrUnauthorized
	}
	return userID, nil
}

// Authenticate checks the request's token against the registry and returns the userID
func Authenticate(r *http.Request) (string, *AccessDetails, error) {
	tokenAuth, err := ExtractTokenMetadata(r)
	if err != nil {
		return "", nil, err
	}

	userID, err := FetchAuth(r.Context(), tokenAuth)
	if err != nil {
		return "", nil, err
	}

	return userID, tokenAuth, nil
}

// SessionUser re-reads the caller of ctx from the registry (set up by TokenAuthMiddleware)
func SessionUser(ctx context.Context) (string, error) {
	ad, ok := ctx.Value(sessionKey{}).(*AccessDetails)
	if !ok {
		return "", apperror.ErrNotLoggedIn
	}
	return FetchAuth(ctx, ad)
}

// CallerID returns the authenticated user of the request ("" if anonymous)
func CallerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// TokenAuthMiddleware rejects requests without a registered token and
// passes the user on to the handlers
func TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ad, err := Authenticate(c.Request)
		if err != nil {
			logger.L.Debug("request not authenticated", zap.String("path", c.FullPath()), zap.Error(err))
			c.JSON(http.StatusUnauthorized, apperror.ErrNotLoggedIn.Error())
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionKey{}, ad))
		c.Next()
	}
}
