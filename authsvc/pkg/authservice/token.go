package authservice

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/usersvc"
	"github.com/twinj/uuid"
)

// Claims is the decoded payload of an access token.
type Claims struct {
	UserID  uint64
	Email   string
	TokenID string
}

type Tokenizer interface {
	Generate(user usersvc.User) (string, error)
	Verify(token string) (Claims, error)
}

type tokenizer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenizer(secret []byte, expiry time.Duration) Tokenizer {
	return &tokenizer{secret: secret, expiry: expiry}
}

var uuidV4 = uuid.NewV4

func (t *tokenizer) Generate(user usersvc.User) (string, error) {
	expiry := time.Now().Add(t.expiry).Unix()

	claims := jwt.MapClaims{
		"uuid":    uuidV4().String(),
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expiry,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify returns authsvc.ErrAuthentication for every failure mode: a bad
// signature, an unexpected signing method, an expired token, or a payload
// missing the expected claims.
func (t *tokenizer) Verify(token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method != jwt.SigningMethodHS256 {
			return nil, authsvc.ErrAuthentication
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, authsvc.ErrAuthentication
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, authsvc.ErrAuthentication
	}

	id, ok := claims["uuid"].(string)
	if !ok {
		return Claims{}, authsvc.ErrAuthentication
	}

	email, ok := claims["email"].(string)
	if !ok {
		return Claims{}, authsvc.ErrAuthentication
	}

	userID, err := strconv.ParseUint(fmt.Sprintf("%.f", claims["user_id"]), 10, 64)
	if err != nil || userID == 0 {
		return Claims{}, authsvc.ErrAuthentication
	}

	return Claims{UserID: userID, Email: email, TokenID: id}, nil
}

func AccessTokenExpiry() time.Duration {
	return time.Hour * 24 * 7
}
