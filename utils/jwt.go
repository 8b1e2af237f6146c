package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const refreshTokenType = "refresh"

type JWTIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (j *JWTIssuer) AccessToken(username string) (string, error) {
	return j.sign(jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(j.accessTTL).Unix(),
	})
}

func (j *JWTIssuer) RefreshToken(username string) (string, error) {
	return j.sign(jwt.MapClaims{
		"sub":        username,
		"token_type": refreshTokenType,
		"exp":        time.Now().Add(j.refreshTTL).Unix(),
	})
}

// Subject validates the token and returns its username. Access and
// refresh tokens are not interchangeable.
func (j *JWTIssuer) Subject(tokenString string, refresh bool) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	typ, _ := claims["token_type"].(string)
	if sub == "" || (typ == refreshTokenType) != refresh {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func (j *JWTIssuer) sign(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}
