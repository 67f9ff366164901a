package jwt

import (
	"errors"
	"os"
	"time"

	jw "github.com/golang-jwt/jwt/v5"
)

func secret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("replace-this-with-a-strong-secret")
}

func Make(userID uint64, username string) (string, error) {
	claims := jw.MapClaims{
		"sub":  float64(userID),
		"name": username,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	return jw.NewWithClaims(jw.SigningMethodHS256, claims).SignedString(secret())
}

func Parse(tok string) (uint64, string, error) {
	t, err := jw.Parse(tok, func(t *jw.Token) (any, error) { return secret(), nil },
		jw.WithValidMethods([]string{jw.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return 0, "", errors.New("invalid token")
	}
	mc, ok := t.Claims.(jw.MapClaims)
	if !ok {
		return 0, "", errors.New("bad claims")
	}
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, "", errors.New("missing subject")
	}
	name, _ := mc["name"].(string)
	return uint64(sub), name, nil
}
