package api

import (
	"net/http"
	"strings"

	"github.com/go-errors/errors"
	"github.com/golang-jwt/jwt/v5"
)

// authenticate accepts a HS256 token signed with the configured secret,
// either as a bearer token or, for websocket clients, as the token query
// parameter.
func (a *Api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			a.jsonError(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		err := a.verifyToken(tokenString)
		if err != nil {
			a.log.Warnf("Rejecting request to %v: %v", r.URL.Path, err)
			a.jsonError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Api) verifyToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return a.secret, nil
	})
	if err != nil {
		return errors.Errorf("failed to parse token: %v", err)
	}

	if !token.Valid {
		return errors.New("invalid token")
	}

	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	return r.URL.Query().Get("token")
}
