// internal/httpserver/token.go
//
// Signed player tokens.
// Create/join mint an HS256 JWT binding {playerId, code, playerNum}; action
// and poll accept only that token, presented as a bearer header. There are no
// accounts — the token is the whole identity.

package httpserver

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thirdedge/go-server/internal/dispatch"
)

// tokenTTL bounds how long a seat token stays valid. Series are short-lived;
// a week comfortably outlasts any real game.
const tokenTTL = 7 * 24 * time.Hour

// seat is the authenticated player context extracted from a token.
type seat struct {
	Code      string
	PlayerID  string
	PlayerNum int
}

// ctxSeatKey is the context key type for storing the seat.
type ctxSeatKey struct{}

// jwtSecret returns the signing secret from the environment.
func jwtSecret() []byte {
	return []byte(getEnv("JWT_SECRET", "dev_secret_change_me"))
}

// signPlayerToken creates the HS256 JWT for a freshly seated player.
func signPlayerToken(sess *dispatch.Session) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid":  sess.PlayerID,
		"code": sess.Code,
		"num":  sess.PlayerNum,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	})
	return t.SignedString(jwtSecret())
}

// requirePlayer enforces a valid player token and injects the seat into the
// request context.
func (s *Server) requirePlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, `{"error":"token_required"}`, http.StatusUnauthorized)
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return jwtSecret(), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			pid, _ := claims["pid"].(string)
			code, _ := claims["code"].(string)
			num, _ := claims["num"].(float64)
			if pid == "" || code == "" || (num != 1 && num != 2) {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxSeatKey{}, &seat{
				Code:      code,
				PlayerID:  pid,
				PlayerNum: int(num),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// seatFrom returns the seat placed into context by requirePlayer.
func seatFrom(r *http.Request) *seat {
	st, _ := r.Context().Value(ctxSeatKey{}).(*seat)
	return st
}

// bearerToken extracts a token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
