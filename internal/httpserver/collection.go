package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

// A collection is the set of cards one browser has created or imported.
// Its id travels in an HS256-signed cookie so a client cannot read another
// collection by guessing its id.

const collectionCookie = "bingo_collection"

type ctxCollectionKey struct{}

// withCollection resolves the caller's collection from the cookie (or a bearer
// token) and mints a new one when it is missing, expired, or forged.
func (s *Server) withCollection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.parseCollection(bearerOrCookie(r))
		if id == "" {
			id = uuid.NewString()
			if err := s.setCollectionCookie(w, id); err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("sign collection")
				writeError(w, http.StatusInternalServerError, "sign_failed")
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxCollectionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// collectionID returns the collection resolved by withCollection.
func collectionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxCollectionKey{}).(string)
	return id
}

func (s *Server) parseCollection(tok string) string {
	if tok == "" {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.CollectionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return ""
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return ""
	}
	return claims.Subject
}

// signCollection creates the cookie token for id, expiring after CollectionTTL.
func (s *Server) signCollection(id string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.opts.CollectionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.CollectionSecret))
	return ss, exp, err
}

// setCollectionCookie writes the collection cookie with appropriate security attributes.
func (s *Server) setCollectionCookie(w http.ResponseWriter, id string) error {
	tok, exp, err := s.signCollection(id)
	if err != nil {
		return err
	}
	sameSite := http.SameSiteLaxMode
	if s.opts.SecureCookies {
		sameSite = http.SameSiteNoneMode // cross-site frontends need None, which requires Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     collectionCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   int(s.opts.CollectionTTL / time.Second),
	})
	return nil
}

// bearerOrCookie extracts a token from the Authorization header or the collection cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(collectionCookie); err == nil {
		return c.Value
	}
	return ""
}
