package session

import (
	"context"
	"net/http"
)

type contextKey string

const ctxKey contextKey = "session"

// Middleware loads the shopper session, starting a new one when the request
// has none, and stores it in the request context. A new session's cookie is
// also added to the request so handlers can update it in the same round trip.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := m.GetSession(r.Context(), r)
		if err == nil {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), data)))
			return
		}

		sessionID, data, err := m.createSession(r.Context(), w)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.Clone(WithSession(r.Context(), data))
		others := r.Cookies()
		r.Header.Del("Cookie")
		for _, c := range others {
			if c.Name != cookieName {
				r.AddCookie(c)
			}
		}
		r.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, data *Data) context.Context {
	return context.WithValue(ctx, ctxKey, data)
}

// GetSessionFromContext retrieves session data from the request context.
func GetSessionFromContext(ctx context.Context) *Data {
	if ctx == nil {
		return nil
	}
	session, ok := ctx.Value(ctxKey).(*Data)
	if !ok {
		return nil
	}
	return session
}

// ShopperIDFromContext returns the shopper ID of the session in ctx, if any.
func ShopperIDFromContext(ctx context.Context) string {
	if data := GetSessionFromContext(ctx); data != nil {
		return data.ShopperID
	}
	return ""
}
