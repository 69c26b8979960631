// Package session tracks anonymous shoppers with a cookie-backed session.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "storefront_session"
	ttl        = 30 * 24 * time.Hour
	maxCart    = 20
)

// Data represents the data stored in a session.
type Data struct {
	ShopperID string     `json:"shopper_id"`
	Cart      []CartItem `json:"cart,omitempty"`
	CreatedAt int64      `json:"created_at"`
}

type CartItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Manager handles session creation, validation, and storage.
type Manager struct {
	store  Store
	secure bool
	now    func() time.Time
}

// Store defines the interface for session storage.
type Store interface {
	Get(ctx context.Context, key string) (*Data, bool)
	Set(ctx context.Context, key string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, key string)
	Close() error
}

func NewManager(store Store, secure bool) *Manager {
	return &Manager{
		store:  store,
		secure: secure,
		now:    time.Now,
	}
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// CreateSession starts a session for a new shopper and sets the cookie.
func (m *Manager) CreateSession(ctx context.Context, w http.ResponseWriter) (*Data, error) {
	_, data, err := m.createSession(ctx, w)
	return data, err
}

func (m *Manager) createSession(ctx context.Context, w http.ResponseWriter) (string, *Data, error) {
	if ctx == nil {
		return "", nil, fmt.Errorf("context is required")
	}

	sessionID := uuid.NewString()
	data := &Data{
		ShopperID: uuid.NewString(),
		CreatedAt: m.now().Unix(),
	}
	if err := m.store.Set(ctx, sessionID, data, ttl); err != nil {
		return "", nil, err
	}
	http.SetCookie(w, m.cookie(sessionID, int(ttl.Seconds())))

	return sessionID, cloneData(data), nil
}

// GetSession retrieves the session data from the request.
func (m *Manager) GetSession(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie found: %w", err)
	}

	if ctx == nil {
		ctx = r.Context()
	}

	data, ok := m.store.Get(ctx, cookie.Value)
	if !ok {
		return nil, fmt.Errorf("session not found or expired")
	}

	if m.now().Unix()-data.CreatedAt > int64(ttl.Seconds()) {
		m.store.Delete(ctx, cookie.Value)
		return nil, fmt.Errorf("session expired")
	}

	return data, nil
}

// UpdateSession stores data under the session ID from the request cookie.
// The shopper ID is never changed.
func (m *Manager) UpdateSession(ctx context.Context, r *http.Request, data *Data) error {
	if data == nil {
		return fmt.Errorf("session data is required")
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return fmt.Errorf("no session cookie found: %w", err)
	}

	if ctx == nil {
		ctx = r.Context()
	}

	current, ok := m.store.Get(ctx, cookie.Value)
	if !ok {
		return fmt.Errorf("session not found or expired")
	}

	updated := cloneData(data)
	updated.ShopperID = current.ShopperID
	updated.CreatedAt = current.CreatedAt
	if len(updated.Cart) > maxCart {
		return fmt.Errorf("cart cannot hold more than %d items", maxCart)
	}
	return m.store.Set(ctx, cookie.Value, updated, ttl)
}

// DestroySession removes the session and clears the cookie.
func (m *Manager) DestroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(cookieName)
	if ctx == nil {
		ctx = r.Context()
	}
	if err == nil {
		m.store.Delete(ctx, cookie.Value)
	}

	http.SetCookie(w, m.cookie("", -1))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// AddToCart merges quantity into an existing line for sku or appends a new one.
func (d *Data) AddToCart(sku string, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	for i := range d.Cart {
		if d.Cart[i].SKU == sku {
			d.Cart[i].Quantity += quantity
			return
		}
	}
	d.Cart = append(d.Cart, CartItem{SKU: sku, Quantity: quantity})
}

func (d *Data) RemoveFromCart(sku string) {
	kept := d.Cart[:0]
	for _, item := range d.Cart {
		if item.SKU != sku {
			kept = append(kept, item)
		}
	}
	d.Cart = kept
}

func cloneData(data *Data) *Data {
	if data == nil {
		return nil
	}
	cloned := *data
	if data.Cart != nil {
		cloned.Cart = make([]CartItem, len(data.Cart))
		copy(cloned.Cart, data.Cart)
	}
	return &cloned
}
