package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMiddleware_StartsAndReusesShopperSession(t *testing.T) {
	t.Parallel()

	manager := NewManager(NewMemoryStore(), false)
	var seen []string
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, ShopperIDFromContext(r.Context()))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := first.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookies[0])
	}

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(cookies[0])
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	if len(second.Result().Cookies()) != 0 {
		t.Fatal("expected existing session to be reused without a new cookie")
	}
	if len(seen) != 2 || seen[0] == "" || seen[0] != seen[1] {
		t.Fatalf("expected the same shopper id on both requests, got %v", seen)
	}
}

func TestMiddleware_NewSessionCanBeUpdatedInSameRequest(t *testing.T) {
	t.Parallel()

	manager := NewManager(NewMemoryStore(), false)
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := GetSessionFromContext(r.Context())
		data.AddToCart("MUG_V1", 2)
		if err := manager.UpdateSession(r.Context(), r, data); err != nil {
			t.Errorf("UpdateSession() error = %v", err)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "expired"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	next := httptest.NewRequest(http.MethodGet, "/cart", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	data, err := manager.GetSession(context.Background(), next)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if len(data.Cart) != 1 || data.Cart[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", data.Cart)
	}
}

func TestManager_UpdateSessionKeepsShopperID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := NewManager(NewMemoryStore(), true)
	rec := httptest.NewRecorder()
	data, err := manager.CreateSession(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/cart", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	update := &Data{ShopperID: "someone-else"}
	update.AddToCart("TSHIRT_V1", 2)
	update.AddToCart("TSHIRT_V1", 1)
	if err := manager.UpdateSession(ctx, req, update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := manager.GetSession(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ShopperID != data.ShopperID {
		t.Fatalf("shopper id = %q, want %q", got.ShopperID, data.ShopperID)
	}
	if len(got.Cart) != 1 || got.Cart[0].Quantity != 3 {
		t.Fatalf("unexpected cart: %+v", got.Cart)
	}
}

func TestManager_GetSessionExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := NewManager(NewMemoryStore(), false)
	rec := httptest.NewRecorder()
	if _, err := manager.CreateSession(ctx, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manager.now = func() time.Time { return time.Now().Add(ttl + time.Hour) }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	if _, err := manager.GetSession(ctx, req); err == nil {
		t.Fatal("expected expired session error")
	}
}

func TestData_RemoveFromCart(t *testing.T) {
	t.Parallel()

	data := &Data{}
	data.AddToCart("A", 1)
	data.AddToCart("B", 0)
	data.RemoveFromCart("A")
	if len(data.Cart) != 1 || data.Cart[0].SKU != "B" || data.Cart[0].Quantity != 1 {
		t.Fatalf("unexpected cart: %+v", data.Cart)
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	ctx := context.Background()
	store, err := NewRedisStore(ctx, srv.Addr(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Set(ctx, "abc", &Data{ShopperID: "shopper-1", Cart: []CartItem{{SKU: "A", Quantity: 1}}}, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !srv.Exists(redisKeyPrefix + "abc") {
		t.Fatal("expected prefixed key in redis")
	}

	got, ok := store.Get(ctx, "abc")
	if !ok || got.ShopperID != "shopper-1" || len(got.Cart) != 1 {
		t.Fatalf("unexpected session: %+v ok=%v", got, ok)
	}

	srv.FastForward(2 * time.Minute)
	if _, ok := store.Get(ctx, "abc"); ok {
		t.Fatal("expected session to expire")
	}

	srv.Close()
	if err := store.Set(ctx, "abc", &Data{ShopperID: "shopper-1"}, time.Minute); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestMemoryStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	current := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if err := store.Set(ctx, "abc", &Data{ShopperID: "shopper-1"}, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get(ctx, "abc"); !ok {
		t.Fatal("expected live session")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := store.Get(ctx, "abc"); ok {
		t.Fatal("expected session to expire")
	}
	if err := store.Set(ctx, "", &Data{}, time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
}
