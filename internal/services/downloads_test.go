package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/docstore"
)

type staticResolver struct{}

func (staticResolver) URL(_ context.Context, path string) (string, time.Time, error) {
	return "/downloads/file?token=" + path, time.Now().Add(time.Minute), nil
}

type conflictingStore struct {
	*docstore.MemoryStore
	conflicts int
}

func (s *conflictingStore) Update(ctx context.Context, collection, id string, fields docstore.Document, preconditions ...docstore.Precondition) error {
	if s.conflicts > 0 {
		s.conflicts--
		// Another request bumps the counter between our read and write.
		doc, err := s.MemoryStore.Get(ctx, collection, id)
		if err != nil {
			return err
		}
		count, _ := countValue(doc["count"])
		if err := s.MemoryStore.Update(ctx, collection, id, docstore.Document{"count": count + 1}); err != nil {
			return err
		}
	}
	return s.MemoryStore.Update(ctx, collection, id, fields, preconditions...)
}

func newDownloadService(t *testing.T, store docstore.Store) *DownloadService {
	t.Helper()
	cfg, err := catalog.Load("")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return NewDownloadService(cfg, store, staticResolver{}, discardLogger())
}

func TestDownloadService_ListFilters(t *testing.T) {
	t.Parallel()

	svc := newDownloadService(t, docstore.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		category string
		wantIDs  []string
	}{
		{name: "all", wantIDs: []string{"size-guide", "care-instructions", "wallpaper"}},
		{name: "category", category: "guides", wantIDs: []string{"size-guide", "care-instructions"}},
		{name: "query matches description", query: "WASH", wantIDs: []string{"care-instructions"}},
		{name: "query and category", query: "logo", category: "guides"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, err := svc.List(ctx, tt.query, tt.category)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var ids []string
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
				t.Fatalf("List() ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}

	if got := strings.Join(svc.Categories(), ","); got != "guides,media" {
		t.Fatalf("Categories() = %s", got)
	}
}

func TestDownloadService_LinkCountsDownloads(t *testing.T) {
	t.Parallel()

	svc := newDownloadService(t, docstore.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		link, err := svc.Link(ctx, "size-guide")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link != "/downloads/file?token=guides/size-guide.txt" {
			t.Fatalf("unexpected link %q", link)
		}
	}

	items, err := svc.List(ctx, "", "guides")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ID != "size-guide" || items[0].Count != 3 || items[1].Count != 0 {
		t.Fatalf("unexpected counts: %+v", items)
	}

	if _, err := svc.Link(ctx, "missing"); !errors.Is(err, ErrDownloadNotFound) {
		t.Fatalf("expected ErrDownloadNotFound, got %v", err)
	}
}

func TestDownloadService_CountRetriesOnConflict(t *testing.T) {
	t.Parallel()

	store := &conflictingStore{MemoryStore: docstore.NewMemoryStore()}
	svc := newDownloadService(t, store)
	ctx := context.Background()

	if _, err := svc.Link(ctx, "wallpaper"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.conflicts = 1
	if _, err := svc.Link(ctx, "wallpaper"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := svc.List(ctx, "", "media")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Count != 3 {
		t.Fatalf("count = %d, want 3 (two links plus one concurrent)", items[0].Count)
	}
}

func TestCountValue(t *testing.T) {
	t.Parallel()

	for _, value := range []any{int(4), int32(4), int64(4), float64(4)} {
		if got, err := countValue(value); err != nil || got != 4 {
			t.Fatalf("countValue(%T) = %d, %v", value, got, err)
		}
	}
	if _, err := countValue(1.5); err == nil {
		t.Fatal("expected error for fractional count")
	}
	if _, err := countValue("4"); err == nil {
		t.Fatal("expected error for string count")
	}
}
