package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
)

const (
	downloadsCollection = "downloads"
	maxCountAttempts    = 3
)

// ErrDownloadNotFound reports an unknown download ID.
var ErrDownloadNotFound = errors.New("download not found")

type blobResolver interface {
	URL(ctx context.Context, path string) (string, time.Time, error)
}

// DownloadItem is a catalog file with its download count.
type DownloadItem struct {
	catalog.DownloadConfig
	Count int
}

type DownloadService struct {
	catalog *catalog.StorefrontConfig
	store   docstore.Store
	blobs   blobResolver
	logger  *slog.Logger
}

func NewDownloadService(cfg *catalog.StorefrontConfig, store docstore.Store, blobs blobResolver, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		catalog: cfg,
		store:   store,
		blobs:   blobs,
		logger:  logger,
	}
}

// Categories returns the distinct download categories in name order.
func (s *DownloadService) Categories() []string {
	seen := map[string]struct{}{}
	var categories []string
	for _, download := range s.catalog.Downloads {
		if _, ok := seen[download.Category]; ok || download.Category == "" {
			continue
		}
		seen[download.Category] = struct{}{}
		categories = append(categories, download.Category)
	}
	sort.Strings(categories)
	return categories
}

// List returns downloads whose name or description contains query and whose
// category matches, when either is set.
func (s *DownloadService) List(ctx context.Context, query, category string) ([]DownloadItem, error) {
	counts, err := s.counts(ctx)
	if err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to load download counts", "error", err)
		counts = map[string]int{}
	}

	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)

	var items []DownloadItem
	for _, download := range s.catalog.Downloads {
		if category != "" && !strings.EqualFold(download.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(download.Name), query) &&
			!strings.Contains(strings.ToLower(download.Description), query) {
			continue
		}
		items = append(items, DownloadItem{DownloadConfig: download, Count: counts[download.ID]})
	}
	return items, nil
}

// Link resolves a time-limited URL for the download and counts it.
func (s *DownloadService) Link(ctx context.Context, id string) (string, error) {
	span := sentry.StartSpan(
		ctx,
		"service.downloads.link",
		sentry.WithOpName("service.downloads"),
		sentry.WithDescription("Link"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	download, ok := s.catalog.Download(id)
	if !ok {
		return "", ErrDownloadNotFound
	}

	link, _, err := s.blobs.URL(ctx, download.Path)
	if err != nil {
		return "", err
	}

	if err := s.incrementCount(ctx, download); err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to count download", "error", err, "download_id", download.ID)
	}
	observability.Count(ctx, "download.link", attribute.String("download_id", download.ID))
	return link, nil
}

// incrementCount bumps the counter with a read and a precondition update,
// retrying when another request changed the count in between.
func (s *DownloadService) incrementCount(ctx context.Context, download *catalog.DownloadConfig) error {
	for attempt := 0; attempt < maxCountAttempts; attempt++ {
		current, err := s.find(ctx, download.ID)
		if err != nil {
			return err
		}
		if current == nil {
			_, err := s.store.Create(ctx, downloadsCollection, docstore.Document{
				"downloadId": download.ID,
				"path":       download.Path,
				"count":      1,
				"updatedAt":  docstore.ServerTimestamp,
			})
			return err
		}

		err = s.store.Update(ctx, downloadsCollection, current.ID, docstore.Document{
			"count":     current.Count + 1,
			"updatedAt": docstore.ServerTimestamp,
		}, docstore.FieldEquals("count", current.Count))
		if errors.Is(err, docstore.ErrPreconditionFailed) {
			continue
		}
		return err
	}
	return fmt.Errorf("download count for %s changed concurrently %d times", download.ID, maxCountAttempts)
}

func (s *DownloadService) find(ctx context.Context, downloadID string) (*models.Download, error) {
	docs, err := s.store.List(ctx, downloadsCollection)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		download, err := decodeDownload(doc)
		if err != nil {
			continue
		}
		if download.DownloadID == downloadID {
			return download, nil
		}
	}
	return nil, nil
}

func (s *DownloadService) counts(ctx context.Context) (map[string]int, error) {
	docs, err := s.store.List(ctx, downloadsCollection)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, doc := range docs {
		download, err := decodeDownload(doc)
		if err != nil {
			logging.FromContext(ctx, s.logger).Warn("skipping invalid download document", "error", err, "id", doc["id"])
			continue
		}
		counts[download.DownloadID] += download.Count
	}
	return counts, nil
}

func decodeDownload(doc docstore.Document) (*models.Download, error) {
	id, _ := doc["id"].(string)
	downloadID, _ := doc["downloadId"].(string)
	if id == "" || downloadID == "" {
		return nil, fmt.Errorf("download document is missing identifiers")
	}
	count, err := countValue(doc["count"])
	if err != nil {
		return nil, err
	}
	path, _ := doc["path"].(string)
	updatedAt, _ := doc["updatedAt"].(time.Time)
	return &models.Download{ID: id, DownloadID: downloadID, Path: path, Count: count, UpdatedAt: updatedAt}, nil
}

// countValue normalizes the numeric types the backends decode counts into.
func countValue(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return 0, fmt.Errorf("invalid download count %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("invalid download count type %T", value)
	}
}
