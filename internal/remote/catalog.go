package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinver/appcore/internal/catalog"
	"github.com/dinver/appcore/internal/config"
	"github.com/dinver/appcore/internal/serviceerr"
)

// CatalogClient fetches restaurant pages from the backend. Responses are
// cached per query for a short TTL, so a re-issued query (screen re-entry,
// refresh spam) does not hit the network again.
type CatalogClient struct {
	base       *url.URL
	httpClient *http.Client
	cache      *gocache.Cache
	tracer     trace.Tracer
}

var _ = catalog.Client(&CatalogClient{})

func NewCatalogClient(api config.API, discovery config.Discovery, httpClient *http.Client) (*CatalogClient, error) {
	base, err := url.Parse(api.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: api.Timeout}
	}

	var pageCache *gocache.Cache
	if discovery.PageCacheTTL > 0 {
		pageCache = gocache.New(discovery.PageCacheTTL, 2*discovery.PageCacheTTL)
	}

	return &CatalogClient{
		base:       base,
		httpClient: httpClient,
		cache:      pageCache,
		tracer:     otel.Tracer("appcore/remote"),
	}, nil
}

func (c *CatalogClient) FetchPage(ctx context.Context, query catalog.PageQuery) (catalog.Page, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.FetchPage", trace.WithAttributes(
		attribute.Int("catalog.page", query.PageNumber),
		attribute.String("catalog.search", query.SearchTerm),
	))
	defer span.End()

	key := strconv.Itoa(query.PageNumber) + "|" + query.SearchTerm
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached.(catalog.Page), nil
		}
	}

	u := c.base.JoinPath("restaurants", "sample")
	q := u.Query()
	q.Set("page", strconv.Itoa(query.PageNumber))
	q.Set("search", query.SearchTerm)
	u.RawQuery = q.Encode()

	req, err := newRequest(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return catalog.Page{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.Page{}, errors.Join(serviceerr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return catalog.Page{}, fmt.Errorf("fetching page: %w", statusErr(resp.StatusCode))
	}

	var payload struct {
		Restaurants []catalog.RestaurantSummary `json:"restaurants"`
		TotalPages  int                         `json:"totalPages"`
	}
	if err := decodeJSON(resp, &payload); err != nil {
		return catalog.Page{}, err
	}

	page := catalog.Page{Restaurants: payload.Restaurants, TotalPages: payload.TotalPages}
	if c.cache != nil {
		c.cache.Set(key, page, gocache.DefaultExpiration)
	}

	return page, nil
}
