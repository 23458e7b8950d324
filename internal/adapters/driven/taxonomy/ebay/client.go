package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
)

const (
	// ProductionBaseURL is the production API host.
	ProductionBaseURL = "https://api.ebay.com"

	// SandboxBaseURL is the sandbox API host.
	SandboxBaseURL = "https://api.sandbox.ebay.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxAllowedValues caps how many closed-list values are kept per
	// aspect. Some apparel aspects carry thousands; the fill prompt
	// only needs enough to anchor the model.
	maxAllowedValues = 50

	headerMarketplaceID = "X-EBAY-C-MARKETPLACE-ID"
)

// Ensure Client implements the interface.
var _ driven.TaxonomySource = (*Client)(nil)

// Config holds the taxonomy client configuration.
type Config struct {
	// BaseURL is the API host. Defaults to ProductionBaseURL.
	BaseURL string

	// MarketplaceID selects the regional category tree.
	// Defaults to domain.DefaultMarketplaceID.
	MarketplaceID string

	// HTTPClient carries the bearer token (see NewTokenClient).
	// Defaults to a plain client with DefaultTimeout.
	HTTPClient *http.Client
}

// Client is an eBay commerce/taxonomy API client.
type Client struct {
	baseURL       string
	marketplaceID string
	http          *http.Client
	limiter       *RateLimiter

	mu          sync.Mutex
	treeID      string
	treeVersion string
}

// NewClient creates a taxonomy client. Zero-value config fields fall
// back to production defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ProductionBaseURL
	}
	if cfg.MarketplaceID == "" {
		cfg.MarketplaceID = domain.DefaultMarketplaceID
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		marketplaceID: cfg.MarketplaceID,
		http:          cfg.HTTPClient,
		limiter:       NewRateLimiter(),
	}
}

// NewClientForSettings creates a production or sandbox client with an
// auto-refreshing application token built from the settings.
func NewClientForSettings(ctx context.Context, settings domain.MarketplaceSettings) (*Client, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("marketplace credentials missing: %w", domain.ErrAuthRequired)
	}

	baseURL, tokenURL := ProductionBaseURL, ProductionTokenURL
	if settings.Sandbox {
		baseURL, tokenURL = SandboxBaseURL, SandboxTokenURL
	}

	return NewClient(Config{
		BaseURL:       baseURL,
		MarketplaceID: settings.MarketplaceID,
		HTTPClient:    NewTokenClient(ctx, settings.ClientID, settings.ClientSecret, tokenURL),
	}), nil
}

// FetchCategoryTree downloads the marketplace's full category tree and
// flattens it into domain categories with root-to-leaf paths.
func (c *Client) FetchCategoryTree(ctx context.Context) ([]domain.Category, string, error) {
	treeID, _, err := c.defaultTreeID(ctx)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/commerce/taxonomy/v1/category_tree/%s", c.baseURL, treeID))
	if err != nil {
		return nil, "", fmt.Errorf("fetch category tree: %w", err)
	}
	defer resp.Body.Close()

	var tree categoryTree
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil, "", fmt.Errorf("decode category tree: %w", err)
	}

	var categories []domain.Category
	// The root node is the tree itself, not a listable category.
	for _, child := range tree.RootCategoryNode.ChildCategoryTreeNodes {
		categories = flatten(child, nil, "", categories)
	}

	return categories, tree.CategoryTreeVersion, nil
}

// FetchAspects fetches the aspect requirement schema for a category.
// A 204 response means the category has no specific requirements and
// yields an empty schema.
func (c *Client) FetchAspects(ctx context.Context, categoryID string) (domain.AspectSchema, error) {
	schema := domain.AspectSchema{CategoryID: categoryID}

	treeID, _, err := c.defaultTreeID(ctx)
	if err != nil {
		return schema, err
	}

	endpoint := fmt.Sprintf(
		"%s/commerce/taxonomy/v1/category_tree/%s/get_item_aspects_for_category?category_id=%s",
		c.baseURL, treeID, url.QueryEscape(categoryID),
	)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return schema, fmt.Errorf("fetch aspects for category %s: %w", categoryID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return schema, nil
	}

	var body aspectsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return schema, fmt.Errorf("decode aspects for category %s: %w", categoryID, err)
	}

	for _, a := range body.Aspects {
		schema.Aspects = append(schema.Aspects, mapAspect(a))
	}

	return schema, nil
}

// defaultTreeID resolves and caches the marketplace's category tree id.
func (c *Client) defaultTreeID(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.treeID != "" {
		return c.treeID, c.treeVersion, nil
	}

	endpoint := fmt.Sprintf(
		"%s/commerce/taxonomy/v1/get_default_category_tree_id?marketplace_id=%s",
		c.baseURL, url.QueryEscape(c.marketplaceID),
	)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return "", "", fmt.Errorf("resolve category tree id: %w", err)
	}
	defer resp.Body.Close()

	var body categoryTreeRef
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode category tree id: %w", err)
	}
	if body.CategoryTreeID == "" {
		return "", "", fmt.Errorf("no category tree for marketplace %s: %w", c.marketplaceID, domain.ErrNotFound)
	}

	c.treeID = body.CategoryTreeID
	c.treeVersion = body.CategoryTreeVersion
	return c.treeID, c.treeVersion, nil
}

// get performs a rate-limited GET and maps error statuses to domain
// errors. The caller owns the response body on success (200 or 204).
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerMarketplaceID, c.marketplaceID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taxonomy request: %w", err)
	}

	if err := c.limiter.CheckRateLimit(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return resp, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrAuthInvalid)
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrNotFound)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("taxonomy request failed with status %d", resp.StatusCode)
	}
}

// flatten walks a tree node depth-first, appending a domain category
// per node with the accumulated root-to-node path.
func flatten(node categoryTreeNode, parentPath []string, parentID string, out []domain.Category) []domain.Category {
	path := make([]string, 0, len(parentPath)+1)
	path = append(path, parentPath...)
	path = append(path, node.Category.CategoryName)

	out = append(out, domain.Category{
		ID:       node.Category.CategoryID,
		Name:     node.Category.CategoryName,
		Path:     path,
		Depth:    len(path),
		Leaf:     node.LeafCategoryTreeNode,
		ParentID: parentID,
	})

	for _, child := range node.ChildCategoryTreeNodes {
		out = flatten(child, path, node.Category.CategoryID, out)
	}
	return out
}

// mapAspect translates one API aspect into a domain requirement.
func mapAspect(a aspect) domain.AspectRequirement {
	req := domain.AspectRequirement{
		Name:        a.LocalizedAspectName,
		Required:    a.AspectConstraint.AspectRequired,
		Recommended: a.AspectConstraint.AspectUsage == "RECOMMENDED",
		Cardinality: domain.CardinalitySingle,
		Mode:        domain.ModeFreeText,
	}

	if a.AspectConstraint.ItemToAspectCardinality == "MULTI" {
		req.Cardinality = domain.CardinalityMulti
	}
	if a.AspectConstraint.AspectMode == "SELECTION_ONLY" {
		req.Mode = domain.ModeSelectionOnly
	}

	for _, v := range a.AspectValues {
		if len(req.AllowedValues) >= maxAllowedValues {
			break
		}
		if v.LocalizedValue != "" {
			req.AllowedValues = append(req.AllowedValues, v.LocalizedValue)
		}
	}

	return req
}

// API response shapes (commerce/taxonomy v1).

type categoryTreeRef struct {
	CategoryTreeID      string `json:"categoryTreeId"`
	CategoryTreeVersion string `json:"categoryTreeVersion"`
}

type categoryTree struct {
	CategoryTreeID      string           `json:"categoryTreeId"`
	CategoryTreeVersion string           `json:"categoryTreeVersion"`
	RootCategoryNode    categoryTreeNode `json:"rootCategoryNode"`
}

type categoryTreeNode struct {
	Category               categorySummary    `json:"category"`
	CategoryTreeNodeLevel  int                `json:"categoryTreeNodeLevel"`
	LeafCategoryTreeNode   bool               `json:"leafCategoryTreeNode"`
	ChildCategoryTreeNodes []categoryTreeNode `json:"childCategoryTreeNodes"`
}

type categorySummary struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

type aspectsResponse struct {
	Aspects []aspect `json:"aspects"`
}

type aspect struct {
	LocalizedAspectName string           `json:"localizedAspectName"`
	AspectConstraint    aspectConstraint `json:"aspectConstraint"`
	AspectValues        []aspectValue    `json:"aspectValues"`
}

type aspectConstraint struct {
	AspectRequired          bool   `json:"aspectRequired"`
	AspectUsage             string `json:"aspectUsage"`
	ItemToAspectCardinality string `json:"itemToAspectCardinality"`
	AspectMode              string `json:"aspectMode"`
}

type aspectValue struct {
	LocalizedValue string `json:"localizedValue"`
}
