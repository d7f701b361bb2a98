package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ckanindex/pkg/integrations"
	"github.com/matzehuels/ckanindex/pkg/observability"
)

// DefaultBaseURL is the data.gov.uk CKAN action API.
const DefaultBaseURL = "https://data.gov.uk/api/3/action"

// Client issues requests against a CKAN action API.
//
// Every method reports failure as an absent result (ok=false) rather than an
// error: transport failures, malformed responses and envelopes with
// success=false all collapse into "no data". API-reported failures are
// logged as "<__type> : <message>".
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// Options configures a [Client].
type Options struct {
	BaseURL   string        // Action API base (default DefaultBaseURL)
	Timeout   time.Duration // Per-request timeout (default integrations.DefaultTimeout)
	Attempts  int           // Tries per request for transient failures (default 1)
	UserAgent string        // Optional User-Agent header
	Logger    *log.Logger   // Defaults to log.Default()
}

// NewClient creates a CKAN client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	return &Client{
		Client: integrations.NewClient(integrations.Options{
			Timeout:  opts.Timeout,
			Attempts: opts.Attempts,
			Headers:  headers,
		}),
		baseURL: opts.BaseURL,
		logger:  opts.Logger,
	}
}

// BaseURL returns the action API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Call requests action with params and unwraps the response envelope.
// It returns the raw result payload and true on success. A null result is
// treated as absent.
func (c *Client) Call(ctx context.Context, action Action, params url.Values) (json.RawMessage, bool) {
	var env envelope
	if err := c.GetEnvelope(ctx, integrations.BuildURL(c.baseURL, string(action), params), &env); err != nil {
		c.logger.Debug("catalog request failed", "action", action, "err", err)
		return nil, false
	}
	if !env.Success {
		c.logger.Error(env.Error.String())
		kind, msg := "", ""
		if env.Error != nil {
			kind, msg = env.Error.Type, env.Error.Message
		}
		observability.Catalog().OnAPIError(ctx, string(action), kind, msg)
		return nil, false
	}
	if len(env.Result) == 0 || bytes.Equal(env.Result, []byte("null")) {
		return nil, false
	}
	return env.Result, true
}

// callInto calls action and decodes the result into v.
func (c *Client) callInto(ctx context.Context, action Action, params url.Values, v any) bool {
	raw, ok := c.Call(ctx, action, params)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.logger.Debug("unexpected catalog result", "action", action, "err", err)
		return false
	}
	return true
}

// PackageList returns the IDs of all packages in the catalog.
func (c *Client) PackageList(ctx context.Context) ([]string, bool) {
	var names []string
	if !c.callInto(ctx, ActionPackageList, nil, &names) {
		return nil, false
	}
	return names, true
}

// OrganizationList returns the names of all organizations in the catalog.
func (c *Client) OrganizationList(ctx context.Context) ([]string, bool) {
	var names []string
	if !c.callInto(ctx, ActionOrganizationList, nil, &names) {
		return nil, false
	}
	return names, true
}

// SearchQuery selects packages of one organization for package_search.
type SearchQuery struct {
	Organization string
	Start        int // Offset of the first row; omitted when 0
	Rows         int // Page size; omitted when 0 (server default)
}

func (q SearchQuery) params() url.Values {
	p := url.Values{}
	p.Set("fq", "organization:"+q.Organization)
	if q.Start > 0 {
		p.Set("start", strconv.Itoa(q.Start))
	}
	if q.Rows > 0 {
		p.Set("rows", strconv.Itoa(q.Rows))
	}
	return p
}

// PackageSearch runs package_search filtered by organization.
func (c *Client) PackageSearch(ctx context.Context, q SearchQuery) (*SearchResult, bool) {
	var res SearchResult
	if !c.callInto(ctx, ActionPackageSearch, q.params(), &res) {
		return nil, false
	}
	return &res, true
}

// PackageCount returns the number of packages matching an organization
// filter without fetching any of them (rows=0).
func (c *Client) PackageCount(ctx context.Context, organization string) (int, bool) {
	p := SearchQuery{Organization: organization}.params()
	p.Set("rows", "0")
	var res SearchResult
	if !c.callInto(ctx, ActionPackageSearch, p, &res) {
		return 0, false
	}
	return res.Count, true
}

// OrganizationShow returns organization metadata. With includeDatasets the
// catalog embeds a (server-limited) list of the organization's packages.
func (c *Client) OrganizationShow(ctx context.Context, id string, includeDatasets bool) (*Organization, bool) {
	p := url.Values{}
	p.Set("id", id)
	p.Set("include_datasets", strconv.FormatBool(includeDatasets))
	var org Organization
	if !c.callInto(ctx, ActionOrganizationShow, p, &org) {
		return nil, false
	}
	return &org, true
}

// PackageShow returns a single package with its resources.
func (c *Client) PackageShow(ctx context.Context, id string) (*Package, bool) {
	p := url.Values{}
	p.Set("id", id)
	var pkg Package
	if !c.callInto(ctx, ActionPackageShow, p, &pkg) {
		return nil, false
	}
	return &pkg, true
}
