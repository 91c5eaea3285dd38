package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint
	DefaultBaseURL = "https://api.github.com"

	defaultUserAgent = "gh-profile-generator"
	defaultCacheSize = 128
	defaultCacheTTL  = 5 * time.Minute
	reposPerPage     = 100
)

// Client fetches public profile data from the GitHub REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userAgent  string
	cache      *lru.LRU[string, []byte]
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithToken authenticates requests with a personal access token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCacheTTL sets how long responses stay cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a GitHub client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		cacheTTL:  defaultCacheTTL,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.token != "" {
		// Wrap whatever transport the caller supplied so tests keep their round tripper.
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient = &http.Client{
			Timeout: c.httpClient.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token}),
				Base:   base,
			},
		}
	}
	if c.cacheTTL > 0 {
		c.cache = lru.NewLRU[string, []byte](defaultCacheSize, nil, c.cacheTTL)
	}
	c.logger = c.logger.With().Str("component", "github-client").Logger()

	return c
}

// User fetches a user's public profile
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, fmt.Errorf("github login is required")
	}

	var user User
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(login), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Repos fetches every public repository of a user, following pagination
func (c *Client) Repos(ctx context.Context, login string) ([]Repo, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, fmt.Errorf("github login is required")
	}

	var repos []Repo
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(reposPerPage))
		query.Set("page", strconv.Itoa(page))
		query.Set("sort", "updated")
		query.Set("direction", "desc")

		var batch []Repo
		path := "/users/" + url.PathEscape(login) + "/repos?" + query.Encode()
		if err := c.getJSON(ctx, path, &batch); err != nil {
			return nil, err
		}

		repos = append(repos, batch...)
		if len(batch) < reposPerPage {
			break
		}
	}

	c.logger.Debug().Str("login", login).Int("count", len(repos)).Msg("Fetched repositories")
	return repos, nil
}

// FetchAll fetches the profile and repositories concurrently
func (c *Client) FetchAll(ctx context.Context, login string) (*Data, error) {
	var (
		user  *User
		repos []Repo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = c.User(gctx, login)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = c.Repos(gctx, login)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Data{User: *user, Repos: repos}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path

	if c.cache != nil {
		if body, ok := c.cache.Get(endpoint); ok {
			return decode(endpoint, body, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read github response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrUserNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, URL: endpoint}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if c.cache != nil {
		c.cache.Add(endpoint, body)
	}
	return decode(endpoint, body, out)
}

func decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", endpoint, err)
	}
	return nil
}
