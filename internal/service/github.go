package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wabisaby/toolrank/internal/model"
)

const (
	DefaultGitHubAPIURL  = "https://api.github.com"
	DefaultGitHubTimeout = 5 * time.Second

	githubAcceptHeader = "application/vnd.github.v3+json"
	userAgent          = "toolrank"
)

// ErrUpstreamStatus is returned when GitHub answers with anything but 200.
var ErrUpstreamStatus = errors.New("unexpected upstream status")

// RepoStats holds the repository counters used for ranking.
type RepoStats struct {
	Stars int `json:"stargazers_count"`
	Forks int `json:"forks_count"`
}

// Popularity formats the counters for display.
func (s RepoStats) Popularity() string {
	return fmt.Sprintf("%d Stars / %d Forks", s.Stars, s.Forks)
}

// GitHubClient reads repository metadata from the GitHub REST API.
type GitHubClient struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
}

// GitHubOption customizes a GitHubClient.
type GitHubOption func(*GitHubClient)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(url string) GitHubOption {
	return func(c *GitHubClient) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) GitHubOption {
	return func(c *GitHubClient) { c.token = token }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) GitHubOption {
	return func(c *GitHubClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) GitHubOption {
	return func(c *GitHubClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

func NewGitHubClient(opts ...GitHubOption) *GitHubClient {
	c := &GitHubClient{
		baseURL: DefaultGitHubAPIURL,
		timeout: DefaultGitHubTimeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RepoStats fetches star and fork counts for an owner/name repository.
// Missing counters decode as zero.
func (c *GitHubClient) RepoStats(ctx context.Context, repo string) (RepoStats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/repos/"+repo, nil)
	if err != nil {
		return RepoStats{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", githubAcceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return RepoStats{}, fmt.Errorf("failed to contact GitHub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return RepoStats{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var stats RepoStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return RepoStats{}, fmt.Errorf("invalid response from GitHub: %w", err)
	}
	return stats, nil
}

// StatsSource is anything that can report repository counters.
type StatsSource interface {
	RepoStats(ctx context.Context, repo string) (RepoStats, error)
}

// UpstreamObserver receives one call per enrichment attempt.
type UpstreamObserver interface {
	ObserveUpstream(outcome string, duration time.Duration)
}

// Upstream outcomes reported to the observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// PopularityFetcher fills in popularity and star counts for a catalog.
type PopularityFetcher struct {
	source   StatsSource
	observer UpstreamObserver
	logger   *zap.Logger
}

func NewPopularityFetcher(source StatsSource, observer UpstreamObserver, logger *zap.Logger) *PopularityFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PopularityFetcher{source: source, observer: observer, logger: logger.Named("github")}
}

// Enrich updates every tool in place, one request at a time, and returns the
// same slice. Upstream failures never escape: the tool falls back to "N/A"
// with zero stars.
func (f *PopularityFetcher) Enrich(ctx context.Context, tools []model.Tool) []model.Tool {
	for i := range tools {
		tool := &tools[i]
		if !tool.IsOpenSource() || tool.Repo == "" {
			if tool.Popularity == "" && !tool.HasCatalogPopularity() {
				tool.Popularity = model.PopularityUnavailable
			}
			tool.Stars = 0
			f.observe(OutcomeSkipped, 0)
			continue
		}

		start := time.Now()
		stats, err := f.source.RepoStats(ctx, tool.Repo)
		if err != nil {
			f.logger.Debug("popularity lookup failed", zap.String("repo", tool.Repo), zap.Error(err))
			tool.Popularity = model.PopularityUnavailable
			tool.Stars = 0
			f.observe(OutcomeFailure, time.Since(start))
			continue
		}
		tool.Popularity = stats.Popularity()
		tool.Stars = stats.Stars
		f.observe(OutcomeSuccess, time.Since(start))
	}
	return tools
}

func (f *PopularityFetcher) observe(outcome string, d time.Duration) {
	if f.observer != nil {
		f.observer.ObserveUpstream(outcome, d)
	}
}
