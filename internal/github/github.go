// Package github posts reports to pull requests and resolves commit emails
// to GitHub logins through the REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// UserAgent is sent with every API request.
const UserAgent = "petrabarus/committer-coverage-summary"

// DefaultUserCacheSize bounds the email to login cache.
const DefaultUserCacheSize = 512

const defaultTimeout = 30 * time.Second

// ParsePullRequestNumber extracts the pull request number from a ref of the
// form refs/pull/<n>/merge.
func ParsePullRequestNumber(ref string) (int, bool) {
	parts := strings.Split(ref, "/")
	if len(parts) != 4 || parts[0] != "refs" || parts[1] != "pull" {
		return 0, false
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// userLookup is a cached search result; an empty login means no match.
type userLookup struct {
	login string
}

// Client talks to the GitHub REST API of one repository.
type Client struct {
	APIURL     string
	Repo       string // owner/name
	Token      string
	HTTPClient *http.Client

	users *lru.Cache[string, userLookup]
}

// NewClient creates a client with a bounded user cache.
func NewClient(apiURL, repo, token string) *Client {
	users, _ := lru.New[string, userLookup](DefaultUserCacheSize)
	return &Client{
		APIURL:     strings.TrimSuffix(apiURL, "/"),
		Repo:       repo,
		Token:      token,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		users:      users,
	}
}

// APIError is a non-successful API response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("github %s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// PostComment adds a comment to a pull request. The API must answer 201 Created.
func (c *Client) PostComment(ctx context.Context, prNumber int, body string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.APIURL, c.Repo, prNumber)
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return newAPIError(http.MethodPost, endpoint, resp)
	}
	return nil
}

// LookupUserByEmail returns the login of the account that publicly lists email.
// Results, including misses, are cached for the life of the client.
func (c *Client) LookupUserByEmail(ctx context.Context, email string) (string, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", false, nil
	}
	if c.users != nil {
		if cached, ok := c.users.Get(email); ok {
			return cached.login, cached.login != "", nil
		}
	}

	query := url.Values{"q": {email + " in:email"}}
	endpoint := c.APIURL + "/search/users?" + query.Encode()
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", false, newAPIError(http.MethodGet, endpoint, resp)
	}

	var result struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			Login string `json:"login"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, fmt.Errorf("failed to decode user search: %w", err)
	}

	var login string
	if len(result.Items) > 0 {
		login = result.Items[0].Login
	}
	if c.users != nil {
		c.users.Add(email, userLookup{login: login})
	}
	return login, login != "", nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	if c.APIURL == "" {
		return nil, errors.New("github API URL is not set")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// newAPIError reads the error message GitHub puts in failed responses.
func newAPIError(method, endpoint string, resp *http.Response) *APIError {
	apiErr := &APIError{Method: method, URL: endpoint, StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
