package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type Client interface {
	Login(ctx context.Context, login, password string) error
	Ping(ctx context.Context) error
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context, pageNumber, pageSize int) (*models.Page, error)
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	Disable(ctx context.Context, id int64) (*models.Account, error)
	Delete(ctx context.Context, id int64) (*models.Account, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
}

// NewHTTPClient returns a client for the server at baseURL, e.g.
// "http://localhost:8080". A nil hc uses a client with a 10 second timeout.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{baseURL: baseURL, http: hc}
}

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// Login exchanges credentials for an access token used by later calls.
func (c *HTTPClient) Login(ctx context.Context, login, password string) error {
	req := map[string]string{"username": login, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/authenticate", req, &resp, false); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = resp.Token
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, false)
}

func (c *HTTPClient) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodPost, "/api/users", account, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Get(ctx context.Context, id int64) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) List(ctx context.Context, pageNumber, pageSize int) (*models.Page, error) {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var out models.Page
	if err := c.do(ctx, http.MethodGet, "/api/users?"+q.Encode(), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Update(ctx context.Context, account *models.Account) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodPut, "/api/users", account, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disable soft-deletes the account.
func (c *HTTPClient) Disable(ctx context.Context, id int64) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodDelete, "/api/users", id, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the account permanently.
func (c *HTTPClient) Delete(ctx context.Context, id int64) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodPost, "/api/users/RealDeleteUser", id, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, authorized bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authorized {
		c.mu.RLock()
		token := c.accessToken
		c.mu.RUnlock()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var e errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrorNotFound
	case resp.StatusCode == http.StatusConflict:
		return common.ErrorConflict
	case resp.StatusCode == http.StatusForbidden:
		return common.ErrorAccountDisabled
	case resp.StatusCode == http.StatusUnauthorized:
		switch e.Message {
		case "token expired":
			return common.ErrTokenExpired
		case "invalid token", "missing token":
			return common.ErrInvalidToken
		default:
			return common.ErrorUnauthorized
		}
	case resp.StatusCode == http.StatusBadRequest:
		return &BadRequestError{Message: e.Message, Fields: e.Fields}
	case resp.StatusCode >= 500:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
}
