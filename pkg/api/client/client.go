// Package client provides typed access to the booking platform API and
// mirrors the server's booking state for interactive tools.
//
// The client keeps two local collections: the session user's own bookings
// and, for administrators, the full cross-owner set. Mutations never patch
// the local collections directly; on success the affected collection is
// re-fetched so local state always reflects the server's authoritative view,
// and on failure local state is left untouched.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client provides typed access to the booking platform API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
	user  *User
	mine  []Booking
	all   []BookingWithOwner
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8080"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// --- Payload types ---

// User reflects API user payloads.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Booking reflects API booking payloads.
type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ServiceName     string    `json:"service_name"`
	ServiceCategory string    `json:"service_category"`
	ScheduledDate   string    `json:"scheduled_date"`
	ScheduledTime   string    `json:"scheduled_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Notes           string    `json:"notes,omitempty"`
	ProviderName    string    `json:"provider_name,omitempty"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookingWithOwner pairs a booking with its owner's contact summary.
type BookingWithOwner struct {
	Booking
	Owner User `json:"user"`
}

// CreateBookingInput carries the fields for a new booking request.
type CreateBookingInput struct {
	ServiceName     string  `json:"service_name"`
	ServiceCategory string  `json:"service_category"`
	ScheduledDate   string  `json:"scheduled_date"`
	ScheduledTime   string  `json:"scheduled_time"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	Price           float64 `json:"price"`
	Notes           string  `json:"notes,omitempty"`
	ProviderName    string  `json:"provider_name,omitempty"`
	Location        string  `json:"location,omitempty"`
}

// UpdateBookingInput carries the business fields to change; nil fields are
// left unchanged server-side.
type UpdateBookingInput struct {
	ServiceName     *string  `json:"service_name,omitempty"`
	ServiceCategory *string  `json:"service_category,omitempty"`
	ScheduledDate   *string  `json:"scheduled_date,omitempty"`
	ScheduledTime   *string  `json:"scheduled_time,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	ProviderName    *string  `json:"provider_name,omitempty"`
	Location        *string  `json:"location,omitempty"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type bookingsResponse struct {
	Count    int       `json:"count"`
	Bookings []Booking `json:"bookings"`
}

type allBookingsResponse struct {
	Count    int                `json:"count"`
	Bookings []BookingWithOwner `json:"bookings"`
}

// --- Session ---

// Register creates an account and establishes a session.
func (c *Client) Register(ctx context.Context, name, email, phone, password string) (*User, error) {
	body := map[string]string{"name": name, "email": email, "phone": phone, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.Token, resp.User)
	return resp.User, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.setSession(resp.Token, resp.User)
	return resp.User, nil
}

// Logout discards the session token and local collections. The token itself
// stays valid server-side until it expires.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.user = nil
	c.mine = nil
	c.all = nil
}

// User returns the session user, or nil when not logged in.
func (c *Client) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Token returns the raw session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setSession(token string, user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.user = user
	c.mine = nil
	c.all = nil
}

func (c *Client) isAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil && c.user.Role == "admin"
}

// --- Collections ---

// Mine returns the locally mirrored set of the session user's bookings.
func (c *Client) Mine() []Booking {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Booking, len(c.mine))
	copy(out, c.mine)
	return out
}

// All returns the locally mirrored cross-owner set. Empty unless the session
// user is an administrator and Sync has run.
func (c *Client) All() []BookingWithOwner {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]BookingWithOwner, len(c.all))
	copy(out, c.all)
	return out
}

// Sync re-fetches the session user's bookings and, for administrators, the
// full set. Local state is only replaced when the fetch succeeds.
func (c *Client) Sync(ctx context.Context) error {
	var mine bookingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/bookings/my-bookings", nil, &mine); err != nil {
		return err
	}

	var all *allBookingsResponse
	if c.isAdmin() {
		all = &allBookingsResponse{}
		if err := c.do(ctx, http.MethodGet, "/api/bookings", nil, all); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mine = mine.Bookings
	if all != nil {
		c.all = all.Bookings
	}
	return nil
}

// --- Mutations ---
// Each mutation re-syncs on success so the mirror never diverges from the
// server after concurrent admin actions.

// CreateBooking creates a booking and refreshes the collections.
func (c *Client) CreateBooking(ctx context.Context, input CreateBookingInput) (*Booking, error) {
	var created Booking
	if err := c.do(ctx, http.MethodPost, "/api/bookings", input, &created); err != nil {
		return nil, err
	}
	if err := c.Sync(ctx); err != nil {
		return &created, err
	}
	return &created, nil
}

// UpdateBooking changes a booking's business fields and refreshes the collections.
func (c *Client) UpdateBooking(ctx context.Context, id string, input UpdateBookingInput) (*Booking, error) {
	var updated Booking
	if err := c.do(ctx, http.MethodPut, "/api/bookings/"+id, input, &updated); err != nil {
		return nil, err
	}
	if err := c.Sync(ctx); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// UpdateStatus moves a booking through the state machine (administrator only)
// and refreshes the collections.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*Booking, error) {
	var updated Booking
	if err := c.do(ctx, http.MethodPatch, "/api/bookings/"+id+"/status", map[string]string{"status": status}, &updated); err != nil {
		return nil, err
	}
	if err := c.Sync(ctx); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// CancelBooking cancels a booking and refreshes the collections.
func (c *Client) CancelBooking(ctx context.Context, id string) (*Booking, error) {
	var cancelled Booking
	if err := c.do(ctx, http.MethodPatch, "/api/bookings/"+id+"/cancel", nil, &cancelled); err != nil {
		return nil, err
	}
	if err := c.Sync(ctx); err != nil {
		return &cancelled, err
	}
	return &cancelled, nil
}

// DeleteBooking removes a booking (administrator only) and refreshes the collections.
func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/bookings/"+id, nil, nil); err != nil {
		return err
	}
	return c.Sync(ctx)
}

// GetBooking fetches a single booking without touching local state.
func (c *Client) GetBooking(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/"+id, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// --- Transport ---

func (c *Client) do(ctx context.Context, method, path string, body any, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return APIError{Status: resp.StatusCode, Message: extractError(resp.Body)}
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(body io.Reader) string {
	if body == nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	return strings.TrimSpace(payload.Error)
}
