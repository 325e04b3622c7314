package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ekipteam/ekip/internal/core/domain"
)

type authFake struct {
	token string
	user  domain.UserContext
}

func (a *authFake) Login(_ context.Context, email string) (string, *domain.UserContext, error) {
	if email != a.user.Email {
		return "", nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("unknown user"))
	}
	user := a.user
	return a.token, &user, nil
}

func (a *authFake) Authenticate(_ context.Context, token string) (*domain.UserContext, error) {
	if token != a.token {
		return nil, domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("bad token"))
	}
	user := a.user
	return &user, nil
}

type searchFake struct {
	calls    int
	gotUser  domain.UserContext
	gotQuery string
	gotDept  string
	result   *domain.SearchResult
	err      error
}

func (s *searchFake) Search(_ context.Context, user domain.UserContext, query, departmentFilter string) (*domain.SearchResult, error) {
	s.calls++
	s.gotUser = user
	s.gotQuery = query
	s.gotDept = departmentFilter
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestRouter(search *searchFake, cfg Config) (*Router, *authFake) {
	auth := &authFake{
		token: "valid-token",
		user: domain.UserContext{
			UserID: "u1", Email: "maria@ekip.io", Department: "HR",
			Roles: []string{domain.RoleEmployee, domain.RoleHR},
		},
	}
	return NewRouter(auth, search, nil, cfg), auth
}

func TestLoginReturnsToken(t *testing.T) {
	router, _ := newTestRouter(&searchFake{}, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"maria@ekip.io"}`))
	if err != nil {
		t.Fatalf("POST login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		AccessToken string             `json:"access_token"`
		TokenType   string             `json:"token_type"`
		User        domain.UserContext `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.AccessToken != "valid-token" || body.TokenType != "bearer" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.User.Department != "HR" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	router, _ := newTestRouter(&searchFake{}, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"ghost@ekip.io"}`))
	if err != nil {
		t.Fatalf("POST login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSearchRequiresBearerToken(t *testing.T) {
	search := &searchFake{}
	router, _ := newTestRouter(search, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/search", "application/json",
		strings.NewReader(`{"query":"vacation days"}`))
	if err != nil {
		t.Fatalf("POST search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if search.calls != 0 {
		t.Fatalf("search must not run without authentication")
	}
}

func TestSearchRejectsInvalidToken(t *testing.T) {
	search := &searchFake{}
	router, _ := newTestRouter(search, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/search",
		strings.NewReader(`{"query":"vacation days"}`))
	req.Header.Set("Authorization", "Bearer forged")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if search.calls != 0 {
		t.Fatalf("search must not run with an invalid token")
	}
}

func TestSearchPassesIdentityAndFilters(t *testing.T) {
	search := &searchFake{
		result: &domain.SearchResult{
			Answer:      "25 days [1].",
			Citations:   []domain.Citation{{Marker: 1, DocTitle: "Handbook", DocID: "d1"}},
			LatencyMs:   12,
			ChunksFound: 3,
		},
	}
	router, _ := newTestRouter(search, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/search",
		strings.NewReader(`{"query":"vacation days","department_filter":"HR"}`))
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if search.gotUser.UserID != "u1" || search.gotQuery != "vacation days" || search.gotDept != "HR" {
		t.Fatalf("unexpected call: user=%+v query=%q dept=%q", search.gotUser, search.gotQuery, search.gotDept)
	}

	var body domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Answer != "25 days [1]." || body.ChunksFound != 3 || len(body.Citations) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestSearchMapsInvalidInput(t *testing.T) {
	search := &searchFake{
		err: domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query is empty")),
	}
	router, _ := newTestRouter(search, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/search",
		strings.NewReader(`{"query":"  "}`))
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	router, _ := newTestRouter(&searchFake{}, Config{RateLimitRPS: 0.001, RateLimitBurst: 1})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first request should pass, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	router, _ := newTestRouter(&searchFake{}, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/health", nil)
	req.Header.Set(requestIDHeader, "req-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestLoginRejectsNonPost(t *testing.T) {
	router, _ := newTestRouter(&searchFake{}, Config{})
	server := httptest.NewServer(router.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/auth/login")
	if err != nil {
		t.Fatalf("GET login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
