package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/dto"
	"github.com/azizemirhan/hubcenter/internal/entity"
)

type fakeCRM struct {
	mu        sync.Mutex
	logins    int
	expiresIn time.Duration
	customers map[int64]map[string]any
	hostings  map[int64]map[string]any
	domains   map[int64]map[string]any
	nextID    int64
	paginate  bool
	calls     []string
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		expiresIn: time.Hour,
		customers: map[int64]map[string]any{},
		hostings:  map[int64]map[string]any{},
		domains:   map[int64]map[string]any{},
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (f *fakeCRM) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)

		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		if path == loginPath {
			var req dto.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"bad credentials"}`))
				return
			}
			f.logins++
			writeJSON(w, http.StatusOK, dto.LoginResponse{Access: signedToken(t, time.Now().Add(f.expiresIn)), Refresh: "r"})
			return
		}
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte("secret"), nil }); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var store map[int64]map[string]any
		var base string
		switch {
		case strings.HasPrefix(path, customersPath):
			store, base = f.customers, customersPath
		case strings.HasPrefix(path, hostingsPath):
			store, base = f.hostings, hostingsPath
		case strings.HasPrefix(path, domainsPath):
			store, base = f.domains, domainsPath
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		rest := strings.Trim(strings.TrimPrefix(path, base), "/")

		switch {
		case r.Method == http.MethodGet && rest == "":
			f.list(w, r, store)
		case r.Method == http.MethodPost && rest == "":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if base == customersPath && body["phone"] == "" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"phone": []string{"This field may not be blank."}})
				return
			}
			f.nextID++
			body["id"] = f.nextID
			store[f.nextID] = body
			writeJSON(w, http.StatusCreated, body)
		case r.Method == http.MethodPatch:
			id, _ := strconv.ParseInt(rest, 10, 64)
			rec, ok := store[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			for k, v := range body {
				rec[k] = v
			}
			writeJSON(w, http.StatusOK, rec)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func (f *fakeCRM) list(w http.ResponseWriter, r *http.Request, store map[int64]map[string]any) {
	q := r.URL.Query()
	out := []map[string]any{}
	for _, rec := range store {
		if c := q.Get("customer"); c != "" && toString(rec["customer"]) != c {
			continue
		}
		if s := q.Get("search"); s != "" {
			hit := false
			for _, v := range rec {
				if str, ok := v.(string); ok && strings.Contains(str, s) {
					hit = true
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, rec)
	}
	if f.paginate {
		writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "results": out})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func toString(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case string:
		return n
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeCRM, password string) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(config.CRMConfig{
		BaseURL:  srv.URL + "/api/v1/",
		Email:    "bot@example.com",
		Password: password,
		Timeout:  5 * time.Second,
	})
}

func customer(domain, phone string) dto.CustomerPayload {
	return dto.CustomerPayload{
		CompanyName:       "Example",
		ContactPerson:     "Yetkili Kişi",
		Email:             "info@" + domain,
		Phone:             phone,
		Website:           "https://" + domain,
		Source:            "website",
		HasHostingService: true,
	}
}

func TestCreateOrUpdateCustomerIsIdempotent(t *testing.T) {
	f := newFakeCRM()
	f.paginate = true
	c := newTestClient(t, f, "secret")
	ctx := context.Background()

	first, action, err := c.CreateOrUpdateCustomer(ctx, "example.com", customer("example.com", "05321234567"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if action != entity.ActionCreated || first.ID == 0 {
		t.Fatalf("expected created customer, got %s %+v", action, first)
	}

	update := customer("example.com", "")
	update.Address = "Kadıköy, İstanbul"
	second, action, err := c.CreateOrUpdateCustomer(ctx, "example.com", update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if action != entity.ActionUpdated || second.ID != first.ID {
		t.Fatalf("expected update of %d, got %s %+v", first.ID, action, second)
	}
	if len(f.customers) != 1 {
		t.Fatalf("expected one customer, got %d", len(f.customers))
	}
	rec := f.customers[first.ID]
	if rec["phone"] != "05321234567" {
		t.Fatalf("empty phone must not overwrite stored value, got %v", rec["phone"])
	}
	if rec["address"] != "Kadıköy, İstanbul" {
		t.Fatalf("expected address patched, got %v", rec["address"])
	}
	if f.logins != 1 {
		t.Fatalf("expected token reuse, got %d logins", f.logins)
	}
	patch := fmt.Sprintf("PATCH /api/v1/customers/list/%d/", first.ID)
	if !slices.Contains(f.calls, patch) {
		t.Fatalf("expected %q among calls %v", patch, f.calls)
	}
}

func TestCreateCustomerRejected(t *testing.T) {
	c := newTestClient(t, newFakeCRM(), "secret")

	_, _, err := c.CreateOrUpdateCustomer(context.Background(), "nophone.com", customer("nophone.com", ""))
	var recErr *apperr.ReconciliationError
	if err == nil || !errors.As(err, &recErr) {
		t.Fatalf("expected reconciliation error, got %v", err)
	}
	if recErr.StatusCode != http.StatusBadRequest || !strings.Contains(recErr.Body, "phone") {
		t.Fatalf("unexpected error detail: %+v", recErr)
	}
}

func TestFindByWebsitePrefersExactHost(t *testing.T) {
	f := newFakeCRM()
	f.customers[1] = map[string]any{"id": 1, "website": "https://shop.example.com", "company_name": "Shop"}
	f.customers[2] = map[string]any{"id": 2, "website": "https://www.example.com/", "company_name": "Main"}
	c := newTestClient(t, f, "secret")

	rec := c.FindByWebsite(context.Background(), "example.com")
	if rec == nil || rec.ID != 2 {
		t.Fatalf("expected exact website match, got %+v", rec)
	}
	if got := c.FindByWebsite(context.Background(), "missing.org"); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestLoginFailure(t *testing.T) {
	c := newTestClient(t, newFakeCRM(), "wrong")

	err := c.TestConnection(context.Background())
	if !apperr.IsAuthentication(err) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status in message, got %v", err)
	}
}

func TestExpiredTokenTriggersRelogin(t *testing.T) {
	f := newFakeCRM()
	f.expiresIn = 10 * time.Second
	c := newTestClient(t, f, "secret")
	ctx := context.Background()

	if err := c.TestConnection(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.TestConnection(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if f.logins != 2 {
		t.Fatalf("expected token inside leeway to be refreshed, got %d logins", f.logins)
	}
}

func TestUnauthorizedRetriesOnce(t *testing.T) {
	f := newFakeCRM()
	c := newTestClient(t, f, "secret")
	c.token = "stale"

	if err := c.TestConnection(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if f.logins != 1 {
		t.Fatalf("expected one re-login, got %d", f.logins)
	}
}

func TestCreateOrUpdateHosting(t *testing.T) {
	f := newFakeCRM()
	f.hostings[7] = map[string]any{"id": 7, "customer": 3, "provider": "SiteGround", "notes": "Domain: shop.example.com"}
	f.hostings[8] = map[string]any{"id": 8, "customer": 3, "provider": "SiteGround", "notes": "Domain: example.com\nPlan: GrowBig"}
	f.nextID = 10
	c := newTestClient(t, f, "secret")
	ctx := context.Background()

	payload := dto.HostingPayload{Provider: "SiteGround", PlanName: "GoGeek", StartDate: "2024-01-01", ExpireDate: "2025-01-01", Notes: "Domain: example.com"}
	rec, action, err := c.CreateOrUpdateHosting(ctx, 3, "example.com", payload)
	if err != nil {
		t.Fatalf("hosting: %v", err)
	}
	if action != entity.ActionUpdated || rec.ID != 8 {
		t.Fatalf("expected exact notes match on 8, got %s %+v", action, rec)
	}
	if f.hostings[8]["plan_name"] != "GoGeek" {
		t.Fatalf("expected plan updated, got %v", f.hostings[8])
	}

	payload.Notes = "Domain: other.net"
	rec, action, err = c.CreateOrUpdateHosting(ctx, 3, "other.net", payload)
	if err != nil {
		t.Fatalf("hosting: %v", err)
	}
	if action != entity.ActionCreated || rec.ID != 11 {
		t.Fatalf("expected new hosting, got %s %+v", action, rec)
	}
}

func TestCreateOrUpdateDomain(t *testing.T) {
	f := newFakeCRM()
	c := newTestClient(t, f, "secret")
	ctx := context.Background()
	payload := dto.DomainPayload{DomainName: "example.com", Registrar: "SiteGround", RegisterDate: "2024-01-01", ExpireDate: "2025-01-01"}

	first, action, err := c.CreateOrUpdateDomain(ctx, 4, payload)
	if err != nil || action != entity.ActionCreated {
		t.Fatalf("expected create, got %s %v", action, err)
	}
	payload.Nameservers = "ns1.siteground.net\nns2.siteground.net"
	second, action, err := c.CreateOrUpdateDomain(ctx, 4, payload)
	if err != nil || action != entity.ActionUpdated || second.ID != first.ID {
		t.Fatalf("expected update of %d, got %s %+v %v", first.ID, action, second, err)
	}
	if len(f.domains) != 1 {
		t.Fatalf("expected one domain record, got %d", len(f.domains))
	}
}

func TestMatchHosting(t *testing.T) {
	records := []dto.HostingRecord{
		{ID: 1, Notes: "old site mirror of example.com"},
		{ID: 2, Notes: "Plan: X\ndomain:  Example.com "},
	}
	if got := matchHosting(records, "example.com"); got == nil || got.ID != 2 {
		t.Fatalf("expected exact token match, got %+v", got)
	}
	if got := matchHosting(records[:1], "example.com"); got == nil || got.ID != 1 {
		t.Fatalf("expected substring fallback, got %+v", got)
	}
	if got := matchHosting(records, "other.org"); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}
