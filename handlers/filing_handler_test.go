package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fenilmodi00/sebi-ipo-api/database"
	"github.com/fenilmodi00/sebi-ipo-api/middleware"
	"github.com/fenilmodi00/sebi-ipo-api/services"
	"github.com/fenilmodi00/sebi-ipo-api/shared"
)

const testAPIKey = "test-api-key"

// newDeadStore opens a pool against a port nothing listens on. Opening
// succeeds (the pool is lazy); every acquire and ping then fails fast,
// which is exactly the store-down behavior the API has to survive.
func newDeadStore(t *testing.T) *database.Store {
	t.Helper()

	cfg := shared.NewDefaultDatabaseConfig()
	cfg.PingTimeout = 200 * time.Millisecond

	store, err := database.ConnectWithConfig("root:@tcp(127.0.0.1:1)/sebi_ipo_db?parseTime=true", &cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

// newTestApp mirrors the route wiring in main: public welcome and health,
// protected filings routes with the limiter ahead of the key guard.
func newTestApp(t *testing.T, limit int) *fiber.App {
	t.Helper()

	store := newDeadStore(t)
	counterStore := shared.NewMemoryCounterStore()
	t.Cleanup(func() { counterStore.Close() })

	filingHandler := NewFilingHandler(services.NewFilingService(store))
	healthHandler := NewHealthHandler(store)

	app := fiber.New()
	app.Get("/", healthHandler.GetWelcome)
	app.Get("/health", healthHandler.GetHealth)
	app.Get("/ipos",
		middleware.RateLimit(counterStore, limit, time.Minute, "ipos:list"),
		middleware.APIKeyAuth(testAPIKey),
		filingHandler.GetFilings)
	app.Get("/ipos/latest",
		middleware.RateLimit(counterStore, limit, time.Minute, "ipos:latest"),
		middleware.APIKeyAuth(testAPIKey),
		filingHandler.GetLatestFilings)
	app.Get("/ipos/:id",
		middleware.RateLimit(counterStore, limit, time.Minute, "ipos:detail"),
		middleware.APIKeyAuth(testAPIKey),
		filingHandler.GetFilingByID)
	return app
}

func get(t *testing.T, app *fiber.App, path string, withKey bool) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s: %v", path, err)
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s body: %v", path, err)
	}
	return resp.StatusCode, body
}

func TestWelcomePayload(t *testing.T) {
	app := newTestApp(t, 100)

	status, body := get(t, app, "/", false)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["message"] != "Welcome to SEBI IPO API" {
		t.Errorf("message = %v", body["message"])
	}
	if body["version"] != "1.0.0" {
		t.Errorf("version = %v", body["version"])
	}
	if body["status"] != "active" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["authentication"] != "Required - Use X-API-Key header" {
		t.Errorf("authentication = %v", body["authentication"])
	}
}

func TestHealthReportsStoreDownWith200(t *testing.T) {
	app := newTestApp(t, 100)

	status, body := get(t, app, "/health", false)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, health is always 200", status)
	}
	if body["status"] != "unhealthy" || body["database"] != "disconnected" {
		t.Errorf("body = %v, want unhealthy/disconnected", body)
	}
}

func TestProtectedRoutesRequireKey(t *testing.T) {
	app := newTestApp(t, 100)

	for _, path := range []string{"/ipos", "/ipos/latest", "/ipos/1"} {
		status, body := get(t, app, path, false)
		if status != fiber.StatusUnauthorized {
			t.Errorf("%s without key: status = %d, want 401", path, status)
		}
		if body["error"] != "Invalid or missing API key" {
			t.Errorf("%s error = %v", path, body["error"])
		}
	}
}

func TestPublicRoutesNeedNoKey(t *testing.T) {
	app := newTestApp(t, 100)

	for _, path := range []string{"/", "/health"} {
		status, _ := get(t, app, path, false)
		if status != fiber.StatusOK {
			t.Errorf("%s: status = %d, want 200 without key", path, status)
		}
	}
}

func TestListSurfacesConnectionFailure(t *testing.T) {
	app := newTestApp(t, 100)

	status, body := get(t, app, "/ipos", true)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["error"] != "Database connection failed" {
		t.Errorf("error = %v, want fixed connection-failure message", body["error"])
	}
}

func TestListValidation(t *testing.T) {
	app := newTestApp(t, 1000)

	tests := []struct {
		path    string
		wantErr string
	}{
		{"/ipos?page=0", "page must be greater than or equal to 1"},
		{"/ipos?page=-3", "page must be greater than or equal to 1"},
		{"/ipos?page=abc", "page must be an integer"},
		{"/ipos?limit=0", "limit must be between 1 and 500"},
		{"/ipos?limit=501", "limit must be between 1 and 500"},
		{"/ipos?limit=abc", "limit must be an integer"},
		{"/ipos/latest?limit=0", "limit must be between 1 and 100"},
		{"/ipos/latest?limit=101", "limit must be between 1 and 100"},
	}

	for _, tt := range tests {
		status, body := get(t, app, tt.path, true)
		if status != fiber.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.path, status)
			continue
		}
		if body["error"] != tt.wantErr {
			t.Errorf("%s: error = %v, want %q", tt.path, body["error"], tt.wantErr)
		}
	}
}

func TestDetailRejectsNonIntegerID(t *testing.T) {
	app := newTestApp(t, 100)

	status, body := get(t, app, "/ipos/abc", true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["error"] != "Invalid filing ID" {
		t.Errorf("error = %v", body["error"])
	}
}

// /ipos/latest is registered before /ipos/:id; the literal path must win.
// The two handlers reject bad input with different messages, which makes
// the winner visible without a database.
func TestLatestRouteBeatsDetailRoute(t *testing.T) {
	app := newTestApp(t, 100)

	status, body := get(t, app, "/ipos/latest?limit=9999", true)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["error"] != "limit must be between 1 and 100" {
		t.Errorf("error = %v, request was routed to the :id handler", body["error"])
	}
}

func TestRateLimitRunsBeforeAuth(t *testing.T) {
	app := newTestApp(t, 2)

	// Exhaust the list scope with unauthorized requests.
	get(t, app, "/ipos", false)
	get(t, app, "/ipos", false)

	status, body := get(t, app, "/ipos", false)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 ahead of the 401", status)
	}
	if body["error"] != "Rate limit exceeded: 2 per 1 minute" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRateLimitIsPerEndpoint(t *testing.T) {
	app := newTestApp(t, 2)

	get(t, app, "/ipos", true)
	get(t, app, "/ipos", true)
	status, _ := get(t, app, "/ipos", true)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("list scope not exhausted: %d", status)
	}

	// The latest scope still has budget; with the store down the request
	// reaches the handler and fails there instead.
	status, body := get(t, app, "/ipos/latest", true)
	if status != fiber.StatusInternalServerError {
		t.Errorf("latest status = %d, want 500 (past the limiter, into the handler)", status)
	}
	if body["error"] != "Database connection failed" {
		t.Errorf("latest error = %v", body["error"])
	}
}

func TestTotalPagesProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total_pages is the ceiling of total/limit", prop.ForAll(
		func(total, limit int) bool {
			pages := totalPages(total, limit)
			if total == 0 {
				return pages == 0
			}
			return pages*limit >= total && (pages-1)*limit < total
		},
		gen.IntRange(0, 1_000_000),
		gen.IntRange(1, 500),
	))

	properties.Property("a full last page never rounds up", prop.ForAll(
		func(pages, limit int) bool {
			return totalPages(pages*limit, limit) == pages
		},
		gen.IntRange(1, 2000),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t)
}

func TestTotalPagesExamples(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{1234, 50, 25},
		{500, 500, 1},
		{501, 500, 2},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestParseHelpersDefaults(t *testing.T) {
	app := fiber.New()
	app.Get("/echo", func(c *fiber.Ctx) error {
		page, err := parseMinQuery(c, "page", 1, 1)
		if err != nil {
			return badRequest(c, err)
		}
		limit, err := parseRangeQuery(c, "limit", 50, 1, 500)
		if err != nil {
			return badRequest(c, err)
		}
		return c.JSON(fiber.Map{"page": page, "limit": limit})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/echo", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var body map[string]float64
	json.NewDecoder(resp.Body).Decode(&body)
	if body["page"] != 1 || body["limit"] != 50 {
		t.Errorf("defaults = %v, want page 1 limit 50", body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/echo?page=%d&limit=%d", 7, 200), nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["page"] != 7 || body["limit"] != 200 {
		t.Errorf("parsed = %v, want page 7 limit 200", body)
	}
}
