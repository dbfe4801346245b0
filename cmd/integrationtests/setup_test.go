package integrationtests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-house/internal/auth"
	auctionend "auction-house/internal/auctionEndService"
	auction "auction-house/internal/auctionService"
	auctionstatus "auction-house/internal/auctionStatusService"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/email"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-test-secret"

// testClock lets tests move the repository's notion of time forward
// without waiting.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// TestEnv wires the full service with an in-memory repository and a
// controllable clock. The status sweep is driven manually via Sweep so
// tests stay deterministic.
type TestEnv struct {
	Router *gin.Engine
	Repo   *repository.MemoryRepo
	Hub    *ws.Hub
	Status *auctionstatus.StatusService
	Clock  *testClock
}

// SetupTestEnv initializes the full router with in-memory state for
// integration testing.
func SetupTestEnv() *TestEnv {
	gin.SetMode(gin.TestMode)

	clock := &testClock{t: time.Now().UTC()}
	repo := repository.NewMemoryRepo()
	repo.SetClock(clock.Now)

	authService := auth.NewAuthService(repo, testSecret)

	hub := ws.NewHub()
	hub.SetTokenValidator(func(token string) (string, error) {
		userID, _, err := authService.ResolveIdentity(token)
		return userID, err
	})

	endService := auctionend.NewAuctionEndService(repo, hub, email.NewLogNotifier())
	statusService := auctionstatus.NewStatusService(repo, hub, endService, time.Hour)
	auctionService := auction.NewAuctionService(repo, nil)
	biddingService := bidding.NewBiddingService(repo, hub)

	router := server.SetupRouter(authService, auctionService, biddingService, authService, hub, time.Hour)

	return &TestEnv{
		Router: router,
		Repo:   repo,
		Hub:    hub,
		Status: statusService,
		Clock:  clock,
	}
}

// ExecuteRequest executes an HTTP request on the router and parses the
// response envelope. An empty token leaves the request unauthenticated.
func ExecuteRequest(t *testing.T, env *TestEnv, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	if body != nil {
		switch v := body.(type) {
		case []byte:
			reqBody = v
		case string:
			reqBody = []byte(v)
		default:
			var err error
			reqBody, err = json.Marshal(v)
			require.NoError(t, err)
		}
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// Data extracts the data payload of a response envelope as an object
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

// DataList extracts the data payload of a response envelope as a list
func DataList(t *testing.T, resp map[string]any) []any {
	t.Helper()
	data, ok := resp["data"].([]any)
	require.True(t, ok, "response has no data list: %v", resp)
	return data
}

// RegisterUser registers an account and returns its user id and token
func RegisterUser(t *testing.T, env *TestEnv, username, role string) (string, string) {
	t.Helper()

	resp, w := ExecuteRequest(t, env, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username":  username,
		"full_name": "Test " + username,
		"email":     fmt.Sprintf("%s@example.com", username),
		"password":  "correct-horse-battery",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, w.Code, "register %s failed: %v", username, resp)

	data := Data(t, resp)
	user := data["user"].(map[string]any)
	return user["user_id"].(string), data["token"].(string)
}

// CreateAuction creates an auction starting in an hour and returns its id
func CreateAuction(t *testing.T, env *TestEnv, sellerToken string, startPrice float64) string {
	t.Helper()

	start := env.Clock.Now().Add(time.Hour)
	resp, w := ExecuteRequest(t, env, http.MethodPost, "/api/auctions", sellerToken, map[string]any{
		"title":       "walnut writing desk",
		"description": "late 19th century, original hardware",
		"start_price": startPrice,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    start.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, "create auction failed: %v", resp)
	return Data(t, resp)["auction_id"].(string)
}
