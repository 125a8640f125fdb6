package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"expensebuddy/internal/config"
	"expensebuddy/internal/database"
)

func testConfig(driver, dsn string) config.Config {
	return config.Config{
		AppAddr:          "127.0.0.1:0",
		DBDriver:         driver,
		DBDSN:            dsn,
		JWTSecret:        "test_jwt_secret",
		JWTIssuer:        "expensebuddy",
		JWTTTL:           time.Hour,
		BcryptCost:       bcrypt.MinCost,
		RabbitMQExchange: "transaction_events",
		LogLevel:         logrus.InfoLevel,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestApp(t *testing.T, cfg config.Config) *application {
	t.Helper()
	app, err := newApp(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func call(t *testing.T, app *application, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	app := newTestApp(t, testConfig(database.DriverSQLite, filepath.Join(t.TempDir(), "expense_tracker.db")))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.fiber.Listener(ln)
	}()
	t.Cleanup(func() { _ = app.fiber.ShutdownWithTimeout(time.Second) })

	healthCheckURL := fmt.Sprintf("http://%s/health", ln.Addr().String())
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(healthCheckURL)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(bodyBytes), `"status":"healthy"`)
	assert.Contains(t, string(bodyBytes), `"database":"sqlite"`)
	assert.Contains(t, string(bodyBytes), `"events":false`)
}

func TestUnauthenticatedAccess(t *testing.T) {
	app := newTestApp(t, testConfig(config.DriverMemory, ""))

	status, _ := call(t, app, http.MethodGet, "/api/v1/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/api/v1/transactions/total", "nonsense", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestExpenseFlow(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, database.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			dsn := ""
			if driver == database.DriverSQLite {
				dsn = filepath.Join(t.TempDir(), "expense_tracker.db")
			}
			app := newTestApp(t, testConfig(driver, dsn))
			creds := map[string]string{"username": "alice", "password": "pw1"}

			status, body := call(t, app, http.MethodPost, "/api/v1/auth/register", "", creds)
			require.Equal(t, http.StatusCreated, status)
			userID := body["user_id"]

			status, body = call(t, app, http.MethodPost, "/api/v1/auth/login", "", creds)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, userID, body["user_id"])
			assert.Equal(t, "Welcome alice!", body["message"])
			token := body["token"].(string)

			added := map[string]float64{}
			for _, tx := range []map[string]any{
				{"date": "2024-01-05", "category": "Grocery", "description": "veg", "amount": "12.00"},
				{"date": "2024-01-01", "category": "Transport", "description": "bus", "amount": "5.00"},
				{"date": "2024-01-10", "category": "Other", "description": "refund", "amount": "-2.00"},
			} {
				status, body = call(t, app, http.MethodPost, "/api/v1/transactions", token, tx)
				require.Equal(t, http.StatusCreated, status)
				added[tx["date"].(string)] = body["id"].(float64)
			}

			status, body = call(t, app, http.MethodGet, "/api/v1/transactions", token, nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, "date", body["sort"])
			assert.Equal(t, "15.00", body["total"])
			listed := body["transactions"].([]any)
			require.Len(t, listed, 3)
			assert.Equal(t, "2024-01-01", listed[0].(map[string]any)["date"])
			assert.Equal(t, "2024-01-05", listed[1].(map[string]any)["date"])
			assert.Equal(t, "2024-01-10", listed[2].(map[string]any)["date"])

			status, body = call(t, app, http.MethodDelete, "/api/v1/transactions", token,
				map[string]any{"ids": []float64{added["2024-01-05"]}})
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, float64(1), body["deleted"])

			status, body = call(t, app, http.MethodGet, "/api/v1/transactions/total", token, nil)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, "3.00", body["total"])
		})
	}
}

func TestTokenDoesNotOutliveMemoryStore(t *testing.T) {
	cfg := testConfig(config.DriverMemory, "")
	creds := map[string]string{"username": "alice", "password": "pw1"}

	first := newTestApp(t, cfg)
	status, _ := call(t, first, http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, status)
	status, body := call(t, first, http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)

	// Same secret, fresh in-memory store: the user behind the token is gone.
	restarted := newTestApp(t, cfg)
	status, _ = call(t, restarted, http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"date": "2024-01-01", "category": "Dairy", "description": "milk", "amount": "1.00",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}
