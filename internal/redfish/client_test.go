package redfish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/redfish-verify/internal/config"
)

const testToken = "token-abc123"

type testService struct {
	server        *httptest.Server
	loginCount    int
	logoutCount   int
	lastAuthToken string
}

func newTestService(t *testing.T) *testService {
	t.Helper()

	svc := &testService{}
	svc.server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/redfish/v1/SessionService/Sessions":
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds["UserName"] != "admin" || creds["Password"] != "hunter2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			svc.loginCount++
			w.Header().Set("X-Auth-Token", testToken)
			w.Header().Set("Location", "/redfish/v1/SessionService/Sessions/1")
			w.WriteHeader(http.StatusCreated)

		case r.Method == http.MethodDelete && r.URL.Path == "/redfish/v1/SessionService/Sessions/1":
			svc.logoutCount++
			w.WriteHeader(http.StatusNoContent)

		case r.Method == http.MethodGet && r.URL.Path == "/redfish/v1":
			svc.lastAuthToken = r.Header.Get("X-Auth-Token")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"@odata.id": "/redfish/v1", "@odata.type": "#ServiceRoot.v1_5_0.ServiceRoot"}`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(svc.server.Close)

	return svc
}

func testClient(svc *testService, user, password string) *Client {
	return NewClient(&config.Config{
		User:             user,
		Password:         password,
		Host:             svc.server.URL,
		RequestTimeoutMs: 5000,
		RetryAttempts:    1,
		InsecureTLS:      true,
	})
}

func TestLoginLogoutLifecycle(t *testing.T) {
	svc := newTestService(t)
	client := testClient(svc, "admin", "hunter2")
	ctx := context.Background()

	require.NoError(t, client.Login(ctx))
	assert.Equal(t, 1, svc.loginCount)

	res, err := client.Get(ctx, "/redfish/v1")
	require.NoError(t, err)
	assert.Equal(t, testToken, svc.lastAuthToken)

	id, ok := res.Identifier()
	assert.True(t, ok)
	assert.Equal(t, "/redfish/v1", id)

	require.NoError(t, client.Logout(ctx))
	assert.Equal(t, 1, svc.logoutCount)

	// Logout with no session is a no-op
	require.NoError(t, client.Logout(ctx))
	assert.Equal(t, 1, svc.logoutCount)
}

func TestLoginRejected(t *testing.T) {
	svc := newTestService(t)
	client := testClient(svc, "admin", "wrong")

	err := client.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected login")
}

func TestGetNotFoundIsNotRetried(t *testing.T) {
	requests := 0
	missing := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer missing.Close()

	client := NewClient(&config.Config{
		User:             "admin",
		Password:         "hunter2",
		Host:             missing.URL,
		RequestTimeoutMs: 5000,
		RetryAttempts:    3,
		InsecureTLS:      true,
	})

	_, err := client.Get(context.Background(), "/redfish/v1/Gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, 1, requests)
}

func TestHostSchemeNormalization(t *testing.T) {
	client := NewClient(&config.Config{
		User:     "admin",
		Password: "hunter2",
		Host:     "192.168.1.10",
	})
	assert.Equal(t, "https://192.168.1.10", client.BaseURL())

	client = NewClient(&config.Config{
		User:     "admin",
		Password: "hunter2",
		Host:     "http://192.168.1.10/",
	})
	assert.Equal(t, "http://192.168.1.10", client.BaseURL())
}
