package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
)

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestNewMCPServer(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	server, err := newMCPServer()

	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestNewMCPServer_MissingServices(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	goalService = nil

	_, err := newMCPServer()

	assert.Error(t, err)
}

func TestNewRESTServer_ServesWiredServices(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "--user", "alice", "goal", "set", "calories=2000")
	require.NoError(t, err)

	server, err := newRESTServer()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/alice/goals", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Goals []present.Goal `json:"goals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Goals, 1)

	// The configured default timezone applies.
	req = httptest.NewRequest(http.MethodGet, "/v1/users/alice/progress", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"timezone":"UTC"`))
}

func TestServeCmd_HasAddrFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestNewDashboard(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	resetFlags(rootCmd)
	dashboardCmd.SetContext(t.Context())

	app, err := newDashboard(dashboardCmd)

	require.NoError(t, err)
	assert.Equal(t, "2024-05-04", app.Day().String())
}

func TestNewDashboard_BadTimezone(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	resetFlags(rootCmd)
	dashboardTZ = "Nowhere/Special"
	defer func() { dashboardTZ = "" }()
	dashboardCmd.SetContext(t.Context())

	_, err := newDashboard(dashboardCmd)

	assert.Error(t, err)
}

func TestDashboardCmd_Alias(t *testing.T) {
	assert.Contains(t, dashboardCmd.Aliases, "tui")
}
