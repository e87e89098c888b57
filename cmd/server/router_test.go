package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhq/volunteer-api/internal/config"
	"github.com/volunteerhq/volunteer-api/internal/domain"
	"github.com/volunteerhq/volunteer-api/internal/platform/postgres"
	"github.com/volunteerhq/volunteer-api/internal/platform/tracing"
	"github.com/volunteerhq/volunteer-api/internal/testutils"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:             8080,
			LogLevel:         "debug",
			InputErrorStatus: http.StatusBadRequest,
			MaxBodyBytes:     1 << 20,
			ShutdownTimeout:  time.Second,
		},
		Database: config.DatabaseConfig{URL: "postgres://localhost/volunteer", MaxOpenConns: 1},
		Auth: config.AuthConfig{
			JWTSecret:     "an-example-secret-of-thirty-two-bytes!",
			CookieName:    "volunteer_session",
			ClockSkew:     30 * time.Second,
			TokenLifetime: time.Hour,
		},
	}
}

func newTestServer(t *testing.T) (*application, sqlmock.Sqlmock, *testutils.TestSlogHandler, func(string, string, string, string) (int, []byte)) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	logs := testutils.NewTestSlogHandler(0)
	log := logs.Logger()
	tp, err := tracing.New(context.Background(), testConfig().Tracing, log)
	require.NoError(t, err)
	app, err := newApplication(testConfig(), log, nil, tp, stores{
		hotels: postgres.NewHotelStore(db, log),
		logs:   postgres.NewLogStore(db, log),
	})
	require.NoError(t, err)

	router, err := app.setupRouter()
	require.NoError(t, err)
	server := testutils.CreateTestServer(t, router)
	do := func(method, path, body, token string) (int, []byte) {
		return testutils.Do(t, server, method, path, body, token)
	}
	return app, mock, logs, do
}

func TestHealth(t *testing.T) {
	_, _, _, do := newTestServer(t)

	status, body := do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))
}

func TestHotelOptionsArePublic(t *testing.T) {
	_, mock, _, do := newTestServer(t)

	mock.ExpectQuery(`AND visible = TRUE`).
		WithArgs("2026").
		WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "hotel_name", "hotel_description", "room_name", "room_price", "visible"}).
			AddRow(1, "Grand", "", "Single", 8900, true))

	status, body := do(http.MethodGet, "/api/events/2026/hotels", "", "")
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"success":true,"hotels":[{"name":"Grand","description":"","rooms":[{"id":1,"name":"Single","price":8900}]}]}`, string(body))
}

func TestAdminHotelsRequireToken(t *testing.T) {
	app, _, _, do := newTestServer(t)

	status, body := do(http.MethodGet, "/api/admin/events/2026/hotels", "", "")
	testutils.AssertFailure(t, status, body, http.StatusForbidden, "")

	volunteer, err := app.tokens.Issue(context.Background(), domain.Identity{UserID: 3, Username: "vol"})
	require.NoError(t, err)
	status, body = do(http.MethodGet, "/api/admin/events/2026/hotels", "", volunteer)
	testutils.AssertFailure(t, status, body, http.StatusForbidden, "")

	status, body = do(http.MethodGet, "/api/admin/events/2026/hotels", "", "not-a-token")
	testutils.AssertFailure(t, status, body, http.StatusForbidden, "")
}

func TestAdminHotelCreateWritesLog(t *testing.T) {
	app, mock, logs, do := newTestServer(t)

	token, err := app.tokens.Issue(context.Background(), domain.Identity{
		UserID: 7, Username: "hotels", Privileges: domain.PrivilegeEventHotelManagement,
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO hotels`).
		WithArgs("2026", "Harbour", "Sea view", "Suite", int64(25000), true).
		WillReturnRows(sqlmock.NewRows([]string{"hotel_id"}).AddRow(31))
	mock.ExpectExec(`INSERT INTO logs`).
		WithArgs("hotel", "Created", int64(7), int64(31), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	status, body := do(http.MethodPost, "/api/admin/events/2026/hotels",
		`{"row":{"id":0,"name":"Harbour","description":"Sea view","roomName":"Suite","roomPrice":25000,"visible":true}}`, token)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"success":true,"row":{"id":31,"name":"Harbour","description":"Sea view","roomName":"Suite","roomPrice":25000,"visible":true}}`, string(body))

	created := logs.Find("hotel created")
	require.Len(t, created, 1)
	assert.Equal(t, int64(31), created[0]["hotel_id"])
	assert.NotEmpty(t, created[0]["request_id"])
}

func TestAdminInputErrorsUseConfiguredStatus(t *testing.T) {
	app, _, logs, do := newTestServer(t)

	token, err := app.tokens.Issue(context.Background(), domain.Identity{
		UserID: 7, Username: "hotels", Privileges: domain.PrivilegeEventHotelManagement,
	})
	require.NoError(t, err)

	status, body := do(http.MethodPut, "/api/admin/events/2026/hotels/4",
		`{"row":{"id":5,"name":"Grand","description":"","roomName":"Single","roomPrice":1,"visible":true}}`, token)
	testutils.AssertFailure(t, status, body, http.StatusBadRequest, "does not match the route id")
	assert.Len(t, logs.Find("rejected request input"), 1)
}
