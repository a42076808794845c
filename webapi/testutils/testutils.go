// Package testutils provides an end-to-end suite that drives the HTTP API
// over a real SQLite-backed application.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	infraeventbus "github.com/amirasaad/ledger/infra/eventbus"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/lock"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/amirasaad/ledger/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite builds a fresh application per test.
type E2ETestSuite struct {
	suite.Suite
	App    *fiber.App
	Ledger *app.App
	Bus    *infraeventbus.MemoryEventBus
	// JwtSecret enables token verification when set before SetupTest runs.
	JwtSecret string
}

// SetupTest wires the application over a private in-memory database.
func (s *E2ETestSuite) SetupTest() {
	_, uow := testutils.NewSQLiteUoW(s.T())
	logger := testutils.DiscardLogger()
	s.Bus = infraeventbus.NewWithMemory(logger)

	cfg := &config.App{
		Env:       "test",
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: s.JwtSecret, Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 10_000, Window: time.Minute},
		Ledger:    &config.Ledger{OperationTimeout: 5 * time.Second},
	}
	s.Ledger = app.New(&app.Deps{
		Uow:      uow,
		Locker:   lock.NewKeyed(),
		EventBus: s.Bus,
		Logger:   logger,
	}, cfg)
	s.App = webapi.SetupApp(s.Ledger)
}

// MakeRequest performs a request against the suite's app.
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	return testutils.MakeRequest(s.T(), s.App, method, path, body, token)
}

// Decode reads a success envelope and unmarshals its data into out.
func (s *E2ETestSuite) Decode(resp *http.Response, out any) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	s.Require().NoError(json.Unmarshal(envelope.Data, out))
}

// CreateTestUser registers a user through the API and returns its ID.
func (s *E2ETestSuite) CreateTestUser(email string) string {
	resp := s.MakeRequest(fiber.MethodPost, "/users",
		fmt.Sprintf(`{"email":%q,"names":"Test User"}`, email), "")
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	var u struct {
		ID string `json:"id"`
	}
	s.Decode(resp, &u)
	return u.ID
}

// CreateTestAccount opens an account for userID and returns its ID.
func (s *E2ETestSuite) CreateTestAccount(userID, token string) string {
	resp := s.MakeRequest(fiber.MethodPost, "/users/"+userID+"/accounts", `{"holder_name":"Test Holder"}`, token)
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	var acc struct {
		ID string `json:"id"`
	}
	s.Decode(resp, &acc)
	return acc.ID
}

// Token signs a bearer token for subject with the suite's secret.
func (s *E2ETestSuite) Token(subject string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(s.JwtSecret))
	s.Require().NoError(err)
	return signed
}
