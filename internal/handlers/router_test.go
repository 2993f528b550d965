package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/handlers"
	"github.com/SscSPs/trustbridge_backend/internal/platform/config"
	"github.com/SscSPs/trustbridge_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "handler-test-secret"

var (
	investor     = domain.Principal{UserID: "inv-1", Role: domain.RoleInvestor}
	entrepreneur = domain.Principal{UserID: "ent-1", Role: domain.RoleEntrepreneur}
	admin        = domain.Principal{UserID: "adm-1", Role: domain.RoleAdmin}
)

// routerSuite wires the real routes over mocked services.
type routerSuite struct {
	suite.Suite
	router    *gin.Engine
	deals     *MockDealService
	payments  *MockPaymentService
	users     *MockUserService
	tokens    *MockTokenService
	reporting *MockReportingService
}

func (s *routerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.deals = new(MockDealService)
	s.payments = new(MockPaymentService)
	s.users = new(MockUserService)
	s.tokens = new(MockTokenService)
	s.reporting = new(MockReportingService)

	cfg := &config.Config{
		JWTSecret:      testJWTSecret,
		IsProduction:   true,
		LoginRateLimit: "100-M",
	}
	container := &portssvc.ServiceContainer{
		Deal:      s.deals,
		Payment:   s.payments,
		User:      s.users,
		Token:     s.tokens,
		Reporting: s.reporting,
	}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container, handlers.RouteDeps{})
}

func (s *routerSuite) token(p domain.Principal) string {
	tok, _, err := utils.GenerateJWT(p.UserID, string(p.Role), testJWTSecret, time.Hour, "test")
	s.Require().NoError(err)
	return tok
}

// do sends body as JSON, authenticated as p unless p is nil.
func (s *routerSuite) do(method, path string, p *domain.Principal, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*p))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *routerSuite) decodeError(w *httptest.ResponseRecorder) handlers.ErrorResponse {
	var resp handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
