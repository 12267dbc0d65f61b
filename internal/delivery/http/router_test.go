package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinical-records-api/config"
	"clinical-records-api/internal/delivery/http/handler"
	"clinical-records-api/internal/delivery/http/middleware"
	"clinical-records-api/internal/domain/entity"
	"clinical-records-api/internal/repository"
	"clinical-records-api/internal/service"
	"clinical-records-api/internal/usecase"
	"clinical-records-api/pkg/jwt"
	"clinical-records-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, *jwt.JWTService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "records", AccessExpiry: time.Minute})
	v := validator.NewValidator()
	auditRepo := repository.NewMemoryAuditLogRepository()
	audit := service.NewAuditService(log, auditRepo)

	treatments := usecase.NewEntityUsecase[entity.Treatment](log, repository.NewMemoryRepository[entity.Treatment](), entity.TreatmentSchema, v, audit, 100)
	prescriptions := usecase.NewEntityUsecase[entity.Prescription](log, repository.NewMemoryRepository[entity.Prescription](), entity.PrescriptionSchema, v, audit, 100)

	router := NewRouter(
		[]EntityRoute{
			{Path: "treatment", Handler: handler.NewEntityHandler(treatments, v, log, 10)},
			{Path: "prescription", Handler: handler.NewEntityHandler(prescriptions, v, log, 10)},
		},
		handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(log, auditRepo)),
		middleware.NewAuthMiddleware(jwtService, nil, log),
		middleware.NewCORSMiddleware([]string{"*"}),
		middleware.NewLoggingMiddleware(log),
		middleware.NewMetricsMiddleware(),
		"/metrics",
	)
	return router.Setup(), jwtService
}

func token(t *testing.T, svc *jwt.JWTService, tenant uuid.UUID, grants ...string) string {
	t.Helper()
	tok, _, err := svc.GenerateAccessToken(tenant, uuid.New(), grants)
	require.NoError(t, err)
	return "Bearer " + tok
}

func serve(h http.Handler, method, target, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	rec := serve(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	serve(h, http.MethodGet, "/api/treatment", "", "")
	rec = serve(h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/treatment"`)
}

func TestRouter_Entitlements(t *testing.T) {
	h, svc := newTestServer(t)
	tenant := uuid.New()
	body := `{"patientName":"John Doe","name":"Dialysis","status":"planned","startDate":"2024-04-10T00:00:00Z"}`

	rec := serve(h, http.MethodPost, "/api/treatment", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodPost, "/api/treatment", token(t, svc, tenant, "treatment:read"), body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodPost, "/api/treatment", token(t, svc, tenant, "treatment:create"), body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/api/prescription", token(t, svc, tenant, "treatment:*"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodGet, "/api/prescription", token(t, svc, tenant, "*:read"), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/api/auditlogs", token(t, svc, tenant, "*:*"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "treatment.create")
}

func TestRouter_RejectsNonUUIDRouteID(t *testing.T) {
	h, svc := newTestServer(t)
	rec := serve(h, http.MethodGet, "/api/treatment/123", token(t, svc, uuid.New(), "*:*"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
