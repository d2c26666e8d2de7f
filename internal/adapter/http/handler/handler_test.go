package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger-service/internal/core/domain"
	"wallet-ledger-service/internal/core/ports"
	"wallet-ledger-service/internal/core/ports/mocks"
	"wallet-ledger-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testWallet(id uuid.UUID, balance string, version int64) *domain.Wallet {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Wallet{
		ID:        id,
		Balance:   decimal.RequireFromString(balance),
		Version:   version,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func withWalletParam(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- CreateWallet Tests ---

func TestCreateWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	initial := decimal.RequireFromString("100.50")
	mockSvc.EXPECT().CreateWallet(gomock.Any(), initial).Return(testWallet(walletID, "100.50", 1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"balance":"100.50"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateWallet(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, walletID.String(), data["id"])
	assert.Equal(t, "100.5", data["balance"])
	assert.Equal(t, float64(1), data["version"])
}

func TestCreateWallet_EmptyBodyDefaultsToZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().CreateWallet(gomock.Any(), decimal.Zero).Return(testWallet(walletID, "0", 1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.CreateWallet(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "0", data["balance"])
}

func TestCreateWallet_NegativeBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"balance":"-5"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateWallet(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_002", resp["error_code"])
}

func TestCreateWallet_StorageDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	mockSvc.EXPECT().CreateWallet(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrStorageUnavailable(errors.New("pool closed")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"balance":"1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateWallet(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "SYS_002", resp["error_code"])
}

// --- GetWallet Tests ---

func TestGetWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().GetWallet(gomock.Any(), walletID).Return(testWallet(walletID, "42.01", 3), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	withWalletParam(c, walletID.String())

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, walletID.String(), data["id"])
	assert.Equal(t, "42.01", data["balance"])
	assert.Equal(t, float64(3), data["version"])
}

func TestGetWallet_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	withWalletParam(c, "not-a-uuid")

	h.GetWallet(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "REQ_001", resp["error_code"])
}

func TestGetWallet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().GetWallet(gomock.Any(), walletID).Return(nil, apperror.ErrWalletNotFound())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	withWalletParam(c, walletID.String())

	h.GetWallet(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_001", resp["error_code"])
}

// --- ApplyOperation Tests ---

func TestApplyOperation_Deposit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	opID := uuid.New()
	amount := decimal.RequireFromString("50")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mockSvc.EXPECT().ApplyOperation(gomock.Any(), ports.ApplyOperationRequest{
		WalletID: walletID,
		Kind:     domain.OperationKindDeposit,
		Amount:   amount,
	}).Return(testWallet(walletID, "150.50", 2), &domain.Operation{
		ID:               opID,
		WalletID:         walletID,
		Kind:             domain.OperationKindDeposit,
		Amount:           amount,
		ResultingBalance: decimal.RequireFromString("150.50"),
		CreatedAt:        now,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"deposit","amount":"50"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withWalletParam(c, walletID.String())

	h.ApplyOperation(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	wallet := data["wallet"].(map[string]interface{})
	op := data["operation"].(map[string]interface{})
	assert.Equal(t, "150.5", wallet["balance"])
	assert.Equal(t, float64(2), wallet["version"])
	assert.Equal(t, opID.String(), op["id"])
	assert.Equal(t, "deposit", op["kind"])
	assert.Equal(t, "50", op["amount"])
	assert.Equal(t, "150.5", op["resulting_balance"])
}

func TestApplyOperation_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"transfer","amount":"5"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withWalletParam(c, uuid.New().String())

	h.ApplyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_005", resp["error_code"])
}

func TestApplyOperation_NonPositiveAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"withdraw","amount":"0"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withWalletParam(c, uuid.New().String())

	h.ApplyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_003", resp["error_code"])
}

func TestApplyOperation_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().ApplyOperation(gomock.Any(), gomock.Any()).
		Return(nil, nil, apperror.ErrInsufficientFunds())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"withdraw","amount":"999"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withWalletParam(c, walletID.String())

	h.ApplyOperation(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_004", resp["error_code"])
}

func TestApplyOperation_ConflictRetriesExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().ApplyOperation(gomock.Any(), gomock.Any()).
		Return(nil, nil, apperror.ErrTransientConflict())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"kind":"deposit","amount":"1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	withWalletParam(c, walletID.String())

	h.ApplyOperation(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "WAL_007", resp["error_code"])
}

// --- ListOperations Tests ---

func TestListOperations_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mockSvc.EXPECT().ListOperations(gomock.Any(), walletID, ports.OperationListParams{Limit: 2, Offset: 0}).
		Return([]domain.Operation{
			{
				ID:               uuid.New(),
				WalletID:         walletID,
				Kind:             domain.OperationKindWithdraw,
				Amount:           decimal.RequireFromString("25"),
				ResultingBalance: decimal.RequireFromString("75"),
				CreatedAt:        now,
			},
			{
				ID:               uuid.New(),
				WalletID:         walletID,
				Kind:             domain.OperationKindDeposit,
				Amount:           decimal.RequireFromString("100"),
				ResultingBalance: decimal.RequireFromString("100"),
				CreatedAt:        now.Add(-time.Minute),
			},
		}, int64(5), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=2&offset=0", nil)
	withWalletParam(c, walletID.String())

	h.ListOperations(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.Equal(t, float64(5), data["total"])
	assert.Equal(t, float64(2), data["limit"])
	first := items[0].(map[string]interface{})
	assert.Equal(t, "withdraw", first["kind"])
	assert.Equal(t, "75", first["resulting_balance"])
}

func TestListOperations_ClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().ListOperations(gomock.Any(), walletID, ports.OperationListParams{Limit: 100, Offset: 0}).
		Return([]domain.Operation{}, int64(0), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=99999&offset=-4", nil)
	withWalletParam(c, walletID.String())

	h.ListOperations(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["limit"])
	assert.Equal(t, float64(0), data["offset"])
}

func TestListOperations_WalletNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockSvc)

	walletID := uuid.New()
	mockSvc.EXPECT().ListOperations(gomock.Any(), walletID, gomock.Any()).
		Return(nil, int64(0), apperror.ErrWalletNotFound())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	withWalletParam(c, walletID.String())

	h.ListOperations(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Health Check Tests ---

func TestHealthCheck_AllHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pg := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Ping(gomock.Any()).Return(nil)
	pg.EXPECT().Name().Return("postgresql")

	rd := mocks.NewMockHealthChecker(ctrl)
	rd.EXPECT().Ping(gomock.Any()).Return(nil)
	rd.EXPECT().Name().Return("redis")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck("1.0.0", time.Now().Add(-time.Minute), pg, rd)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "1.0.0", resp["version"])
	assert.GreaterOrEqual(t, resp["uptime_seconds"].(float64), float64(59))
	deps := resp["dependencies"].(map[string]interface{})
	pgDep := deps["postgresql"].(map[string]interface{})
	assert.Equal(t, "healthy", pgDep["status"])
}

func TestHealthCheck_DependencyDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pg := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Ping(gomock.Any()).Return(nil)
	pg.EXPECT().Name().Return("postgresql")

	rd := mocks.NewMockHealthChecker(ctrl)
	rd.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	rd.EXPECT().Name().Return("redis")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck("1.0.0", time.Now(), pg, rd)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	rdDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", rdDep["status"])
	assert.Equal(t, "connection refused", rdDep["error"])
}

// --- Swagger Tests ---

func TestSwaggerUI(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger", nil)

	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "swagger-ui")
	assert.Contains(t, w.Body.String(), "/swagger/spec")
}

func TestSwaggerSpec_Loaded(t *testing.T) {
	SetSwaggerSpec([]byte("openapi: '3.0.0'\ninfo:\n  title: Test"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi")
}

func TestSwaggerSpec_NotLoaded(t *testing.T) {
	SetSwaggerSpec(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)

	SwaggerSpec(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
