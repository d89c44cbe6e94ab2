package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/SscSPs/reconciliation_engine/internal/core/services"
	"github.com/SscSPs/reconciliation_engine/internal/handlers"
	"github.com/SscSPs/reconciliation_engine/internal/middleware"
	"github.com/SscSPs/reconciliation_engine/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const splitTestSecret = "split-test-secret-key-long-enough"

// SplitHandlerTestSuite drives the split routes through the real assignment service
// backed by the memory store, so validation and persistence are exercised together.
type SplitHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *memory.Store
}

func (suite *SplitHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.store = memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{"m-1", "m-2"} {
		suite.Require().NoError(suite.store.SaveMember(ctx, domain.Member{MemberID: id, Name: "Member " + id, IsActive: true}))
	}
	suite.Require().NoError(suite.store.InsertTransactions(ctx, []domain.Transaction{{
		TransactionID:   "tx-1",
		StatementRef:    "STMT-2024-03",
		TransactionDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Particulars:     "MPESA deposit",
		Credit:          decimal.NewFromInt(100),
		Assignment:      domain.Unassigned(),
	}}))

	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(splitTestSecret))
	container := &portssvc.ServiceContainer{
		Assignment: services.NewAssignmentService(suite.store, suite.store),
	}
	handlers.RegisterTransactionRoutes(suite.router.Group("/api/v1"), container, nil)
}

// do sends an authenticated JSON request and decodes the response body.
func (suite *SplitHandlerTestSuite) do(method, url string, body any) (*httptest.ResponseRecorder, map[string]any) {
	raw, err := json.Marshal(body)
	suite.Require().NoError(err)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   testOperator,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(splitTestSecret))
	suite.Require().NoError(err)

	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func (suite *SplitHandlerTestSuite) assertUntouched() {
	tx, err := suite.store.FindTransactionDetail(context.Background(), "tx-1")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnassigned, tx.Status())
	suite.False(tx.IsSplit)
	suite.Empty(tx.Allocations)
}

func (suite *SplitHandlerTestSuite) TestSplit_RejectsSharesFinerThanACent() {
	w, body := suite.do(http.MethodPost, "/api/v1/transactions/tx-1/split", map[string]any{
		"recipients": []map[string]any{
			{"memberID": "m-1", "amount": "40.005"},
			{"memberID": "m-2", "amount": "59.995"},
		},
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("InvalidAmount", body["kind"])
	suite.assertUntouched()
}

func (suite *SplitHandlerTestSuite) TestTransfer_RejectsShareThatRoundsToZero() {
	w, body := suite.do(http.MethodPost, "/api/v1/transactions/tx-1/transfer", map[string]any{
		"recipients": []map[string]any{
			{"memberID": "m-1", "amount": "99.996"},
			{"memberID": "m-2", "amount": "0.004"},
		},
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("InvalidAmount", body["kind"])
	suite.assertUntouched()
}

func (suite *SplitHandlerTestSuite) TestSplit_CentSharesPersistExactly() {
	w, _ := suite.do(http.MethodPost, "/api/v1/transactions/tx-1/split", map[string]any{
		"recipients": []map[string]any{
			{"memberID": "m-1", "amount": "40.50"},
			{"memberID": "m-2", "amount": "59.50"},
		},
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	tx, err := suite.store.FindTransactionDetail(context.Background(), "tx-1")
	suite.Require().NoError(err)
	suite.True(tx.IsSplit)
	sum := decimal.Zero
	for _, a := range tx.Allocations {
		sum = sum.Add(a.Amount)
	}
	suite.True(sum.Equal(decimal.NewFromInt(100)), "allocations sum to %s", sum)
}

func TestSplitHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SplitHandlerTestSuite))
}
