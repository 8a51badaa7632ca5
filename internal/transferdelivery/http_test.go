package transferdelivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/moneypkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("amount", moneypkg.ValidAmount)
	}

	os.Exit(m.Run())
}

func TestCreate(t *testing.T) {
	fromID, toID := int32(1), int32(2)

	result := domain.TransferTxResult{
		Transaction: domain.Transaction{
			ID:          1,
			Description: "Electronic Funds Transfer",
			SourceID:    &fromID,
			DestID:      &toID,
			Amount:      "100.00",
		},
		FromAccount: domain.Account{ID: fromID, Balance: "900.00"},
		ToAccount:   domain.Account{ID: toID, Balance: "1100.00"},
	}

	testCases := []struct {
		name          string
		body          gin.H
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			body: gin.H{
				"from_account_id": fromID,
				"to_account_id":   toID,
				"amount":          "100.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), fromID, toID, "100.00").
					Times(1).
					Return(result, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Contains(t, recorder.Body.String(), `"balance":"900.00"`)
			},
		},
		{
			name: "MissingAmount",
			body: gin.H{
				"from_account_id": fromID,
				"to_account_id":   toID,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "MalformedAmount",
			body: gin.H{
				"from_account_id": fromID,
				"to_account_id":   toID,
				"amount":          "one hundred",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InsufficientFunds",
			body: gin.H{
				"from_account_id": fromID,
				"to_account_id":   toID,
				"amount":          "100.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), fromID, toID, "100.00").
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrInsufficientFunds)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
				require.Contains(t, recorder.Body.String(), domain.ErrInsufficientFunds.Error())
			},
		},
		{
			name: "AccountNotFound",
			body: gin.H{
				"from_account_id": 404404,
				"to_account_id":   toID,
				"amount":          "100.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), int32(404404), toID, "100.00").
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "Contention",
			body: gin.H{
				"from_account_id": fromID,
				"to_account_id":   toID,
				"amount":          "100.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), fromID, toID, "100.00").
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrContention)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name: "InternalError",
			body: gin.H{
				"from_account_id": fromID,
				"to_account_id":   toID,
				"amount":          "100.00",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Transfer(gomock.Any(), fromID, toID, "100.00").
					Times(1).
					Return(domain.TransferTxResult{}, errors.New("sql: database is closed"))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
				require.NotContains(t, recorder.Body.String(), "sql:")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			handler := NewHandler(service)
			router := gin.New()
			router.POST("/transfers", handler.Create)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			tc.checkResponse(t, recorder)
		})
	}
}
