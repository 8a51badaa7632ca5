// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/errorspkg"
	"github.com/bankofkat/ledger/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromID, toID int32, amount string) (domain.TransferTxResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type createRequest struct {
	FromAccountID int32  `json:"from_account_id" binding:"required,min=1"`
	ToAccountID   int32  `json:"to_account_id" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required,amount"`
}

type data struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}

// Create handles http request to transfer funds between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	result, err := h.service.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case errors.Is(err, domain.ErrInvalidAmount),
			errors.Is(err, domain.ErrNonPositiveAmount),
			errors.Is(err, domain.ErrSameAccount),
			errors.Is(err, domain.ErrInsufficientFunds),
			errors.Is(err, domain.ErrBelowMinimumBalance),
			errors.Is(err, domain.ErrMaturityNotReached):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		case errors.Is(err, domain.ErrContention):
			gctx.JSON(http.StatusConflict, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{result}})
}
