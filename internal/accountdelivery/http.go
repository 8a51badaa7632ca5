// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/errorspkg"
	"github.com/bankofkat/ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Open(ctx context.Context, owner string, typeID int32, initialDeposit string, sourceAccountID int32) (domain.Account, error)
	Get(ctx context.Context, id int32) (domain.Account, error)
	List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error)
	ListTransactions(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
	ListTypes(ctx context.Context) ([]domain.AccountType, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

// AccountView is the caller-facing projection of an account.
type AccountView struct {
	ID       int32  `json:"id"`
	Number   string `json:"number"`
	Type     string `json:"type"`
	Balance  string `json:"balance"`
	Maturity string `json:"maturity"`
}

// NewAccountView formats an account for callers: zero-padded account number
// and "n/a" for accounts without a maturity date.
func NewAccountView(a domain.Account) AccountView {
	maturity := "n/a"
	if a.Maturity != nil {
		maturity = a.Maturity.Format(domain.DateLayout)
	}

	return AccountView{
		ID:       a.ID,
		Number:   a.Number(),
		Type:     a.Type.Name,
		Balance:  a.Balance,
		Maturity: maturity,
	}
}

// TransactionView is the caller-facing projection of a ledger row.
type TransactionView struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Dest        string `json:"dest"`
	Amount      string `json:"amount"`
}

// NewTransactionView formats a ledger row for callers. External credits and
// debits render the missing side as "n/a".
func NewTransactionView(tx domain.Transaction) TransactionView {
	source, dest := "n/a", "n/a"
	if tx.SourceID != nil {
		source = domain.AccountNumber(*tx.SourceID)
	}

	if tx.DestID != nil {
		dest = domain.AccountNumber(*tx.DestID)
	}

	return TransactionView{
		Date:        tx.Date.Format(domain.DateLayout),
		Description: tx.Description,
		Source:      source,
		Dest:        dest,
		Amount:      tx.Amount,
	}
}

type openRequest struct {
	Owner           string `json:"owner" binding:"required"`
	TypeID          int32  `json:"type_id" binding:"required,min=1"`
	InitialDeposit  string `json:"initial_deposit" binding:"required,amount"`
	SourceAccountID int32  `json:"source_account_id" binding:"omitempty,min=1"`
}

type data struct {
	Account AccountView `json:"account"`
}

// Open handles http request to open a new account.
func (h *Handler) Open(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req openRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingError(err)})

		return
	}

	account, err := h.service.Open(ctx, req.Owner, req.TypeID, req.InitialDeposit, req.SourceAccountID)
	if err != nil {
		gctx.JSON(errStatus(err), web.Error(publicError(err)))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{NewAccountView(account)}})
}

type getRequest struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account details.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingError(err)})

		return
	}

	account, err := h.service.Get(ctx, req.ID)
	if err != nil {
		gctx.JSON(errStatus(err), web.Error(publicError(err)))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{NewAccountView(account)}})
}

type listRequest struct {
	Owner    string `form:"owner" binding:"required"`
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []AccountView `json:"accounts"`
}

// List handles http request to list the owner's accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingError(err)})

		return
	}

	accounts, err := h.service.List(ctx, req.Owner, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(errStatus(err), web.Error(publicError(err)))
		return
	}

	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, NewAccountView(a))
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataAccounts{views}})
}

type listTransactionsRequest struct {
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

type dataTransactions struct {
	Transactions []TransactionView `json:"transactions"`
}

// ListTransactions handles http request to list an account's ledger.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uriReq getRequest
	if err := gctx.ShouldBindUri(&uriReq); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingError(err)})

		return
	}

	var req listTransactionsRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingError(err)})

		return
	}

	arg := domain.ListTransactionsParams{
		AccountID: uriReq.ID,
		Limit:     req.PageSize,
		Offset:    (req.PageID - 1) * req.PageSize,
	}

	if req.From != "" {
		from, _ := time.Parse(domain.DateLayout, req.From)
		arg.From = &from
	}

	if req.To != "" {
		to, _ := time.Parse(domain.DateLayout, req.To)
		arg.To = &to
	}

	transactions, err := h.service.ListTransactions(ctx, arg)
	if err != nil {
		gctx.JSON(errStatus(err), web.Error(publicError(err)))
		return
	}

	views := make([]TransactionView, 0, len(transactions))
	for _, tx := range transactions {
		views = append(views, NewTransactionView(tx))
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataTransactions{views}})
}

type dataTypes struct {
	AccountTypes []domain.AccountType `json:"account_types"`
}

// ListTypes handles http request to list the product catalog.
func (h *Handler) ListTypes(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	types, err := h.service.ListTypes(ctx)
	if err != nil {
		gctx.JSON(errStatus(err), web.Error(publicError(err)))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataTypes{types}})
}

func bindingError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return "invalid request"
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrAccountTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDepositTooSmall),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNonPositiveAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrBelowMinimumBalance),
		errors.Is(err, domain.ErrMaturityNotReached):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrContention):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func publicError(err error) error {
	if errStatus(err) == http.StatusInternalServerError {
		return errorspkg.ErrInternal
	}

	return err
}
