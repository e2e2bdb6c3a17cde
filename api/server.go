/*
Package api exposes the controller over HTTP: signed call orders are posted
to /v1/calls, state is read with GET requests.
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/cbor"
	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

const (
	maxBodySize = 1 << 20
	mimeCBOR    = "application/cbor"
)

// Market is the part of the controller served by the API.
type Market interface {
	Execute(ctx context.Context, order *types.CallOrder) (any, error)
	AssetInfo(ctx context.Context, code types.AssetCode) (*market.AssetMeta, error)
	Assets(ctx context.Context) ([]*market.AssetMeta, error)
	Listing(ctx context.Context, code types.AssetCode, seller types.Address) (*market.Listing, error)
	Listings(ctx context.Context, code types.AssetCode) ([]*market.Listing, error)
	SettlementCurrency(ctx context.Context) (*market.SettlementConfig, error)
	Balance(ctx context.Context, ledgerRef types.LedgerRef, holder types.Address) (int64, error)
	Allowance(ctx context.Context, ledgerRef types.LedgerRef, owner types.Address) (int64, error)
	LastNonce(ctx context.Context, signer types.Address) (uint64, error)
}

type handler struct {
	ctl Market
	log *zap.Logger
}

type (
	errorResponse struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}

	callResponse struct {
		Result any `json:"result"`
	}

	amountResponse struct {
		Ledger  types.LedgerRef `json:"ledger"`
		Account types.Address   `json:"account"`
		Amount  int64           `json:"amount,string"`
		Display string          `json:"display"` // Amount with decimal point
	}

	// nonceResponse carries the last call order nonce used by the account,
	// the next order of the account must have a greater one.
	nonceResponse struct {
		Account types.Address `json:"account"`
		Nonce   uint64        `json:"nonce,string"`
	}
)

/*
NewHandler returns HTTP handler serving the market. When gatherer is not nil
its metrics are exposed on /metrics.
*/
func NewHandler(ctl Market, log *zap.Logger, gatherer prometheus.Gatherer) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{ctl: ctl, log: log}

	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())

	v1 := r.Group("/v1")
	v1.POST("/calls", h.postCall)
	v1.GET("/assets", h.getAssets)
	v1.GET("/assets/:code", h.getAsset)
	v1.GET("/assets/:code/listings", h.getListings)
	v1.GET("/assets/:code/listings/:seller", h.getListing)
	v1.GET("/settlement-currency", h.getSettlementCurrency)
	v1.GET("/ledgers/:ledger/balances/:account", h.getBalance)
	v1.GET("/ledgers/:ledger/allowances/:account", h.getAllowance)
	v1.GET("/nonces/:account", h.getNonce)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

/*
Serve runs HTTP server until ctx is cancelled, then shuts it down gracefully.
*/
func Serve(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

/*
postCall accepts CallOrder either as JSON (attributes and proofs hex encoded)
or, with Content-Type application/cbor, as CBOR.
*/
func (h *handler) postCall(c *gin.Context) {
	order := &types.CallOrder{}
	if c.ContentType() == mimeCBOR {
		if err := cbor.Decode(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize), order); err != nil {
			h.writeError(c, fmt.Errorf("%w: decoding call order: %w", market.ErrInvalidArgument, err))
			return
		}
	} else {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		if err := c.ShouldBindJSON(order); err != nil {
			h.writeError(c, fmt.Errorf("%w: decoding call order: %w", market.ErrInvalidArgument, err))
			return
		}
	}

	res, err := h.ctl.Execute(c.Request.Context(), order)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, callResponse{Result: res})
}

func (h *handler) getAssets(c *gin.Context) {
	assets, err := h.ctl.Assets(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if assets == nil {
		assets = []*market.AssetMeta{}
	}
	c.JSON(http.StatusOK, assets)
}

func (h *handler) getAsset(c *gin.Context) {
	meta, err := h.ctl.AssetInfo(c.Request.Context(), types.AssetCode(c.Param("code")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *handler) getListings(c *gin.Context) {
	listings, err := h.ctl.Listings(c.Request.Context(), types.AssetCode(c.Param("code")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if listings == nil {
		listings = []*market.Listing{}
	}
	c.JSON(http.StatusOK, listings)
}

func (h *handler) getListing(c *gin.Context) {
	seller, err := parseAddress(c.Param("seller"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	l, err := h.ctl.Listing(c.Request.Context(), types.AssetCode(c.Param("code")), seller)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *handler) getSettlementCurrency(c *gin.Context) {
	cfg, err := h.ctl.SettlementCurrency(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *handler) getBalance(c *gin.Context) {
	h.getAmount(c, h.ctl.Balance)
}

func (h *handler) getAllowance(c *gin.Context) {
	h.getAmount(c, h.ctl.Allowance)
}

func (h *handler) getNonce(c *gin.Context) {
	account, err := parseAddress(c.Param("account"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	nonce, err := h.ctl.LastNonce(c.Request.Context(), account)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonceResponse{Account: account, Nonce: nonce})
}

func (h *handler) getAmount(c *gin.Context, get func(context.Context, types.LedgerRef, types.Address) (int64, error)) {
	account, err := parseAddress(c.Param("account"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ref := types.LedgerRef(c.Param("ledger"))
	amount, err := get(c.Request.Context(), ref, account)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, amountResponse{
		Ledger:  ref,
		Account: account,
		Amount:  amount,
		Display: types.FormatAmount(amount),
	})
}

func (h *handler) writeError(c *gin.Context, err error) {
	status := statusCode(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Kind: market.ErrorKind(err)})
}

func parseAddress(s string) (types.Address, error) {
	addr, err := types.ParseAddress(s)
	if err != nil {
		return addr, fmt.Errorf("%w: %w", market.ErrInvalidArgument, err)
	}
	return addr, nil
}

// statusCode maps error kinds to HTTP status codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, market.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, market.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrInvalidArgument),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrInsufficientLiquidity),
		errors.Is(err, market.ErrPriceExceedsCap):
		return http.StatusConflict
	case errors.Is(err, market.ErrArithmeticOverflow),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrSupplyOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, market.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Info("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
