package market

import "errors"

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrPriceExceedsCap       = errors.New("price exceeds cap")
	ErrNotConfigured         = errors.New("settlement currency not configured")
)

/*
ErrorKind returns short name of the error kind, used as metric label and by
the HTTP layer. Errors which are not one of the kinds above are "other".
*/
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, ErrArithmeticOverflow):
		return "arithmetic_overflow"
	case errors.Is(err, ErrPriceExceedsCap):
		return "price_exceeds_cap"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "other"
	}
}
