package engine

import "errors"

var (
	ErrDuplicateInstrument   = errors.New("instrument already has an open position")
	ErrUnknownInstrument     = errors.New("instrument has no open position")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidContractSize   = errors.New("invalid contract size")
	ErrContractSizeMismatch  = errors.New("contract size differs from the position's")
	ErrUnsupportedAssetClass = errors.New("unsupported asset class")
	ErrMissingStrike         = errors.New("option without strike")
	ErrUnknownSide           = errors.New("unknown trade side")
	ErrInvalidCurrency       = errors.New("invalid currency")
	ErrUnknownEvent          = errors.New("unknown event type")
)
