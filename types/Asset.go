package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type AssetClass string

const (
	AssetClassStock       AssetClass = "STOCK"
	AssetClassCertificate AssetClass = "CERTIFICATE"
	AssetClassFund        AssetClass = "FUND"
	AssetClassEtf         AssetClass = "ETF"
	AssetClassFuture      AssetClass = "FUTURE"
	AssetClassOption      AssetClass = "OPTION"
	AssetClassCash        AssetClass = "CASH"
)

// EquityLike reports whether the class shares the plain quantity × price
// accounting of stocks.
func (a AssetClass) EquityLike() bool {
	switch a {
	case AssetClassStock, AssetClassCertificate, AssetClassFund, AssetClassEtf:
		return true
	}
	return false
}

// ParseAssetClass maps the spellings used by trade feeds onto an AssetClass.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STOCK":
		return AssetClassStock, nil
	case "CERTIFICATE":
		return AssetClassCertificate, nil
	case "FUND":
		return AssetClassFund, nil
	case "ETF":
		return AssetClassEtf, nil
	case "FUTURE", "FUTURES":
		return AssetClassFuture, nil
	case "OPTION", "INDEX PUT OPTION", "INDEX CALL OPTION":
		return AssetClassOption, nil
	case "CASH":
		return AssetClassCash, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", s)
	}
}

// Instrument is the static description of a tradable instrument.
type Instrument struct {
	Key          string              `json:"key"`
	Name         string              `json:"name"`
	AssetClass   AssetClass          `json:"assetClass"`
	Currency     string              `json:"currency"`
	ContractSize decimal.Decimal     `json:"contractSize"`
	Strike       decimal.NullDecimal `json:"strike"`
}
