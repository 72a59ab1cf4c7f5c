package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Market 市场
type Market int

const (
	MarketUnknown Market = iota
	MarketA              // 沪深A股，.SH/.SZ
	MarketHK             // 港股，.HK
)

// MarketOf 根据代码后缀判断市场
func MarketOf(code string) Market {
	switch {
	case strings.HasSuffix(code, ".SH"), strings.HasSuffix(code, ".SZ"):
		return MarketA
	case strings.HasSuffix(code, ".HK"):
		return MarketHK
	default:
		return MarketUnknown
	}
}

// Currency 市场计价货币
func (m Market) Currency() string {
	if m == MarketHK {
		return "HKD"
	}
	return "CNY"
}

func (m Market) String() string {
	switch m {
	case MarketA:
		return "A"
	case MarketHK:
		return "HK"
	default:
		return "unknown"
	}
}

// Quote 单只股票行情，价格为原币种
type Quote struct {
	Price    decimal.Decimal
	PreClose decimal.Decimal
	At       time.Time // 行情时间
	Stale    bool      // 早于当日开盘，价格已被置为昨收
}

// NewsItem 相关新闻
type NewsItem struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	SourceTime string `json:"source_time"`
}
