package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationRow 单只股票的估值结果，金额单位 CNY
type ValuationRow struct {
	Code             string
	Name             string
	Shares           int64
	Currency         string
	Price            decimal.Decimal
	PreClose         decimal.Decimal
	MarketValueCNY   decimal.Decimal
	PreCloseValueCNY decimal.Decimal
	PnLCNY           decimal.Decimal
	PnLPercent       decimal.Decimal
}

// Totals 汇总
type Totals struct {
	MarketValue   decimal.Decimal
	PreCloseValue decimal.Decimal
	PnL           decimal.Decimal
	PnLPercent    decimal.Decimal
	Liabilities   decimal.Decimal
	NetWorth      decimal.Decimal
}

// Report 一次请求生成的完整报告
type Report struct {
	Config      *AssetConfig
	Rows        []ValuationRow
	Totals      Totals
	News        map[string][]NewsItem
	FXRate      decimal.Decimal
	GeneratedAt time.Time
}

// UpdateResponse 编辑成功后的响应
type UpdateResponse struct {
	Status    string    `json:"status"`
	HTML      string    `json:"html"`
	Portfolio Portfolio `json:"portfolio"`
}
