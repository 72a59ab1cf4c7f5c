package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"AssetReport/internal/model"
	"AssetReport/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CST 新浪行情时间所在时区
var CST = time.FixedZone("CST", 8*3600)

// fieldLayout 各市场 hq_str 载荷中的字段位置
type fieldLayout struct {
	price      int
	preClose   int
	date       int
	time       int
	dateLayout string
}

var layouts = map[model.Market]fieldLayout{
	model.MarketA:  {price: 3, preClose: 2, date: 30, time: 31, dateLayout: "2006-01-02"},
	model.MarketHK: {price: 6, preClose: 3, date: 17, time: 18, dateLayout: "2006/01/02"},
}

// QuoteError 单只行情解析失败的原因
type QuoteError struct {
	Symbol string
	Reason string
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote %s: %s", e.Symbol, e.Reason)
}

// Symbol 转换为新浪行情代码：002594.SZ -> sz002594，09880.HK -> hk09880
func Symbol(code string) string {
	if model.MarketOf(code) == model.MarketHK {
		return "hk" + strings.TrimSuffix(code, ".HK")
	}
	return NewsSymbol(code)
}

// NewsSymbol 小写后缀加数字部分，所有市场一致
func NewsSymbol(code string) string {
	if len(code) < 3 {
		return strings.ToLower(code)
	}
	return strings.ToLower(code[len(code)-2:]) + code[:len(code)-3]
}

// ParseQuote 从批量响应中解析一只股票的行情
func ParseQuote(body, symbol string, market model.Market, now time.Time) (model.Quote, error) {
	layout, ok := layouts[market]
	if !ok {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: "unsupported market"}
	}

	payload, ok := findRecord(body, symbol)
	if !ok {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: "record not found"}
	}

	parts := strings.Split(payload, ",")
	maxIdx := max(layout.price, layout.preClose, layout.date, layout.time)
	if len(parts) <= maxIdx {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: fmt.Sprintf("expected more than %d fields, got %d", maxIdx, len(parts))}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parts[layout.price]))
	if err != nil {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: "invalid price: " + parts[layout.price]}
	}
	preClose, err := decimal.NewFromString(strings.TrimSpace(parts[layout.preClose]))
	if err != nil {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: "invalid pre_close: " + parts[layout.preClose]}
	}

	at, err := parseMarketTime(parts[layout.date], parts[layout.time], layout.dateLayout, market)
	if err != nil {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: err.Error()}
	}

	quote := model.Quote{Price: price, PreClose: preClose, At: at}

	// 行情时间早于当日 09:30 视为今日未开盘，盈亏计为 0
	nowCST := now.In(CST)
	open := time.Date(nowCST.Year(), nowCST.Month(), nowCST.Day(), 9, 30, 0, 0, CST)
	if at.Before(open) {
		quote.Price = preClose
		quote.Stale = true
	}

	if quote.Price.IsZero() || quote.PreClose.IsZero() {
		return model.Quote{}, &QuoteError{Symbol: symbol, Reason: "zero price or pre_close"}
	}
	return quote, nil
}

// findRecord 取出 var hq_str_<symbol>="..." 引号内的内容
func findRecord(body, symbol string) (string, bool) {
	prefix := `var hq_str_` + symbol + `="`
	start := strings.Index(body, prefix)
	if start < 0 {
		return "", false
	}
	rest := body[start+len(prefix):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// parseMarketTime 港股时间可能不带秒
func parseMarketTime(dateStr, timeStr, dateLayout string, market model.Market) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)

	timeLayout := "15:04:05"
	if market == model.MarketHK && strings.Count(timeStr, ":") == 1 {
		timeLayout = "15:04"
	}

	at, err := time.ParseInLocation(dateLayout+" "+timeLayout, dateStr+" "+timeStr, CST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid market time %q", dateStr+" "+timeStr)
	}
	return at, nil
}

// QuoteFetcher 新浪批量行情
type QuoteFetcher struct {
	client  *Client
	baseURL string
	referer string
	timeout time.Duration
	now     func() time.Time
}

// NewQuoteFetcher 创建行情抓取器
func NewQuoteFetcher(client *Client, cfg config.ProviderConfig) *QuoteFetcher {
	return &QuoteFetcher{
		client:  client,
		baseURL: strings.TrimRight(cfg.QuoteURL, "/"),
		referer: cfg.Referer,
		timeout: seconds(cfg.QuoteTimeout),
		now:     time.Now,
	}
}

// WithClock 替换时钟，用于测试开盘判断
func (f *QuoteFetcher) WithClock(now func() time.Time) *QuoteFetcher {
	f.now = now
	return f
}

// FetchQuotes 按市场分批拉取行情，失败或无效的股票不出现在结果中
func (f *QuoteFetcher) FetchQuotes(ctx context.Context, codes []string) map[string]model.Quote {
	var aCodes, hkCodes []string
	for _, code := range codes {
		switch model.MarketOf(code) {
		case model.MarketA:
			aCodes = append(aCodes, code)
		case model.MarketHK:
			hkCodes = append(hkCodes, code)
		}
	}

	result := make(map[string]model.Quote, len(codes))
	for code, q := range f.fetchBatch(ctx, aCodes, model.MarketA) {
		result[code] = q
	}
	for code, q := range f.fetchBatch(ctx, hkCodes, model.MarketHK) {
		result[code] = q
	}
	return result
}

func (f *QuoteFetcher) fetchBatch(ctx context.Context, codes []string, market model.Market) map[string]model.Quote {
	data := make(map[string]model.Quote)
	if len(codes) == 0 {
		return data
	}

	symbols := make([]string, len(codes))
	for i, code := range codes {
		symbols[i] = Symbol(code)
	}
	url := fmt.Sprintf("%s/list=%s", f.baseURL, strings.Join(symbols, ","))

	header := http.Header{}
	header.Set("Referer", f.referer)
	raw, err := f.client.Get(ctx, url, f.timeout, header)
	if err != nil {
		logrus.Warnf("Fetch %s quotes failed: %v", market, err)
		return data
	}
	body, err := decodeGBK(raw)
	if err != nil {
		logrus.Warnf("Decode %s quotes failed: %v", market, err)
		return data
	}

	now := f.now()
	for i, code := range codes {
		quote, err := ParseQuote(body, symbols[i], market, now)
		if err != nil {
			logrus.Debugf("Skip %s: %v", code, err)
			continue
		}
		if quote.Stale {
			logrus.Debugf("%s: market time %s before 09:30, pnl zeroed", code, quote.At.Format("2006-01-02 15:04:05"))
		}
		data[code] = quote
	}
	return data
}
