package provider

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"AssetReport/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// FallbackHKDCNY 汇率获取失败时使用的固定值
var FallbackHKDCNY = decimal.RequireFromString("0.9")

// FXFetcher 港币兑人民币汇率
type FXFetcher struct {
	client  *Client
	url     string
	timeout time.Duration
}

func NewFXFetcher(client *Client, cfg config.ProviderConfig) *FXFetcher {
	return &FXFetcher{
		client:  client,
		url:     cfg.FXURL,
		timeout: seconds(cfg.FXTimeout),
	}
}

// HKDToCNY 获取汇率，任何失败都返回 FallbackHKDCNY
func (f *FXFetcher) HKDToCNY(ctx context.Context) decimal.Decimal {
	body, err := f.client.Get(ctx, f.url, f.timeout, nil)
	if err != nil {
		logrus.Warnf("Fetch HKD/CNY rate failed, using %s: %v", FallbackHKDCNY, err)
		return FallbackHKDCNY
	}
	rate, err := ParseRate(body)
	if err != nil {
		logrus.Warnf("Parse HKD/CNY rate failed, using %s: %v", FallbackHKDCNY, err)
		return FallbackHKDCNY
	}
	return rate
}

// ParseRate 从 Google Finance 页面中提取汇率
func ParseRate(page []byte) (decimal.Decimal, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return decimal.Zero, err
	}

	node := findFirst(doc, elementWithClasses("div", "YMlKec", "fxKbKc"))
	if node == nil {
		return decimal.Zero, fmt.Errorf("rate node not found")
	}

	text := strings.ReplaceAll(strings.TrimSpace(textOf(node)), ",", "")
	rate, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q", text)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive rate %s", rate)
	}
	return rate, nil
}
