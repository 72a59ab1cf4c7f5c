package service

import (
	"context"
	"testing"
	"time"

	"AssetReport/internal/model"

	"github.com/shopspring/decimal"
)

type fakeSources struct {
	quotes map[string]model.Quote
	fx     decimal.Decimal
	calls  []string
}

func (f *fakeSources) FetchQuotes(ctx context.Context, codes []string) map[string]model.Quote {
	f.calls = append(f.calls, "quotes")
	return f.quotes
}

func (f *fakeSources) HKDToCNY(ctx context.Context) decimal.Decimal {
	f.calls = append(f.calls, "fx")
	return f.fx
}

func (f *fakeSources) FetchNews(ctx context.Context, codes []string) map[string][]model.NewsItem {
	f.calls = append(f.calls, "news")
	news := make(map[string][]model.NewsItem, len(codes))
	for _, code := range codes {
		news[code] = []model.NewsItem{}
	}
	return news
}

func TestReportService_BuildReport(t *testing.T) {
	fake := &fakeSources{
		quotes: map[string]model.Quote{
			"002594.SZ": {Price: dec("250"), PreClose: dec("240")},
			"09880.HK":  {Price: dec("100"), PreClose: dec("100")},
		},
		fx: dec("0.9"),
	}
	generated := time.Date(2024, 5, 6, 2, 0, 0, 0, time.UTC)
	svc := NewReportService(fake, fake, fake).WithClock(func() time.Time { return generated })

	cfg := model.DefaultAssetConfig()
	report := svc.BuildReport(context.Background(), cfg)

	want := []string{"quotes", "news", "fx"}
	for i, c := range want {
		if i >= len(fake.calls) || fake.calls[i] != c {
			t.Fatalf("Unexpected call order %v", fake.calls)
		}
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(report.Rows))
	}
	if report.Rows[0].Code != "002594.SZ" || report.Rows[1].Code != "09880.HK" {
		t.Errorf("Rows not in portfolio order: %s, %s", report.Rows[0].Code, report.Rows[1].Code)
	}
	// 250*10000 + 100*7800*0.9
	if !report.Totals.MarketValue.Equal(dec("3202000")) {
		t.Errorf("Unexpected total %s", report.Totals.MarketValue)
	}
	if !report.FXRate.Equal(dec("0.9")) || !report.GeneratedAt.Equal(generated) {
		t.Errorf("Unexpected report metadata %s %v", report.FXRate, report.GeneratedAt)
	}
	if len(report.News) != 5 {
		t.Errorf("Expected news for every holding, got %d", len(report.News))
	}
}
