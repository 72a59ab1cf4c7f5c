package service

import (
	"context"
	"time"

	"AssetReport/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// QuoteSource 行情来源
type QuoteSource interface {
	FetchQuotes(ctx context.Context, codes []string) map[string]model.Quote
}

// RateSource 汇率来源，失败时由实现自行回退
type RateSource interface {
	HKDToCNY(ctx context.Context) decimal.Decimal
}

// NewsSource 新闻来源
type NewsSource interface {
	FetchNews(ctx context.Context, codes []string) map[string][]model.NewsItem
}

// ReportService 串联行情、新闻、汇率与估值
type ReportService struct {
	quotes QuoteSource
	rates  RateSource
	news   NewsSource
	now    func() time.Time
}

func NewReportService(quotes QuoteSource, rates RateSource, news NewsSource) *ReportService {
	return &ReportService{
		quotes: quotes,
		rates:  rates,
		news:   news,
		now:    time.Now,
	}
}

// WithClock 替换生成时间
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// BuildReport 依次拉取行情、新闻、汇率后计算估值，上游失败不会返回错误
func (s *ReportService) BuildReport(ctx context.Context, cfg *model.AssetConfig) *model.Report {
	start := time.Now()
	codes := cfg.Portfolio.Codes()

	quotes := s.quotes.FetchQuotes(ctx, codes)
	news := s.news.FetchNews(ctx, codes)
	fx := s.rates.HKDToCNY(ctx)

	rows, totals := Valuate(cfg, quotes, fx)

	logrus.Debugf("Report built: %d/%d quoted, fx=%s, took %v", len(rows), len(codes), fx, time.Since(start))

	return &model.Report{
		Config:      cfg,
		Rows:        rows,
		Totals:      totals,
		News:        news,
		FXRate:      fx,
		GeneratedAt: s.now(),
	}
}
