package render

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"AssetReport/internal/model"
	"AssetReport/pkg/json"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var cst = time.FixedZone("CST", 8*3600)

// Renderer 报告页面渲染，同一份报告输出固定
type Renderer struct {
	tpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// RenderPage 完整页面
func (r *Renderer) RenderPage(report *model.Report) (string, error) {
	portfolioJSON, err := json.Marshal(report.Config.Portfolio)
	if err != nil {
		return "", fmt.Errorf("encode portfolio: %w", err)
	}

	view := pageView{
		GeneratedAt:   report.GeneratedAt.In(cst).Format("2006-01-02 15:04:05"),
		PortfolioJSON: string(portfolioJSON),
		Liabilities:   strconv.FormatFloat(report.Config.Liabilities, 'f', -1, 64),
		Content:       buildFragmentView(report),
	}
	return r.execute("page", view)
}

// RenderFragment 编辑后替换 #main-content 的动态部分
func (r *Renderer) RenderFragment(report *model.Report) (string, error) {
	return r.execute("fragment", buildFragmentView(report))
}

// RenderError 存储不可用等情况下的错误页
func (r *Renderer) RenderError(message string) (string, error) {
	return r.execute("error", errorView{Message: message})
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	var builder strings.Builder
	if err := r.tpl.ExecuteTemplate(&builder, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return builder.String(), nil
}

type pageView struct {
	GeneratedAt   string
	PortfolioJSON string
	Liabilities   string
	Content       fragmentView
}

type fragmentView struct {
	TotalAssets string
	NetWorth    string
	FXRate      string
	PnL         trendView
	Rows        []rowView
	News        []newsGroupView
}

type trendView struct {
	Arrow   string
	Class   string
	Amount  string
	Percent string
}

type rowView struct {
	Code        string
	Name        string
	Shares      string
	Price       string
	Currency    string
	MarketValue string
	PnL         trendView
}

type newsGroupView struct {
	Name  string
	Items []model.NewsItem
}

type errorView struct {
	Message string
}

func buildFragmentView(report *model.Report) fragmentView {
	view := fragmentView{
		TotalAssets: money(report.Totals.MarketValue),
		NetWorth:    money(report.Totals.NetWorth),
		FXRate:      report.FXRate.StringFixed(4),
		PnL:         trend(report.Totals.PnL, report.Totals.PnLPercent),
		Rows:        make([]rowView, 0, len(report.Rows)),
	}

	for _, row := range report.Rows {
		view.Rows = append(view.Rows, rowView{
			Code:        row.Code,
			Name:        row.Name,
			Shares:      humanize.Comma(row.Shares),
			Price:       row.Price.StringFixed(2),
			Currency:    row.Currency,
			MarketValue: money(row.MarketValueCNY),
			PnL:         trend(row.PnLCNY, row.PnLPercent),
		})
	}

	for _, code := range report.Config.Portfolio.Codes() {
		items := report.News[code]
		if len(items) == 0 {
			continue
		}
		name := code
		if h, ok := report.Config.Portfolio.Get(code); ok && h.Name != "" {
			name = h.Name
		}
		view.News = append(view.News, newsGroupView{Name: name, Items: items})
	}
	return view
}

// trend 盈亏 >= 0 为上涨
func trend(pnl, pct decimal.Decimal) trendView {
	if pnl.IsNegative() {
		return trendView{Arrow: "▼", Class: "pnl-negative", Amount: money(pnl.Abs()), Percent: pct.Abs().StringFixed(2)}
	}
	return trendView{Arrow: "▲", Class: "pnl-positive", Amount: money(pnl.Abs()), Percent: pct.Abs().StringFixed(2)}
}

// money 千分位两位小数
func money(d decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}
