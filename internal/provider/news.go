package provider

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"AssetReport/internal/model"
	"AssetReport/pkg/config"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const maxNewsItems = 5

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// titlePolicy 去除标题中的全部标签
var titlePolicy = bluemonday.StrictPolicy()

// NewsFetcher 新浪个股资讯列表
type NewsFetcher struct {
	client  *Client
	baseURL string
	timeout time.Duration
}

func NewNewsFetcher(client *Client, cfg config.ProviderConfig) *NewsFetcher {
	return &NewsFetcher{
		client:  client,
		baseURL: strings.TrimRight(cfg.NewsURL, "/"),
		timeout: seconds(cfg.NewsTimeout),
	}
}

// FetchNews 逐只抓取，单只失败只影响该股票
func (f *NewsFetcher) FetchNews(ctx context.Context, codes []string) map[string][]model.NewsItem {
	all := make(map[string][]model.NewsItem, len(codes))
	for _, code := range codes {
		items, err := f.fetchOne(ctx, code)
		if err != nil {
			logrus.Warnf("Fetch news for %s failed: %v", code, err)
			items = []model.NewsItem{}
		}
		all[code] = items
	}
	return all
}

func (f *NewsFetcher) fetchOne(ctx context.Context, code string) ([]model.NewsItem, error) {
	pageURL := fmt.Sprintf("%s/%s.phtml", f.baseURL, NewsSymbol(code))

	raw, err := f.client.Get(ctx, pageURL, f.timeout, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodeGBK(raw)
	if err != nil {
		return nil, fmt.Errorf("decode gbk: %w", err)
	}

	base, _ := url.Parse(pageURL)
	return ParseNews(page, base)
}

// ParseNews 从 div.datelist 中提取前 5 条新闻，base 用于补全相对链接
func ParseNews(page string, base *url.URL) ([]model.NewsItem, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	container := findFirst(doc, elementWithClasses("div", "datelist"))
	if container == nil {
		return []model.NewsItem{}, nil
	}

	anchors := findAll(container, isElement("a"), maxNewsItems)
	items := make([]model.NewsItem, 0, len(anchors))
	for _, a := range anchors {
		items = append(items, model.NewsItem{
			Title:      anchorTitle(a),
			URL:        resolveHref(base, attr(a, "href")),
			SourceTime: anchorDate(a),
		})
	}
	return items, nil
}

// anchorTitle 对链接内部 HTML 去标签后还原为纯文本，转义过的字符保持原样
func anchorTitle(a *html.Node) string {
	var inner bytes.Buffer
	for c := a.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&inner, c); err != nil {
			return strings.TrimSpace(textOf(a))
		}
	}
	return strings.TrimSpace(stdhtml.UnescapeString(titlePolicy.Sanitize(inner.String())))
}

// anchorDate 优先取链接前紧邻的文本中的日期，其次取父节点文本
func anchorDate(a *html.Node) string {
	var preceding strings.Builder
	for s := a.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && (s.Data == "a" || s.Data == "br") {
			break
		}
		preceding.WriteString(textOf(s))
	}
	if d := datePattern.FindString(preceding.String()); d != "" {
		return d
	}
	if a.Parent != nil {
		return datePattern.FindString(textOf(a.Parent))
	}
	return ""
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
