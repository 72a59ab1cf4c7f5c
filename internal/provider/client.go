package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// Client 进程内共享的上游 HTTP 客户端
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient 创建共享客户端，超时由每次调用单独控制
func NewClient(userAgent string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		http:      &http.Client{Transport: transport},
		userAgent: userAgent,
	}
}

// Get 发起一次 GET 请求，非 2xx 视为失败
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration, header http.Header) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	return body, nil
}

// decodeGBK 将 GBK 编码转换为 UTF-8
func decodeGBK(body []byte) (string, error) {
	utf8Body, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(utf8Body), nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
