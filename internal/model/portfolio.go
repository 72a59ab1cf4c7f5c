package model

import (
	"fmt"

	"AssetReport/pkg/json"

	jsoniter "github.com/json-iterator/go"
)

// Holding 单只股票持仓
type Holding struct {
	Shares int64  `json:"shares"` // 持股数量
	Name   string `json:"name"`   // 显示名称
}

// Portfolio 有序持仓表，保留 JSON 文档中的键顺序用于展示
type Portfolio struct {
	codes    []string
	holdings map[string]Holding
}

// NewPortfolio 创建持仓表
func NewPortfolio() Portfolio {
	return Portfolio{holdings: make(map[string]Holding)}
}

// Set 添加或替换持仓，替换时保留原位置
func (p *Portfolio) Set(code string, h Holding) {
	if p.holdings == nil {
		p.holdings = make(map[string]Holding)
	}
	if _, ok := p.holdings[code]; !ok {
		p.codes = append(p.codes, code)
	}
	p.holdings[code] = h
}

// Get 获取持仓
func (p Portfolio) Get(code string) (Holding, bool) {
	h, ok := p.holdings[code]
	return h, ok
}

// Codes 按文档顺序返回全部代码
func (p Portfolio) Codes() []string {
	out := make([]string, len(p.codes))
	copy(out, p.codes)
	return out
}

// Len 持仓数量
func (p Portfolio) Len() int {
	return len(p.codes)
}

// Validate 校验编辑提交的持仓
func (p Portfolio) Validate() error {
	for _, code := range p.codes {
		if MarketOf(code) == MarketUnknown {
			return ErrInvalidParameter(fmt.Sprintf("unsupported instrument code: %s", code))
		}
		if p.holdings[code].Shares < 0 {
			return ErrInvalidParameter(fmt.Sprintf("shares of %s must not be negative", code))
		}
	}
	return nil
}

// MarshalJSON 按原顺序输出 JSON 对象
func (p Portfolio) MarshalJSON() ([]byte, error) {
	api := json.API()
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, code := range p.codes {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(code)
		stream.WriteVal(p.holdings[code])
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// UnmarshalJSON 按对象键出现顺序读取持仓
func (p *Portfolio) UnmarshalJSON(data []byte) error {
	api := json.API()
	iter := api.BorrowIterator(data)
	defer api.ReturnIterator(iter)

	parsed := NewPortfolio()
	iter.ReadObjectCB(func(it *jsoniter.Iterator, code string) bool {
		var h Holding
		it.ReadVal(&h)
		if it.Error != nil {
			return false
		}
		parsed.Set(code, h)
		return true
	})
	if iter.Error != nil {
		return fmt.Errorf("invalid portfolio: %w", iter.Error)
	}

	*p = parsed
	return nil
}

// AssetConfig 唯一持久化的文档
type AssetConfig struct {
	Portfolio   Portfolio `json:"portfolio"`
	Liabilities float64   `json:"liabilities"` // 负债，单位 CNY
}

// DefaultAssetConfig 首次读取时写入的默认配置
func DefaultAssetConfig() *AssetConfig {
	p := NewPortfolio()
	p.Set("002594.SZ", Holding{Shares: 10000, Name: "比亚迪"})
	p.Set("300274.SZ", Holding{Shares: 15000, Name: "阳光电源"})
	p.Set("600895.SH", Holding{Shares: 11600, Name: "张江高科"})
	p.Set("09880.HK", Holding{Shares: 7800, Name: "优必选"})
	p.Set("00981.HK", Holding{Shares: 6000, Name: "中芯国际"})

	return &AssetConfig{
		Portfolio:   p,
		Liabilities: 2527439,
	}
}
