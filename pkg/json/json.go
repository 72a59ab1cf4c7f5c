package json

import (
	jsoniter "github.com/json-iterator/go"
)

// api 与标准库行为兼容的 jsoniter 配置
var api = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	Marshal   = api.Marshal
	Unmarshal = api.Unmarshal
)

// RawMessage 延迟解析的原始 JSON
type RawMessage = jsoniter.RawMessage

// API 返回底层 jsoniter API，供需要 Iterator/Stream 的编解码器使用
func API() jsoniter.API {
	return api
}
