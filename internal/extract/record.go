package extract

import (
	"encoding/json"
	"fmt"
)

// Fields 字段名到提取值的映射
type Fields map[string]string

// Get 获取字段值，缺失时返回默认值
func (f Fields) Get(name string) string {
	if v, ok := f[name]; ok {
		return v
	}
	return DefaultValue
}

// DocumentRecord 单份文档的提取结果
type DocumentRecord struct {
	Asset    Fields `json:"asset_details_of_security_interest"`
	Security Fields `json:"security_interest_details"`
}

// ErrorRecord 批处理中某份文档的失败标记
type ErrorRecord struct {
	Source  string `json:"-"`       // 源文档标识
	Error   string `json:"error"`   // 面向用户的错误说明
	Details string `json:"details"` // 原始错误信息
}

// NewErrorRecord 根据源文档标识和错误创建失败标记
func NewErrorRecord(source string, err error) *ErrorRecord {
	return &ErrorRecord{
		Source:  source,
		Error:   fmt.Sprintf("Failed to process file: %s", source),
		Details: err.Error(),
	}
}

// AssetEntry 批处理结果中的一项，成功记录或失败标记二选一
type AssetEntry struct {
	Record  *DocumentRecord
	Failure *ErrorRecord
}

// Failed 判断该项是否为失败标记
func (e AssetEntry) Failed() bool {
	return e.Failure != nil
}

// MarshalJSON 输出成功记录或{"error","details"}
func (e AssetEntry) MarshalJSON() ([]byte, error) {
	if e.Failure != nil {
		return json.Marshal(e.Failure)
	}
	if e.Record == nil {
		return []byte("null"), nil
	}
	return json.Marshal(e.Record)
}

// UnmarshalJSON 根据是否包含"error"键区分两种形态
func (e *AssetEntry) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if keys == nil {
		*e = AssetEntry{}
		return nil
	}

	if _, ok := keys["error"]; ok {
		var failure ErrorRecord
		if err := json.Unmarshal(data, &failure); err != nil {
			return err
		}
		*e = AssetEntry{Failure: &failure}
		return nil
	}

	var record DocumentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	*e = AssetEntry{Record: &record}
	return nil
}

// BatchResult 一次批处理的完整输出
type BatchResult struct {
	Company HeaderInfo   `json:"company_details"`
	Assets  []AssetEntry `json:"assets"`
}

// Failures 统计失败项数量
func (b *BatchResult) Failures() int {
	n := 0
	for _, a := range b.Assets {
		if a.Failed() {
			n++
		}
	}
	return n
}

// ParseBatchResult 从JSON还原批处理结果
func ParseBatchResult(data []byte) (*BatchResult, error) {
	var result BatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode batch result: %w", err)
	}
	return &result, nil
}
