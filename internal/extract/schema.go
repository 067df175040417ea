package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// batchResultSchema 批处理结果的JSON结构
// 条目为成功记录或{"error","details"}失败标记，字段值都是字符串
const batchResultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["company_details", "assets"],
  "properties": {
    "company_details": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "assets": {
      "type": "array",
      "items": {"anyOf": [
        {
          "type": "object",
          "required": ["error"],
          "properties": {
            "error": {"type": "string"},
            "details": {"type": "string"}
          }
        },
        {
          "type": "object",
          "required": ["asset_details_of_security_interest", "security_interest_details"],
          "properties": {
            "asset_details_of_security_interest": {"$ref": "#/definitions/fields"},
            "security_interest_details": {"$ref": "#/definitions/fields"}
          }
        }
      ]}
    }
  },
  "definitions": {
    "fields": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("batch_result.json", strings.NewReader(batchResultSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("batch_result.json")
	})
	return schema, schemaErr
}

// ValidateBatchJSON 校验JSON是否符合批处理结果的结构
func ValidateBatchJSON(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("json does not match batch result schema: %w", err)
	}
	return nil
}
