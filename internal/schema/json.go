package schema

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONArray 用于以 TEXT 列存储 JSON 字符串数组（如流派/平台列表）
type JSONArray []string

// Value 实现 driver.Valuer 接口
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口；存储内容不合法时按空列表处理（parse-or-skip）
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*j = make(JSONArray, 0)
		return nil
	}

	if err := json.Unmarshal(bytes, j); err != nil {
		*j = make(JSONArray, 0)
	}
	return nil
}

// JSONMap 用于存储 JSON 格式的元数据
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid type for JSONMap")
	}

	return json.Unmarshal(bytes, j)
}

// jsonColumnValue 序列化偏好结构为 TEXT 列
func jsonColumnValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

// jsonColumnScan 反序列化 TEXT 列为偏好结构；内容不合法时保留零值（parse-or-skip）
func jsonColumnScan(dst any, value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}
	_ = json.Unmarshal(bytes, dst)
	return nil
}
