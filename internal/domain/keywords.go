package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// rateTolerance is the absolute difference under which two rates are equal.
const rateTolerance = 1e-4

// RatesEqual reports whether two percentage rates are the same.
func RatesEqual(a, b float64) bool {
	return math.Abs(a-b) < rateTolerance
}

// Keywords is an ordered keyword list stored as a JSON text column.
type Keywords []string

// Value implements driver.Valuer.
func (k Keywords) Value() (driver.Value, error) {
	if k == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(k))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (k *Keywords) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*k = Keywords{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("keywords: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*k = Keywords{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("keywords: %w", err)
	}
	*k = out
	return nil
}
