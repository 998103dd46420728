// Package jsonutil provides lenient JSON decoding helpers for LLM output,
// which frequently returns numbers where strings are expected and vice versa.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases
// where LLMs return numbers or booleans instead of strings. Returns empty
// string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}

// FlexibleIntValue converts a json.RawMessage to an int pointer, accepting
// numbers, numeric strings, and floats (truncated). Returns nil for null,
// empty, or unparseable input rather than failing the whole decode; a score
// the model mangled is dropped, not fatal.
func FlexibleIntValue(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var intVal int
	if err := json.Unmarshal(raw, &intVal); err == nil {
		return &intVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		n := int(numVal)
		return &n
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		strVal = strings.TrimSpace(strVal)
		if n, err := strconv.Atoi(strVal); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(strVal, 64); err == nil {
			n := int(f)
			return &n
		}
	}

	return nil
}
