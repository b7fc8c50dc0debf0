package model

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError 字段级校验错误，按字段聚合消息.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError 创建空的校验错误.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add 追加某字段的一条错误消息.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// HasErrors 是否存在任何字段错误.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error 实现 error 接口，字段按名稳定排序.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}

	return "validation failed: " + strings.Join(parts, ", ")
}
