// Package errors 定义跨模块共享的错误分类。
//
// 业务模块在 service 层声明自己的哨兵错误并包装这里的分类，
// handler 层通过 errors.Is / errors.As 映射 HTTP 状态。
package errors

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound 引用的记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrReference 外键无法解析或记录仍被引用
	ErrReference = errors.New("reference error")
	// ErrStorage 文件读写或删除失败
	ErrStorage = errors.New("storage error")
)

// ValidationError 字段级校验错误，客户端可修正，未发生任何写入
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError 创建空的字段错误集合
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add 为字段追加一条错误信息
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors 是否存在字段错误
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Merge 合并另一组字段错误
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		e.Fields[field] = append(e.Fields[field], msgs...)
	}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// AsValidation 提取 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
