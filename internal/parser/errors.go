package parser

import (
	"strings"

	"salesanalytics/internal/apperr"
)

// ErrEmptyInput 首个工作表没有任何数据行
var ErrEmptyInput error = emptyInputError{}

type emptyInputError struct{}

func (emptyInputError) Error() string     { return "File is empty" }
func (emptyInputError) ErrorCode() string { return apperr.CodeEmptyInput }

// ErrInvalidFileType 上传的不是 .xlsx 文件
var ErrInvalidFileType error = invalidFileTypeError{}

type invalidFileTypeError struct{}

func (invalidFileTypeError) Error() string     { return "Please upload only .xlsx files" }
func (invalidFileTypeError) ErrorCode() string { return apperr.CodeInvalidFileType }

// SummaryLimit 错误提示中最多列出的缺失列数
const SummaryLimit = 3

// SchemaMismatchError 缺少必需列
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return "Missing columns: " + e.Summary(SummaryLimit)
}

func (e *SchemaMismatchError) ErrorCode() string { return apperr.CodeSchemaMismatch }

// Summary 列出前 n 个缺失列，超出部分以 "..." 表示
func (e *SchemaMismatchError) Summary(n int) string {
	if n <= 0 || n > len(e.Missing) {
		n = len(e.Missing)
	}
	s := strings.Join(e.Missing[:n], ", ")
	if len(e.Missing) > n {
		s += "..."
	}
	return s
}
