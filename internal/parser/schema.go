package parser

import "salesanalytics/internal/model"

// RequiredColumns 上传文件必须包含的 96 列，按精确字符串匹配（区分大小写、不去空格）
var RequiredColumns = model.Columns[:]

// ValidationResult 列校验结果
type ValidationResult struct {
	OK      bool     `json:"ok"`
	Missing []string `json:"missing,omitempty"`
}

// Err 校验失败时返回 *SchemaMismatchError
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return &SchemaMismatchError{Missing: r.Missing}
}

// ValidateColumns 检查 columns 是否包含全部必需列，Missing 保持 RequiredColumns 顺序
func ValidateColumns(columns []string) ValidationResult {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return ValidationResult{OK: false, Missing: missing}
	}
	return ValidationResult{OK: true}
}
