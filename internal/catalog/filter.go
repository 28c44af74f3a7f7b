// Package catalog 对已获取的实体列表做内存过滤与分页。
package catalog

import "strings"

// Field 取实体的一个可搜索文本字段，字段缺失时返回 false
type Field[T any] func(item T) (string, bool)

// Text 将总是存在的字符串字段包装为 Field
func Text[T any](get func(item T) string) Field[T] {
	return func(item T) (string, bool) {
		return get(item), true
	}
}

// Filter 保留任一字段包含查询词（不区分大小写）的实体，保持原有顺序。
// 查询词为空或仅含空白时原样返回 items；否则按原样（不去空白）匹配。
func Filter[T any](items []T, query string, fields ...Field[T]) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}
	needle := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, needle, fields) {
			out = append(out, item)
		}
	}
	return out
}

func matches[T any](item T, needle string, fields []Field[T]) bool {
	for _, field := range fields {
		if field == nil {
			continue
		}
		value, ok := field(item)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// Where 按谓词过滤，保持原有顺序
func Where[T any](items []T, keep func(item T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
