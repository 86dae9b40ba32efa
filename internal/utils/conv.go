package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ParsePagination 解析 page/limit 查询参数。
// page 最小为 1，limit 超出 (0, maxLimit] 时回落到 defaultLimit。
func ParsePagination(pageStr, limitStr string, defaultLimit, maxLimit int) (page, limit int) {
	page = StringToInt(pageStr)
	if page < 1 {
		page = 1
	}
	limit = StringToInt(limitStr)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}
