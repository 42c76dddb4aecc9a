package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ErrBadTime = errors.New("unrecognised time format")

var expirationLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime 解析过期时间；不带时区的格式按 UTC 处理。
// 先匹配 ISO 格式，其余交给 dateparse（如 "May 1, 2026"）。
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrBadTime
	}
	for _, layout := range expirationLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	if strings.Contains(s, "/") {
		// 01/05/2026 无法区分月日
		return time.Time{}, ErrBadTime
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, ErrBadTime
	}
	return t.UTC(), nil
}

// ParseID 解析路径中的正整数 ID
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
