package repository

import "time"

// WindowStart 计算滑动窗口起点（now 往前推 days 天）的毫秒时间戳。
// days ≤ 0 时按 7 天处理。
func WindowStart(now time.Time, days int) int64 {
	if days <= 0 {
		days = 7
	}
	return now.AddDate(0, 0, -days).UnixMilli()
}
