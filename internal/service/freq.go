package service

import "sort"

// 频次统计辅助：top-N 排序按次数降序，同次数按键名字典序升序，保证结果稳定可复现。

type keyCount struct {
	Key   string
	Count int
}

// topKeys 取出现次数最高的前 n 个键
func topKeys(counts map[string]int, n int) []keyCount {
	if len(counts) == 0 || n <= 0 {
		return nil
	}

	entries := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, keyCount{Key: k, Count: c})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// topYears 取出现次数最高的前 n 个年份（同次数按年份升序）
func topYears(counts map[int]int, n int) []int {
	if len(counts) == 0 || n <= 0 {
		return nil
	}

	type yearCount struct {
		Year  int
		Count int
	}
	entries := make([]yearCount, 0, len(counts))
	for y, c := range counts {
		entries = append(entries, yearCount{Year: y, Count: c})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Year < entries[j].Year
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	years := make([]int, 0, len(entries))
	for _, e := range entries {
		years = append(years, e.Year)
	}
	return years
}

// clamp 将数值限制在指定范围内
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
