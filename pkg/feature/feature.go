// Package feature 从原始班次时间派生类别特征
//
// 所有函数均为纯函数：相同输入产生相同输出，不依赖外部状态。
// Augment 是幂等的，已派生的字段不会被重新计算。
package feature

import (
	"fmt"
	"time"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// 时段类别
const (
	TimeMorning   = "morning"   // 06:00 <= 开始 < 12:00
	TimeAfternoon = "afternoon" // 12:00 <= 开始 < 18:00
	TimeEvening   = "evening"   // 18:00 <= 开始 < 22:00
	TimeNight     = "night"     // 其余时段
)

// 时长类别
const (
	DurationShort  = "short"  // <= 6 小时
	DurationMedium = "medium" // <= 10 小时
	DurationLong   = "long"   // > 10 小时
)

// Separator 班次类型的拼接分隔符，班次类型 = 时段类别 + 分隔符 + 时长类别
const Separator = "_"

// ParseClock 解析 HH:MM:SS 或 HH:MM 形式的时刻
func ParseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析时刻 %q: %w", s, err)
	}
	return t, nil
}

// Hours 计算班次时长（小时）
// 结束时刻早于开始时刻表示跨午夜，加一天后计算
func Hours(start, end string) (float64, error) {
	startAt, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endAt, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if endAt.Before(startAt) {
		endAt = endAt.Add(24 * time.Hour)
	}
	return endAt.Sub(startAt).Hours(), nil
}

// TimeCategoryOf 按开始时刻的小时数划分时段类别
func TimeCategoryOf(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 18:
		return TimeAfternoon
	case hour >= 18 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

// DurationCategoryOf 按时长划分时长类别
func DurationCategoryOf(hours float64) string {
	switch {
	case hours <= 6:
		return DurationShort
	case hours <= 10:
		return DurationMedium
	default:
		return DurationLong
	}
}

// ShiftTypeOf 拼接班次类型
func ShiftTypeOf(timeCategory, durationCategory string) string {
	return timeCategory + Separator + durationCategory
}

// Augment 为班次填充派生特征字段，幂等：
// 已有值的字段保持不变，时长仅在缺失时重新计算。
// 原始时间字符串无法解析时返回致命的数据错误。
func Augment(s *model.Shift) error {
	if s.DurationHours == 0 {
		hours, err := Hours(s.StartTime, s.EndTime)
		if err != nil {
			return errors.Wrap(err, errors.CodeMissingInputData, "班次时间字段无效").
				WithField("shift", s.Key().String())
		}
		s.DurationHours = hours
	}

	if s.TimeCategory == "" {
		startAt, err := ParseClock(s.StartTime)
		if err != nil {
			return errors.Wrap(err, errors.CodeMissingInputData, "班次开始时间无效").
				WithField("shift", s.Key().String())
		}
		s.TimeCategory = TimeCategoryOf(startAt.Hour())
	}

	if s.DurationCategory == "" {
		s.DurationCategory = DurationCategoryOf(s.DurationHours)
	}

	if s.ShiftType == "" {
		s.ShiftType = ShiftTypeOf(s.TimeCategory, s.DurationCategory)
	}

	return nil
}

// AugmentAll 为班次集合填充派生特征，逐行独立、无跨行状态
func AugmentAll(shifts []*model.Shift) error {
	for _, s := range shifts {
		if err := Augment(s); err != nil {
			return err
		}
	}
	return nil
}
