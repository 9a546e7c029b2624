// Package dataset 持有启动时构建的不可变排班数据上下文
package dataset

import (
	apperrors "github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/feature"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/logger"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/profile"
)

// Dataset 服务启动时构建一次，之后只读共享
//
// 请求处理方需要修改班表时先取快照副本，原始数据不变。
type Dataset struct {
	historical []*model.Shift
	week       []*model.Shift
	profiles   *model.Profiles
	byKey      map[model.ShiftKey]*model.Shift
}

// Build 从历史记录和目标周班表构建数据上下文
func Build(historical, week []*model.Shift) (*Dataset, error) {
	if err := feature.AugmentAll(historical); err != nil {
		return nil, err
	}
	if err := feature.AugmentAll(week); err != nil {
		return nil, err
	}

	profiles, err := profile.Build(historical)
	if err != nil {
		return nil, err
	}

	byKey := make(map[model.ShiftKey]*model.Shift, len(week))
	for _, s := range week {
		key := s.Key()
		if _, dup := byKey[key]; dup {
			continue
		}
		byKey[key] = s
	}

	filled, unfilled := model.SplitByFilled(week)
	logger.Info().
		Int("historical_shifts", len(historical)).
		Int("week_shifts", len(week)).
		Int("filled", len(filled)).
		Int("unfilled", len(unfilled)).
		Int("profiles", profiles.Len()).
		Msg("数据上下文构建完成")

	return &Dataset{
		historical: historical,
		week:       week,
		profiles:   profiles,
		byKey:      byKey,
	}, nil
}

// Profiles 全体员工画像
func (d *Dataset) Profiles() *model.Profiles {
	return d.profiles
}

// WeekSnapshot 目标周班表的深拷贝
func (d *Dataset) WeekSnapshot() []*model.Shift {
	return model.CloneShifts(d.week)
}

// Historical 历史班次（只读，调用方不得修改）
func (d *Dataset) Historical() []*model.Shift {
	return d.historical
}

// FindCell 按键查找目标周的排班单元格，返回副本
func (d *Dataset) FindCell(scheduleDetailID int64, dayNum int) (*model.Shift, error) {
	s, ok := d.byKey[model.ShiftKey{ScheduleDetailID: scheduleDetailID, DayNum: dayNum}]
	if !ok {
		return nil, apperrors.CellNotFound(scheduleDetailID, dayNum)
	}
	return s.Clone(), nil
}

// UnfilledCount 目标周未分配班次数
func (d *Dataset) UnfilledCount() int {
	n := 0
	for _, s := range d.week {
		if !s.IsFilled() {
			n++
		}
	}
	return n
}
