// Package stats 提供排班质量与工作量统计
package stats

import (
	"math"
	"sort"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/feature"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scoring"
)

// QualityMetrics 排班质量指标
type QualityMetrics struct {
	FilledShifts   int     `json:"filled_shifts"`   // 已分配班次数
	UnfilledShifts int     `json:"unfilled_shifts"` // 未分配班次数
	ScoredShifts   int     `json:"scored_shifts"`   // 参与评分的班次数（有画像的员工）
	MeanScore      float64 `json:"mean_score"`      // 平均匹配度
	MinScore       float64 `json:"min_score"`       // 最低匹配度
	MaxScore       float64 `json:"max_score"`       // 最高匹配度
	CoverageRate   float64 `json:"coverage_rate"`   // 分配覆盖率
}

// Quality 计算一份周班表的整体匹配质量
//
// 逐个已分配班次计算员工与班次的匹配度并取均值。
// 没有画像的员工（无历史记录）不参与评分。
func Quality(schedule []*model.Shift, profiles *model.Profiles) (*QualityMetrics, error) {
	m := &QualityMetrics{}
	if err := feature.AugmentAll(schedule); err != nil {
		return nil, err
	}

	sum := 0.0
	m.MinScore = math.Inf(1)
	for _, s := range schedule {
		emp, ok := s.Employee()
		if !ok {
			m.UnfilledShifts++
			continue
		}
		m.FilledShifts++

		p := profiles.Get(emp)
		if p == nil {
			continue
		}
		score := scoring.Score(p, s)
		m.ScoredShifts++
		sum += score
		if score < m.MinScore {
			m.MinScore = score
		}
		if score > m.MaxScore {
			m.MaxScore = score
		}
	}

	if m.ScoredShifts > 0 {
		m.MeanScore = sum / float64(m.ScoredShifts)
	} else {
		m.MinScore = 0
	}
	if total := m.FilledShifts + m.UnfilledShifts; total > 0 {
		m.CoverageRate = float64(m.FilledShifts) / float64(total)
	}
	return m, nil
}

// WorkloadEntry 单个员工的周工作量
type WorkloadEntry struct {
	EmployeeNumber int64   `json:"employee_number"`
	Shifts         int     `json:"shifts"`
	Hours          float64 `json:"hours"`
	WorkDays       int     `json:"work_days"`
}

// WorkloadSummary 全体员工工作量汇总
type WorkloadSummary struct {
	Employees  []WorkloadEntry `json:"employees"`
	TotalHours float64         `json:"total_hours"`
	AvgHours   float64         `json:"avg_hours"`
}

// Workload 汇总周班表中每个员工的班次数、小时数和值班天数，按员工号升序
func Workload(schedule []*model.Shift) (*WorkloadSummary, error) {
	if err := feature.AugmentAll(schedule); err != nil {
		return nil, err
	}

	type tally struct {
		shifts int
		hours  float64
		days   map[int]struct{}
	}
	byEmployee := make(map[int64]*tally)

	for _, s := range schedule {
		emp, ok := s.Employee()
		if !ok {
			continue
		}
		tl := byEmployee[emp]
		if tl == nil {
			tl = &tally{days: make(map[int]struct{})}
			byEmployee[emp] = tl
		}
		tl.shifts++
		tl.hours += s.DurationHours
		tl.days[s.DayNum] = struct{}{}
	}

	summary := &WorkloadSummary{Employees: make([]WorkloadEntry, 0, len(byEmployee))}
	for emp, tl := range byEmployee {
		summary.Employees = append(summary.Employees, WorkloadEntry{
			EmployeeNumber: emp,
			Shifts:         tl.shifts,
			Hours:          tl.hours,
			WorkDays:       len(tl.days),
		})
		summary.TotalHours += tl.hours
	}
	sort.Slice(summary.Employees, func(i, j int) bool {
		return summary.Employees[i].EmployeeNumber < summary.Employees[j].EmployeeNumber
	})
	if len(summary.Employees) > 0 {
		summary.AvgHours = summary.TotalHours / float64(len(summary.Employees))
	}
	return summary, nil
}
