// Package validator 对排班结果做事后约束校验
package validator

import (
	"sort"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/feature"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scheduler/state"
)

// HoursViolation 周时超限
type HoursViolation struct {
	EmployeeNumber int64   `json:"employee_number"`
	Hours          float64 `json:"hours"`
	Limit          float64 `json:"limit"`
}

// DaysViolation 值班天数超限
type DaysViolation struct {
	EmployeeNumber int64 `json:"employee_number"`
	Days           int   `json:"days"`
	Limit          int   `json:"limit"`
}

// DailyViolation 单日班次数超限
type DailyViolation struct {
	EmployeeNumber int64  `json:"employee_number"`
	DayNum         int    `json:"day_num"`
	DayName        string `json:"day_name"`
	Count          int    `json:"count"`
	Limit          int    `json:"limit"`
}

// Report 校验报告
type Report struct {
	Valid           bool             `json:"valid"`
	CheckedShifts   int              `json:"checked_shifts"`
	HoursViolations []HoursViolation `json:"hours_violations"`
	DaysViolations  []DaysViolation  `json:"days_violations"`
	DailyViolations []DailyViolation `json:"daily_violations"`
}

// Check 校验一份周班表的全部已分配班次
//
// 不修改输入班表。班次缺少派生时长时现场推导，推导失败按 8 小时计。
// 各违规清单按员工号升序排列。
func Check(schedule []*model.Shift) *Report {
	report := &Report{
		HoursViolations: []HoursViolation{},
		DaysViolations:  []DaysViolation{},
		DailyViolations: []DailyViolation{},
	}

	type tally struct {
		hours float64
		daily map[int]int
	}
	byEmployee := make(map[int64]*tally)

	for _, s := range schedule {
		emp, ok := s.Employee()
		if !ok {
			continue
		}
		report.CheckedShifts++

		tl := byEmployee[emp]
		if tl == nil {
			tl = &tally{daily: make(map[int]int)}
			byEmployee[emp] = tl
		}
		tl.hours += shiftHours(s)
		tl.daily[s.DayNum]++
	}

	employees := make([]int64, 0, len(byEmployee))
	for emp := range byEmployee {
		employees = append(employees, emp)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i] < employees[j] })

	for _, emp := range employees {
		tl := byEmployee[emp]

		if tl.hours > state.MaxWeeklyHours {
			report.HoursViolations = append(report.HoursViolations, HoursViolation{
				EmployeeNumber: emp, Hours: tl.hours, Limit: state.MaxWeeklyHours,
			})
		}

		days := 0
		dayNums := make([]int, 0, len(tl.daily))
		for d := range tl.daily {
			days++
			dayNums = append(dayNums, d)
		}
		sort.Ints(dayNums)

		if days > state.MaxWorkDays {
			report.DaysViolations = append(report.DaysViolations, DaysViolation{
				EmployeeNumber: emp, Days: days, Limit: state.MaxWorkDays,
			})
		}

		for _, d := range dayNums {
			if n := tl.daily[d]; n > state.MaxShiftsPerDay {
				report.DailyViolations = append(report.DailyViolations, DailyViolation{
					EmployeeNumber: emp, DayNum: d, DayName: model.DayName(d),
					Count: n, Limit: state.MaxShiftsPerDay,
				})
			}
		}
	}

	report.Valid = len(report.HoursViolations) == 0 &&
		len(report.DaysViolations) == 0 &&
		len(report.DailyViolations) == 0
	return report
}

// 缺失时长的默认值，与源数据中常见班长一致
const defaultShiftHours = 8.0

func shiftHours(s *model.Shift) float64 {
	if s.DurationHours > 0 {
		return s.DurationHours
	}
	hours, err := feature.Hours(s.StartTime, s.EndTime)
	if err != nil {
		return defaultShiftHours
	}
	return hours
}
