// Package state 维护员工当前周的工作量累计，供求解器约束使用
package state

import (
	"sort"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// 劳动约束上限
const (
	MaxWeeklyHours  = 40.0
	MaxWorkDays     = 5
	MaxShiftsPerDay = 1
)

// 排除原因
const (
	ReasonHoursExhausted = "hours_exhausted"
	ReasonDaysExhausted  = "days_exhausted"
	ReasonDailyConflict  = "daily_conflict"
)

// EmployeeState 单个员工已分配班次的累计量
type EmployeeState struct {
	EmployeeNumber int64       `json:"employee_number"`
	Hours          float64     `json:"hours"`
	DailyCount     map[int]int `json:"daily_count"`
}

// WorkDays 已值班的不同天数
func (e *EmployeeState) WorkDays() int {
	days := 0
	for _, n := range e.DailyCount {
		if n > 0 {
			days++
		}
	}
	return days
}

// State 全体员工的工作量累计
type State struct {
	byEmployee map[int64]*EmployeeState
}

// New 创建空累计器
func New() *State {
	return &State{byEmployee: make(map[int64]*EmployeeState)}
}

// Accumulate 把已分配班次计入累计。要求派生特征已填充。
func (s *State) Accumulate(shifts []*model.Shift) {
	for _, sh := range shifts {
		emp, ok := sh.Employee()
		if !ok {
			continue
		}
		es := s.byEmployee[emp]
		if es == nil {
			es = &EmployeeState{EmployeeNumber: emp, DailyCount: make(map[int]int)}
			s.byEmployee[emp] = es
		}
		es.Hours += sh.DurationHours
		es.DailyCount[sh.DayNum]++
	}
}

// Get 返回员工的累计状态，没有记录时返回零值状态
func (s *State) Get(emp int64) EmployeeState {
	if es, ok := s.byEmployee[emp]; ok {
		return *es
	}
	return EmployeeState{EmployeeNumber: emp, DailyCount: map[int]int{}}
}

// Hours 员工已累计的小时数
func (s *State) Hours(emp int64) float64 {
	if es, ok := s.byEmployee[emp]; ok {
		return es.Hours
	}
	return 0
}

// WorkDays 员工已值班的不同天数
func (s *State) WorkDays(emp int64) int {
	if es, ok := s.byEmployee[emp]; ok {
		return es.WorkDays()
	}
	return 0
}

// DayCount 员工在某天已分配的班次数
func (s *State) DayCount(emp int64, day int) int {
	if es, ok := s.byEmployee[emp]; ok {
		return es.DailyCount[day]
	}
	return 0
}

// Exclusion 被预排除的员工及原因
type Exclusion struct {
	EmployeeNumber int64  `json:"employee_number"`
	Reason         string `json:"reason"`
}

// FilterAssignable 预排除已无任何分配余量的员工
//
// 已达周时上限、已达天数上限、或任一天已超过单日上限的员工
// 不可能再接受任何新班次，提前剔除可以缩小求解规模。
// 返回可分配员工（升序）与排除清单。
func (s *State) FilterAssignable(employees []int64) ([]int64, []Exclusion) {
	assignable := make([]int64, 0, len(employees))
	var excluded []Exclusion

	for _, emp := range employees {
		switch {
		case s.Hours(emp) >= MaxWeeklyHours:
			excluded = append(excluded, Exclusion{EmployeeNumber: emp, Reason: ReasonHoursExhausted})
		case s.WorkDays(emp) >= MaxWorkDays:
			excluded = append(excluded, Exclusion{EmployeeNumber: emp, Reason: ReasonDaysExhausted})
		case s.hasDailyOverflow(emp):
			excluded = append(excluded, Exclusion{EmployeeNumber: emp, Reason: ReasonDailyConflict})
		default:
			assignable = append(assignable, emp)
		}
	}

	sort.Slice(assignable, func(i, j int) bool { return assignable[i] < assignable[j] })
	return assignable, excluded
}

func (s *State) hasDailyOverflow(emp int64) bool {
	es, ok := s.byEmployee[emp]
	if !ok {
		return false
	}
	for _, n := range es.DailyCount {
		if n > MaxShiftsPerDay {
			return true
		}
	}
	return false
}
