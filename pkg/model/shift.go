// Package model 定义排班补位系统的核心数据模型
package model

import "fmt"

// 排班周固定为 周五(1) 到 周四(7)，系统将每批班次视为同一个排班周处理，
// 不做基于真实日期的跨周关联。
var dayNames = map[int]string{
	1: "Friday",
	2: "Saturday",
	3: "Sunday",
	4: "Monday",
	5: "Tuesday",
	6: "Wednesday",
	7: "Thursday",
}

// DayName 返回 DayNum 对应的星期名，未知取值返回空字符串
func DayName(dayNum int) string {
	return dayNames[dayNum]
}

// ValidDayNum 检查 DayNum 是否在 1-7 范围内
func ValidDayNum(dayNum int) bool {
	return dayNum >= 1 && dayNum <= 7
}

// ShiftKey 班次标识，(ScheduleDetailID, DayNum) 唯一确定一个排班单元格
type ShiftKey struct {
	ScheduleDetailID int64 `json:"schedule_detail_id"`
	DayNum           int   `json:"day_num"`
}

// String 返回 "id/day" 形式的标识
func (k ShiftKey) String() string {
	return fmt.Sprintf("%d/%d", k.ScheduleDetailID, k.DayNum)
}

// Shift 单条班次记录
type Shift struct {
	ScheduleDetailID int64  `json:"schedule_detail_id" db:"schedule_detail_id"`
	DayNum           int    `json:"day_num" db:"day_num"`
	Date             string `json:"date,omitempty" db:"snapshot_date"` // 快照日期 M/D/YYYY
	StartTime        string `json:"start_time" db:"start_time"`        // HH:MM:SS
	EndTime          string `json:"end_time" db:"end_time"`            // HH:MM:SS，可跨午夜
	JobNumber        int64  `json:"job_number" db:"job_number"`
	EmployeeNumber   *int64 `json:"employee_number,omitempty" db:"employee_number"` // nil 表示未分配
	Unfilled         bool   `json:"unfilled" db:"-"`

	// 特征派生字段，由 feature 包填充
	DurationHours    float64 `json:"duration_hours,omitempty"`
	TimeCategory     string  `json:"time_category,omitempty"`
	DurationCategory string  `json:"duration_category,omitempty"`
	ShiftType        string  `json:"shift_type,omitempty"`
}

// Key 返回班次标识
func (s *Shift) Key() ShiftKey {
	return ShiftKey{ScheduleDetailID: s.ScheduleDetailID, DayNum: s.DayNum}
}

// IsFilled 检查班次是否已分配员工
func (s *Shift) IsFilled() bool {
	return s.EmployeeNumber != nil
}

// Employee 返回已分配的员工号，未分配时返回 0 和 false
func (s *Shift) Employee() (int64, bool) {
	if s.EmployeeNumber == nil {
		return 0, false
	}
	return *s.EmployeeNumber, true
}

// Assign 将班次分配给员工并清除未分配标记
func (s *Shift) Assign(employee int64) {
	e := employee
	s.EmployeeNumber = &e
	s.Unfilled = false
}

// Clone 返回班次的副本
func (s *Shift) Clone() *Shift {
	c := *s
	if s.EmployeeNumber != nil {
		e := *s.EmployeeNumber
		c.EmployeeNumber = &e
	}
	return &c
}

// CloneShifts 返回班次集合的逐条副本
func CloneShifts(shifts []*Shift) []*Shift {
	out := make([]*Shift, len(shifts))
	for i, s := range shifts {
		out[i] = s.Clone()
	}
	return out
}

// SplitByFilled 将班次集合拆分为已分配与未分配两部分
func SplitByFilled(shifts []*Shift) (filled, unfilled []*Shift) {
	for _, s := range shifts {
		if s.IsFilled() {
			filled = append(filled, s)
		} else {
			unfilled = append(unfilled, s)
		}
	}
	return filled, unfilled
}
