package model

import "testing"

func TestDayName(t *testing.T) {
	tests := []struct {
		name     string
		dayNum   int
		expected string
	}{
		{"排班周首日为周五", 1, "Friday"},
		{"第2天为周六", 2, "Saturday"},
		{"排班周末日为周四", 7, "Thursday"},
		{"非法取值返回空", 0, ""},
		{"超出范围返回空", 8, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayName(tt.dayNum); got != tt.expected {
				t.Errorf("DayName(%d) = %q, expected %q", tt.dayNum, got, tt.expected)
			}
		})
	}
}

func TestShift_Assign(t *testing.T) {
	s := &Shift{ScheduleDetailID: 100, DayNum: 3, Unfilled: true}

	if s.IsFilled() {
		t.Fatal("分配前应为未分配状态")
	}

	s.Assign(2001)

	if !s.IsFilled() {
		t.Error("分配后应为已分配状态")
	}
	if s.Unfilled {
		t.Error("分配后应清除未分配标记")
	}
	if emp, ok := s.Employee(); !ok || emp != 2001 {
		t.Errorf("Employee() = (%d, %v), expected (2001, true)", emp, ok)
	}
}

func TestShift_Clone(t *testing.T) {
	emp := int64(1001)
	s := &Shift{ScheduleDetailID: 1, DayNum: 2, EmployeeNumber: &emp}

	c := s.Clone()
	c.Assign(9999)

	if *s.EmployeeNumber != 1001 {
		t.Error("修改副本不应影响原班次")
	}
}

func TestSplitByFilled(t *testing.T) {
	emp := int64(1)
	shifts := []*Shift{
		{ScheduleDetailID: 1, DayNum: 1, EmployeeNumber: &emp},
		{ScheduleDetailID: 2, DayNum: 1, Unfilled: true},
		{ScheduleDetailID: 3, DayNum: 2, Unfilled: true},
	}

	filled, unfilled := SplitByFilled(shifts)

	if len(filled) != 1 || len(unfilled) != 2 {
		t.Errorf("拆分结果 filled=%d unfilled=%d, expected 1/2", len(filled), len(unfilled))
	}
}

func TestProfiles_Employees(t *testing.T) {
	p := &Profiles{ByEmployee: map[int64]*EmployeeProfile{
		30: {EmployeeNumber: 30},
		10: {EmployeeNumber: 10},
		20: {EmployeeNumber: 20},
	}}

	got := p.Employees()
	expected := []int64{10, 20, 30}

	if len(got) != len(expected) {
		t.Fatalf("员工数 = %d, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Employees()[%d] = %d, expected %d（应为升序）", i, got[i], expected[i])
		}
	}
}

func TestProfiles_Get(t *testing.T) {
	p := &Profiles{ByEmployee: map[int64]*EmployeeProfile{10: {EmployeeNumber: 10}}}

	if p.Get(10) == nil {
		t.Error("已有画像的员工应返回非nil")
	}
	if p.Get(99) != nil {
		t.Error("无历史班次的员工应返回nil，而不是零值画像")
	}
}
