package profile

import (
	"math"
	"testing"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

func shift(id int64, day int, start, end string, job int64, emp int64) *model.Shift {
	e := emp
	return &model.Shift{
		ScheduleDetailID: id,
		DayNum:           day,
		StartTime:        start,
		EndTime:          end,
		JobNumber:        job,
		EmployeeNumber:   &e,
	}
}

func unfilledShift(id int64, day int, start, end string, job int64) *model.Shift {
	return &model.Shift{
		ScheduleDetailID: id,
		DayNum:           day,
		StartTime:        start,
		EndTime:          end,
		JobNumber:        job,
		Unfilled:         true,
	}
}

func TestBuild_DistributionsSumToOne(t *testing.T) {
	historical := []*model.Shift{
		shift(1, 1, "08:00:00", "16:00:00", 10, 100),
		shift(2, 2, "08:00:00", "16:00:00", 10, 100),
		shift(3, 2, "12:00:00", "20:00:00", 20, 100),
		shift(4, 5, "22:00:00", "06:00:00", 10, 200),
		shift(5, 1, "06:00:00", "18:00:00", 30, 200),
	}

	profiles, err := Build(historical)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if profiles.Len() != 2 {
		t.Fatalf("画像数 = %d, expected 2", profiles.Len())
	}

	for emp, p := range profiles.ByEmployee {
		sums := map[string]float64{}
		for _, v := range p.DayProbs {
			sums["day"] += v
			if v < 0 || v > 1 {
				t.Errorf("员工%d day概率越界: %v", emp, v)
			}
		}
		for _, v := range p.TimeProbs {
			sums["time"] += v
		}
		for _, v := range p.DurationProbs {
			sums["duration"] += v
		}
		for _, v := range p.JobProbs {
			sums["job"] += v
		}
		for _, v := range p.ShiftTypeProbs {
			sums["shift_type"] += v
		}

		for dim, sum := range sums {
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("员工%d %s维度概率和 = %v, expected 1.0", emp, dim, sum)
			}
		}
	}
}

func TestBuild_UniverseCoversAllEmployees(t *testing.T) {
	// 员工100只在周五值班，员工200只在周二值班；
	// 两者的画像都应包含对方的日列，概率为0
	historical := []*model.Shift{
		shift(1, 1, "08:00:00", "16:00:00", 10, 100),
		shift(2, 5, "08:00:00", "16:00:00", 20, 200),
	}

	profiles, err := Build(historical)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	p100 := profiles.Get(100)
	if p100 == nil {
		t.Fatal("员工100应有画像")
	}

	if v, ok := p100.DayProbs[5]; !ok || v != 0 {
		t.Errorf("员工100在day=5上应有一列且概率为0, got (%v, %v)", v, ok)
	}
	if v, ok := p100.JobProbs[20]; !ok || v != 0 {
		t.Errorf("员工100在job=20上应有一列且概率为0, got (%v, %v)", v, ok)
	}
	if p100.DayProbs[1] != 1.0 {
		t.Errorf("员工100在day=1上的概率 = %v, expected 1.0", p100.DayProbs[1])
	}
}

func TestBuild_SkipsUnfilledShifts(t *testing.T) {
	historical := []*model.Shift{
		shift(1, 1, "08:00:00", "16:00:00", 10, 100),
		unfilledShift(2, 2, "08:00:00", "16:00:00", 99),
	}

	profiles, err := Build(historical)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if profiles.Len() != 1 {
		t.Fatalf("画像数 = %d, expected 1", profiles.Len())
	}
	// 未分配班次不参与类别全集
	if _, ok := profiles.Get(100).JobProbs[99]; ok {
		t.Error("未分配班次的岗位不应进入类别全集")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	profiles, err := Build(nil)
	if err != nil {
		t.Fatalf("Build(nil) error = %v", err)
	}
	if profiles.Len() != 0 {
		t.Errorf("空输入应产生空画像集合, got %d", profiles.Len())
	}
}

func TestBuild_TotalShifts(t *testing.T) {
	historical := []*model.Shift{
		shift(1, 1, "08:00:00", "16:00:00", 10, 100),
		shift(2, 2, "08:00:00", "16:00:00", 10, 100),
		shift(3, 3, "08:00:00", "16:00:00", 10, 100),
	}

	profiles, err := Build(historical)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := profiles.Get(100).TotalShifts; got != 3 {
		t.Errorf("TotalShifts = %d, expected 3", got)
	}
}
