package solver

import (
	"context"
	"testing"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/profile"
)

func filledShift(id int64, day int, start, end string, job int64, emp int64) *model.Shift {
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

func openShift(id int64, day int, start, end string, job int64) *model.Shift {
	return &model.Shift{
		ScheduleDetailID: id,
		DayNum:           day,
		StartTime:        start,
		EndTime:          end,
		JobNumber:        job,
		Unfilled:         true,
	}
}

func buildProfiles(t *testing.T, historical []*model.Shift) *model.Profiles {
	t.Helper()
	profiles, err := profile.Build(historical)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return profiles
}

func TestSolve_EmptyInput(t *testing.T) {
	// 没有空班时直接短路返回，不构造任何规划问题
	profiles := buildProfiles(t, []*model.Shift{
		filledShift(1, 1, "08:00:00", "16:00:00", 10, 100),
	})

	result, err := New().Solve(context.Background(), nil, profiles, nil)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusEmptyInput {
		t.Errorf("Status = %q, expected %q", result.Status, StatusEmptyInput)
	}
	if len(result.Assignments) != 0 {
		t.Errorf("空输入不应产生分配: %v", result.Assignments)
	}
}

func TestSolve_NoCandidates(t *testing.T) {
	profiles := buildProfiles(t, []*model.Shift{
		filledShift(1, 1, "08:00:00", "16:00:00", 10, 100),
	})

	// 员工100本周已值满5天，被预排除后没有候选人
	var week []*model.Shift
	for day := 1; day <= 5; day++ {
		week = append(week, filledShift(int64(day), day, "08:00:00", "10:00:00", 10, 100))
	}

	result, err := New().Solve(context.Background(), []*model.Shift{
		openShift(20, 6, "08:00:00", "16:00:00", 10),
	}, profiles, week)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusNoCandidates {
		t.Errorf("Status = %q, expected %q", result.Status, StatusNoCandidates)
	}
	if len(result.Excluded) != 1 {
		t.Errorf("排除清单长度 = %d, expected 1", len(result.Excluded))
	}
}

func TestSolve_WeeklyHoursCapPreferredOverScore(t *testing.T) {
	// 员工100画像与班次高度匹配但本周已累计38小时，
	// 8小时的空班只能落到匹配度较低的员工200头上
	historical := []*model.Shift{
		filledShift(1, 5, "08:00:00", "16:00:00", 10, 100),
		filledShift(2, 5, "08:00:00", "16:00:00", 10, 100),
		filledShift(3, 5, "08:00:00", "16:00:00", 10, 100),
		filledShift(4, 5, "12:00:00", "20:00:00", 20, 200),
	}
	profiles := buildProfiles(t, historical)

	week := []*model.Shift{
		filledShift(10, 1, "08:00:00", "18:00:00", 10, 100),
		filledShift(11, 2, "08:00:00", "18:00:00", 10, 100),
		filledShift(12, 3, "08:00:00", "18:00:00", 10, 100),
		filledShift(13, 4, "08:00:00", "16:00:00", 10, 100),
	}
	open := []*model.Shift{openShift(20, 5, "08:00:00", "16:00:00", 10)}

	result, err := New().Solve(context.Background(), open, profiles, week)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusOptimal {
		t.Fatalf("Status = %q, expected %q", result.Status, StatusOptimal)
	}

	got, ok := result.Assignments[model.ShiftKey{ScheduleDetailID: 20, DayNum: 5}]
	if !ok {
		t.Fatal("空班应被分配")
	}
	if got != 200 {
		t.Errorf("分配给员工%d, expected 200 (员工100周时余量不足)", got)
	}
}

func TestSolve_DailyCapLeavesShiftOpen(t *testing.T) {
	profiles := buildProfiles(t, []*model.Shift{
		filledShift(1, 3, "08:00:00", "16:00:00", 10, 100),
	})

	// 唯一候选人当天已有班，空班保持未分配
	week := []*model.Shift{filledShift(10, 3, "08:00:00", "12:00:00", 10, 100)}
	open := []*model.Shift{openShift(20, 3, "14:00:00", "18:00:00", 10)}

	result, err := New().Solve(context.Background(), open, profiles, week)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusOptimal {
		t.Fatalf("Status = %q, expected %q", result.Status, StatusOptimal)
	}
	if len(result.Assignments) != 0 {
		t.Errorf("单日上限应阻止分配: %v", result.Assignments)
	}
}

func TestSolve_WorkDaysCap(t *testing.T) {
	profiles := buildProfiles(t, []*model.Shift{
		filledShift(1, 5, "08:00:00", "12:00:00", 10, 100),
		filledShift(2, 6, "08:00:00", "12:00:00", 10, 100),
	})

	// 员工100已值4天，两个不同天的空班最多只能接下一个
	var week []*model.Shift
	for day := 1; day <= 4; day++ {
		week = append(week, filledShift(int64(day+10), day, "08:00:00", "12:00:00", 10, 100))
	}
	open := []*model.Shift{
		openShift(20, 5, "08:00:00", "12:00:00", 10),
		openShift(21, 6, "08:00:00", "12:00:00", 10),
	}

	result, err := New().Solve(context.Background(), open, profiles, week)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusOptimal {
		t.Fatalf("Status = %q, expected %q", result.Status, StatusOptimal)
	}
	if len(result.Assignments) != 1 {
		t.Errorf("天数上限应恰好允许一个新班: %v", result.Assignments)
	}
}

func TestSolve_OneAssigneePerShift(t *testing.T) {
	historical := []*model.Shift{
		filledShift(1, 1, "08:00:00", "16:00:00", 10, 100),
		filledShift(2, 1, "08:00:00", "16:00:00", 10, 200),
	}
	profiles := buildProfiles(t, historical)

	open := []*model.Shift{openShift(20, 1, "08:00:00", "16:00:00", 10)}

	result, err := New().Solve(context.Background(), open, profiles, nil)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusOptimal {
		t.Fatalf("Status = %q, expected %q", result.Status, StatusOptimal)
	}
	if len(result.Assignments) != 1 {
		t.Errorf("一个班次恰好一个分配: %v", result.Assignments)
	}
}

func TestSolve_DeduplicatesUnfilled(t *testing.T) {
	profiles := buildProfiles(t, []*model.Shift{
		filledShift(1, 1, "08:00:00", "16:00:00", 10, 100),
	})

	// 相同键的空班去重后只保留一个决策列
	open := []*model.Shift{
		openShift(20, 1, "08:00:00", "16:00:00", 10),
		openShift(20, 1, "08:00:00", "16:00:00", 10),
	}

	result, err := New().Solve(context.Background(), open, profiles, nil)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if len(result.Assignments) != 1 {
		t.Errorf("去重后应只有一个分配: %v", result.Assignments)
	}
}

func TestFill_AppliesAssignmentsToClone(t *testing.T) {
	historical := []*model.Shift{
		filledShift(1, 1, "08:00:00", "16:00:00", 10, 100),
		filledShift(2, 2, "08:00:00", "16:00:00", 10, 100),
	}
	profiles := buildProfiles(t, historical)

	snapshot := []*model.Shift{
		filledShift(10, 1, "08:00:00", "16:00:00", 10, 100),
		openShift(20, 2, "08:00:00", "16:00:00", 10),
	}

	fill, err := New().Fill(context.Background(), snapshot, profiles)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	if fill.NewlyFilled != 1 || fill.Remaining != 0 {
		t.Fatalf("NewlyFilled=%d Remaining=%d, expected 1/0", fill.NewlyFilled, fill.Remaining)
	}
	// 原始快照不被修改
	if snapshot[1].IsFilled() {
		t.Error("Fill 不应修改输入快照")
	}
	for _, s := range fill.Schedule {
		if s.Key() == (model.ShiftKey{ScheduleDetailID: 20, DayNum: 2}) {
			emp, ok := s.Employee()
			if !ok || emp != 100 {
				t.Errorf("班次20应分配给员工100, got (%v, %v)", emp, ok)
			}
		}
	}
}

func TestMatRow(t *testing.T) {
	// GLPK 只读取下标 1 起的元素，包装后首位必须是占位符
	ind, val := matRow([]int32{7}, []float64{1})
	if len(ind) != 2 || len(val) != 2 {
		t.Fatalf("长度 = (%d, %d), expected (2, 2)", len(ind), len(val))
	}
	if ind[0] != 0 || val[0] != 0 {
		t.Errorf("首位占位符 = (%d, %v), expected (0, 0)", ind[0], val[0])
	}
	if ind[1] != 7 || val[1] != 1 {
		t.Errorf("系数 = (%d, %v), expected (7, 1)", ind[1], val[1])
	}

	ind, val = matRow([]int32{3, 5}, []float64{1, -1})
	if len(ind) != 3 {
		t.Fatalf("长度 = %d, expected 3", len(ind))
	}
	if ind[1] != 3 || ind[2] != 5 || val[1] != 1 || val[2] != -1 {
		t.Errorf("系数顺序被破坏: ind=%v val=%v", ind, val)
	}
}

func TestApplyAssignments_FirstRowPerKey(t *testing.T) {
	// 同一个键对应多行空班时只写回首行
	rows := []*model.Shift{
		openShift(20, 2, "08:00:00", "16:00:00", 10),
		openShift(20, 2, "08:00:00", "16:00:00", 10),
		openShift(30, 3, "08:00:00", "16:00:00", 10),
	}
	assignments := map[model.ShiftKey]int64{
		{ScheduleDetailID: 20, DayNum: 2}: 100,
	}

	if got := applyAssignments(rows, assignments); got != 1 {
		t.Fatalf("newlyFilled = %d, expected 1", got)
	}
	if !rows[0].IsFilled() {
		t.Error("首行应被写回")
	}
	if rows[1].IsFilled() {
		t.Error("同键的第二行不应被写回")
	}
	if rows[2].IsFilled() {
		t.Error("未分配键的行不应被写回")
	}
}
