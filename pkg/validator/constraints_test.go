package validator

import (
	"testing"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

func assigned(id int64, day int, start, end string, emp int64) *model.Shift {
	e := emp
	return &model.Shift{
		ScheduleDetailID: id,
		DayNum:           day,
		StartTime:        start,
		EndTime:          end,
		EmployeeNumber:   &e,
	}
}

func TestCheck_ValidSchedule(t *testing.T) {
	schedule := []*model.Shift{
		assigned(1, 1, "08:00:00", "16:00:00", 100),
		assigned(2, 2, "08:00:00", "16:00:00", 100),
		assigned(3, 1, "12:00:00", "20:00:00", 200),
		{ScheduleDetailID: 4, DayNum: 3, StartTime: "08:00:00", EndTime: "16:00:00", Unfilled: true},
	}

	report := Check(schedule)
	if !report.Valid {
		t.Errorf("合规班表不应报违规: %+v", report)
	}
	if report.CheckedShifts != 3 {
		t.Errorf("CheckedShifts = %d, expected 3 (空班不计入)", report.CheckedShifts)
	}
}

func TestCheck_HoursViolation(t *testing.T) {
	// 4天各12小时，共48小时，超过40小时上限
	var schedule []*model.Shift
	for day := 1; day <= 4; day++ {
		schedule = append(schedule, assigned(int64(day), day, "06:00:00", "18:00:00", 100))
	}

	report := Check(schedule)
	if report.Valid {
		t.Fatal("48小时应触发周时违规")
	}
	if len(report.HoursViolations) != 1 {
		t.Fatalf("HoursViolations = %+v, expected 1条", report.HoursViolations)
	}
	v := report.HoursViolations[0]
	if v.EmployeeNumber != 100 || v.Hours != 48 || v.Limit != 40 {
		t.Errorf("违规记录 = %+v", v)
	}
	if len(report.DaysViolations) != 0 {
		t.Errorf("4天不应触发天数违规: %+v", report.DaysViolations)
	}
}

func TestCheck_DaysViolation(t *testing.T) {
	// 6天各值一个短班，超过5天上限但远未到40小时
	var schedule []*model.Shift
	for day := 1; day <= 6; day++ {
		schedule = append(schedule, assigned(int64(day), day, "08:00:00", "11:00:00", 100))
	}

	report := Check(schedule)
	if report.Valid {
		t.Fatal("6天应触发天数违规")
	}
	if len(report.DaysViolations) != 1 || report.DaysViolations[0].Days != 6 {
		t.Errorf("DaysViolations = %+v", report.DaysViolations)
	}
	if len(report.HoursViolations) != 0 {
		t.Errorf("18小时不应触发周时违规: %+v", report.HoursViolations)
	}
}

func TestCheck_DailyViolation(t *testing.T) {
	schedule := []*model.Shift{
		assigned(1, 3, "08:00:00", "12:00:00", 100),
		assigned(2, 3, "14:00:00", "18:00:00", 100),
	}

	report := Check(schedule)
	if report.Valid {
		t.Fatal("同日两班应触发单日违规")
	}
	if len(report.DailyViolations) != 1 {
		t.Fatalf("DailyViolations = %+v, expected 1条", report.DailyViolations)
	}
	v := report.DailyViolations[0]
	if v.DayNum != 3 || v.Count != 2 || v.DayName != "Sunday" {
		t.Errorf("违规记录 = %+v", v)
	}
}

func TestCheck_DefaultsMissingDuration(t *testing.T) {
	// 起止时间无法解析时按8小时计，5班共40小时恰好不违规
	var schedule []*model.Shift
	for day := 1; day <= 5; day++ {
		schedule = append(schedule, assigned(int64(day), day, "", "", 100))
	}

	report := Check(schedule)
	if !report.Valid {
		t.Errorf("5班×8小时默认值 = 40小时，不应违规: %+v", report)
	}
}

func TestCheck_DoesNotMutate(t *testing.T) {
	s := assigned(1, 1, "08:00:00", "16:00:00", 100)
	Check([]*model.Shift{s})
	if s.DurationHours != 0 {
		t.Errorf("校验不应修改班次: DurationHours = %v", s.DurationHours)
	}
}
