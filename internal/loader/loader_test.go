package loader

import (
	"strings"
	"testing"

	apperrors "github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

const sampleCSV = `date,ScheduleDetailID,DayNum,ShiftStartTime,ShiftEndTime,JobNumber,EmployeeNumber
10/1/2024,101,1,08:00:00,16:00:00,10,1001
10/1/2024,102,2,12:00:00,20:00:00,20,1002
10/8/2024,201,1,08:00:00,16:00:00,10,1001
10/8/2024,202,2,22:00:00,06:00:00,20,
`

func TestParse(t *testing.T) {
	shifts, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(shifts) != 4 {
		t.Fatalf("记录数 = %d, expected 4", len(shifts))
	}

	first := shifts[0]
	if first.ScheduleDetailID != 101 || first.DayNum != 1 || first.Date != "10/1/2024" {
		t.Errorf("首条记录 = %+v", first)
	}
	emp, ok := first.Employee()
	if !ok || emp != 1001 {
		t.Errorf("首条记录员工 = (%v, %v), expected 1001", emp, ok)
	}

	// 空 EmployeeNumber 解析为未分配
	last := shifts[3]
	if !last.Unfilled || last.EmployeeNumber != nil {
		t.Errorf("末条记录应为未分配: %+v", last)
	}
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	csv := "date,ScheduleDetailID,DayNum,ShiftStartTime,ShiftEndTime,JobNumber\n" +
		"10/1/2024,101,1,08:00:00,16:00:00,10\n"

	_, err := Parse(strings.NewReader(csv))
	if err == nil {
		t.Fatal("缺少 EmployeeNumber 列应报错")
	}
	if !apperrors.Is(err, apperrors.CodeMissingInputData) {
		t.Errorf("错误码 = %v, expected MISSING_INPUT_DATA", apperrors.GetCode(err))
	}
}

func TestParse_SkipsBadRows(t *testing.T) {
	csv := "date,ScheduleDetailID,DayNum,ShiftStartTime,ShiftEndTime,JobNumber,EmployeeNumber\n" +
		"10/1/2024,abc,1,08:00:00,16:00:00,10,1001\n" +
		"10/1/2024,102,9,08:00:00,16:00:00,10,1001\n" +
		"10/1/2024,103,3,08:00:00,16:00:00,10,1001\n"

	shifts, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// 非数字ID和越界DayNum的行被跳过
	if len(shifts) != 1 || shifts[0].ScheduleDetailID != 103 {
		t.Errorf("记录 = %+v, expected 仅103", shifts)
	}
}

func TestDeduplicate(t *testing.T) {
	shifts, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	// 追加一条与首条同键但员工不同的记录
	dup := *shifts[0]
	other := int64(9999)
	dup.EmployeeNumber = &other
	shifts = append(shifts, &dup)

	out := Deduplicate(shifts)
	if len(out) != 4 {
		t.Fatalf("去重后 = %d, expected 4", len(out))
	}
	emp, _ := out[0].Employee()
	if emp != 1001 {
		t.Errorf("应保留首次出现的记录, got 员工%d", emp)
	}
}

func TestSplit(t *testing.T) {
	shifts, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	historical, latest, err := Split(shifts, "10/8/2024")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(historical) != 2 || len(latest) != 2 {
		t.Fatalf("historical=%d latest=%d, expected 2/2", len(historical), len(latest))
	}
	for _, s := range latest {
		if s.Date != "10/8/2024" {
			t.Errorf("最新周包含错误日期: %s", s.Date)
		}
	}
}

func TestSplit_DropsFutureDates(t *testing.T) {
	// 晚于目标日期的记录不进历史也不进最新周
	shifts := []*model.Shift{
		{Date: "10/1/2024", ScheduleDetailID: 1, DayNum: 1},
		{Date: "10/8/2024", ScheduleDetailID: 2, DayNum: 1},
		{Date: "10/15/2024", ScheduleDetailID: 3, DayNum: 1},
	}

	historical, latest, err := Split(shifts, "10/8/2024")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(historical) != 1 || historical[0].ScheduleDetailID != 1 {
		t.Errorf("历史应只含严格早于目标日期的记录: %+v", historical)
	}
	if len(latest) != 1 || latest[0].ScheduleDetailID != 2 {
		t.Errorf("最新周应只含目标日期的记录: %+v", latest)
	}
}

func TestSplit_BadTargetDate(t *testing.T) {
	_, _, err := Split(nil, "not-a-date")
	if err == nil {
		t.Fatal("无效目标日期应报错")
	}
	if !apperrors.Is(err, apperrors.CodeInvalidInput) {
		t.Errorf("错误码 = %v, expected INVALID_INPUT", apperrors.GetCode(err))
	}
}
