// Package loader 从 CSV 数据源加载班次记录
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/logger"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// DateLayout 源数据的日期格式，如 10/8/2024
const DateLayout = "1/2/2006"

// 源文件必需的列
var requiredColumns = []string{
	"date",
	"ScheduleDetailID",
	"DayNum",
	"ShiftStartTime",
	"ShiftEndTime",
	"JobNumber",
	"EmployeeNumber",
}

// LoadFile 读取并解析一个 CSV 班次文件
func LoadFile(path string) ([]*model.Shift, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMissingInputData, "无法打开数据文件").
			WithField("path", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse 解析 CSV 班次数据
//
// 首行为表头，列顺序不限。缺少必需列时返回 MISSING_INPUT_DATA。
// EmployeeNumber 为空的行解析为未分配班次。
func Parse(r io.Reader) ([]*model.Shift, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMissingInputData, "无法读取表头")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, apperrors.MissingInputData(name)
		}
	}

	var shifts []*model.Shift
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeMissingInputData, "CSV 解析失败").
				WithField("line", line)
		}

		shift, err := parseRecord(record, cols)
		if err != nil {
			logger.WithError(err).Int("line", line).Msg("跳过无法解析的记录")
			continue
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

func parseRecord(record []string, cols map[string]int) (*model.Shift, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[cols[name]])
	}

	id, err := strconv.ParseInt(field("ScheduleDetailID"), 10, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("ScheduleDetailID", err.Error())
	}
	dayNum, err := strconv.Atoi(field("DayNum"))
	if err != nil {
		return nil, apperrors.InvalidInput("DayNum", err.Error())
	}
	if !model.ValidDayNum(dayNum) {
		return nil, apperrors.InvalidInput("DayNum", "取值必须在1到7之间")
	}
	job, err := strconv.ParseInt(field("JobNumber"), 10, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("JobNumber", err.Error())
	}

	shift := &model.Shift{
		ScheduleDetailID: id,
		DayNum:           dayNum,
		Date:             field("date"),
		StartTime:        field("ShiftStartTime"),
		EndTime:          field("ShiftEndTime"),
		JobNumber:        job,
	}

	if raw := field("EmployeeNumber"); raw == "" {
		shift.Unfilled = true
	} else {
		emp, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperrors.InvalidInput("EmployeeNumber", err.Error())
		}
		shift.EmployeeNumber = &emp
	}
	return shift, nil
}

// Deduplicate 按 (日期, 明细ID, 天序号) 去重，保留首次出现的记录
func Deduplicate(shifts []*model.Shift) []*model.Shift {
	type key struct {
		date string
		id   int64
		day  int
	}
	seen := make(map[key]struct{}, len(shifts))
	out := make([]*model.Shift, 0, len(shifts))
	dropped := 0

	for _, s := range shifts {
		k := key{date: s.Date, id: s.ScheduleDetailID, day: s.DayNum}
		if _, dup := seen[k]; dup {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	if dropped > 0 {
		logger.Warn().Int("dropped", dropped).Msg("去除重复班次记录")
	}
	return out
}

// Split 把记录划分为历史班次和目标日期的最新一周班次
//
// 历史只收严格早于目标日期的记录，晚于目标日期的记录整条丢弃，
// 不参与画像训练。日期无法解析的记录归入历史。
func Split(shifts []*model.Shift, targetDate string) (historical, latest []*model.Shift, err error) {
	target, err := time.Parse(DateLayout, targetDate)
	if err != nil {
		return nil, nil, apperrors.InvalidInput("target_date", err.Error())
	}

	dropped := 0
	for _, s := range shifts {
		d, perr := time.Parse(DateLayout, s.Date)
		switch {
		case perr != nil:
			historical = append(historical, s)
		case d.Equal(target):
			latest = append(latest, s)
		case d.Before(target):
			historical = append(historical, s)
		default:
			dropped++
		}
	}
	if dropped > 0 {
		logger.Warn().Int("dropped", dropped).Str("target_date", targetDate).Msg("丢弃晚于目标日期的班次记录")
	}
	return historical, latest, nil
}
