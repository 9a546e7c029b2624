package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/istathak/AUS-submission-schedule-optimizer/internal/dataset"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/metrics"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scheduler/solver"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/stats"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/validator"
)

// ScheduleHandler 周班表处理器
type ScheduleHandler struct {
	data    *dataset.Dataset
	solver  *solver.MILPSolver
	timeout time.Duration
}

// NewScheduleHandler 创建周班表处理器
func NewScheduleHandler(data *dataset.Dataset, s *solver.MILPSolver, timeout time.Duration) *ScheduleHandler {
	return &ScheduleHandler{data: data, solver: s, timeout: timeout}
}

// ShiftOutput 班表输出行
type ShiftOutput struct {
	ScheduleDetailID int64   `json:"schedule_detail_id"`
	DayNum           int     `json:"day_num"`
	DayName          string  `json:"day_name"`
	Date             string  `json:"date,omitempty"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	JobNumber        int64   `json:"job_number"`
	DurationHours    float64 `json:"duration_hours"`
	ShiftType        string  `json:"shift_type"`
	EmployeeNumber   *int64  `json:"employee_number"`
	NewlyAssigned    bool    `json:"newly_assigned,omitempty"`
}

// FillResponse 整周补位响应
type FillResponse struct {
	SolverStatus string                `json:"solver_status"`
	SolverCode   string                `json:"solver_code,omitempty"`
	Objective    float64               `json:"objective"`
	NewlyFilled  int                   `json:"newly_filled"`
	Remaining    int                   `json:"remaining"`
	Duration     string                `json:"duration"`
	Quality      *stats.QualityMetrics `json:"quality,omitempty"`
	Validation   *validator.Report     `json:"validation,omitempty"`
	Schedule     []ShiftOutput         `json:"schedule"`
}

// Fill 对目标周全部空班做一次补位求解
func (h *ScheduleHandler) Fill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	fill, err := h.solver.Fill(ctx, h.data.WeekSnapshot(), h.data.Profiles())
	if err != nil {
		respondError(w, err)
		return
	}
	metrics.RecordSolve(fill.Solver.Status, fill.NewlyFilled, fill.Solver.Duration)
	for _, ex := range fill.Solver.Excluded {
		metrics.RecordExclusion(ex.Reason)
	}

	quality, err := stats.Quality(fill.Schedule, h.data.Profiles())
	if err != nil {
		respondError(w, err)
		return
	}
	metrics.SetCoverageRate(quality.CoverageRate)

	resp := FillResponse{
		SolverStatus: fill.Solver.Status,
		SolverCode:   string(fill.Solver.Code),
		Objective:    fill.Solver.Objective,
		NewlyFilled:  fill.NewlyFilled,
		Remaining:    fill.Remaining,
		Duration:     fill.Solver.Duration.String(),
		Quality:      quality,
		Validation:   validator.Check(fill.Schedule),
		Schedule:     make([]ShiftOutput, 0, len(fill.Schedule)),
	}
	for _, s := range fill.Schedule {
		out := shiftOutput(s)
		if _, newly := fill.Solver.Assignments[s.Key()]; newly {
			out.NewlyAssigned = true
		}
		resp.Schedule = append(resp.Schedule, out)
	}
	respondJSON(w, http.StatusOK, resp)
}

// ValidateResponse 校验响应
type ValidateResponse struct {
	Report *validator.Report `json:"report"`
}

// Validate 对目标周当前的分配做事后约束校验
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	report := validator.Check(h.data.WeekSnapshot())
	respondJSON(w, http.StatusOK, ValidateResponse{Report: report})
}

func shiftOutput(s *model.Shift) ShiftOutput {
	return ShiftOutput{
		ScheduleDetailID: s.ScheduleDetailID,
		DayNum:           s.DayNum,
		DayName:          model.DayName(s.DayNum),
		Date:             s.Date,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		JobNumber:        s.JobNumber,
		DurationHours:    s.DurationHours,
		ShiftType:        s.ShiftType,
		EmployeeNumber:   s.EmployeeNumber,
	}
}
