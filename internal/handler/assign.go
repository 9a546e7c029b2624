package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/istathak/AUS-submission-schedule-optimizer/internal/dataset"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/metrics"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scheduler/solver"
)

// 单元格分配状态
const (
	CellFilled   = "filled"   // 单元格已有员工
	CellAssigned = "assigned" // 本次求解分配了员工
	CellUnfilled = "unfilled" // 求解后仍无人可用
)

// AssignHandler 单元格补位处理器
type AssignHandler struct {
	data    *dataset.Dataset
	solver  *solver.MILPSolver
	timeout time.Duration
}

// NewAssignHandler 创建单元格补位处理器
func NewAssignHandler(data *dataset.Dataset, s *solver.MILPSolver, timeout time.Duration) *AssignHandler {
	return &AssignHandler{data: data, solver: s, timeout: timeout}
}

// AssignRequest POST请求体
type AssignRequest struct {
	ScheduleDetailID int64 `json:"schedule_detail_id"`
	DayNum           int   `json:"day_num"`
}

// AssignResponse 补位响应
type AssignResponse struct {
	Status           string  `json:"status"`
	ScheduleDetailID int64   `json:"schedule_detail_id"`
	DayNum           int     `json:"day_num"`
	DayName          string  `json:"day_name"`
	EmployeeNumber   *int64  `json:"employee_number,omitempty"`
	SolverStatus     string  `json:"solver_status,omitempty"`
	SolverCode       string  `json:"solver_code,omitempty"`
	Objective        float64 `json:"objective,omitempty"`
	Duration         string  `json:"duration,omitempty"`
}

// Assign 为单个排班单元格求补位
//
// GET 用查询参数 schedule_detail_id 和 day_num，POST 用JSON请求体。
// 单元格已有员工时直接返回 filled，否则对整周求解并报告该单元格的结果。
func (h *AssignHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var id int64
	var day int
	var err error

	switch r.Method {
	case http.MethodGet:
		id, day, err = parseCellParams(r)
	case http.MethodPost:
		var req AssignRequest
		if derr := decodeJSON(r, &req); derr != nil {
			respondError(w, derr)
			return
		}
		id, day = req.ScheduleDetailID, req.DayNum
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if !model.ValidDayNum(day) {
		respondError(w, errors.InvalidInput("day_num", "取值必须在1到7之间"))
		return
	}

	cell, err := h.data.FindCell(id, day)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := AssignResponse{
		ScheduleDetailID: id,
		DayNum:           day,
		DayName:          model.DayName(day),
	}

	if emp, ok := cell.Employee(); ok {
		resp.Status = CellFilled
		resp.EmployeeNumber = &emp
		respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filled, unfilled := model.SplitByFilled(h.data.WeekSnapshot())
	result, err := h.solver.Solve(ctx, unfilled, h.data.Profiles(), filled)
	if err != nil {
		respondError(w, err)
		return
	}
	metrics.RecordSolve(result.Status, len(result.Assignments), result.Duration)
	for _, ex := range result.Excluded {
		metrics.RecordExclusion(ex.Reason)
	}

	resp.SolverStatus = result.Status
	resp.SolverCode = string(result.Code)
	resp.Objective = result.Objective
	resp.Duration = result.Duration.String()

	if emp, ok := result.Assignments[model.ShiftKey{ScheduleDetailID: id, DayNum: day}]; ok {
		resp.Status = CellAssigned
		resp.EmployeeNumber = &emp
	} else {
		resp.Status = CellUnfilled
	}
	respondJSON(w, http.StatusOK, resp)
}

func parseCellParams(r *http.Request) (int64, int, error) {
	q := r.URL.Query()

	rawID := q.Get("schedule_detail_id")
	if rawID == "" {
		return 0, 0, errors.InvalidInput("schedule_detail_id", "参数不能为空")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, 0, errors.InvalidInput("schedule_detail_id", "必须是整数")
	}

	rawDay := q.Get("day_num")
	if rawDay == "" {
		return 0, 0, errors.InvalidInput("day_num", "参数不能为空")
	}
	day, err := strconv.Atoi(rawDay)
	if err != nil {
		return 0, 0, errors.InvalidInput("day_num", "必须是整数")
	}

	return id, day, nil
}
