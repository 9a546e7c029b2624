// Package solver 用整数线性规划求解周班次分配
package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lukpank/go-glpk/glpk"

	apperrors "github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/feature"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/logger"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scheduler/state"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scoring"
)

// 求解结果状态
const (
	StatusOptimal      = "optimal"
	StatusInfeasible   = "infeasible"
	StatusNonOptimal   = "non_optimal"
	StatusEmptyInput   = "empty_input"
	StatusNoCandidates = "no_candidates"
	StatusError        = "error"
)

// Result 一次求解的产出
type Result struct {
	// Assignments 班次键到员工号的分配映射，仅在找到最优解时非空
	Assignments map[model.ShiftKey]int64 `json:"assignments"`
	Status      string                   `json:"status"`
	// Code 求解未达最优时对应的业务错误码。按空结果约定返回，
	// 不升级为 HTTP 错误。
	Code      apperrors.Code    `json:"code,omitempty"`
	Objective float64           `json:"objective"`
	Excluded  []state.Exclusion `json:"excluded,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// MILPSolver 基于 GLPK 的二进制整数规划求解器
//
// 决策变量 x(e,j) 表示员工 e 是否承接未分配班次 j，
// 辅助变量 y(e,d) 表示员工 e 在第 d 天是否有新增班次。
// 目标为最大化画像匹配度之和，约束为：
// 每班至多一人、周时不超 40、不同值班天数不超 5、每天至多一班。
// 已分配班次的工作量先行计入余量。
type MILPSolver struct {
	log *logger.SolverLogger
}

// New 创建求解器
func New() *MILPSolver {
	return &MILPSolver{log: logger.NewSolverLogger()}
}

// Solve 为未分配班次求最优分配
//
// 未分配班次为空时直接返回空结果，不创建任何求解器对象。
// 仅接受被证明最优的解；不可行或求解中断时返回空分配并记录告警。
func (m *MILPSolver) Solve(ctx context.Context, unfilled []*model.Shift, profiles *model.Profiles, filled []*model.Shift) (*Result, error) {
	started := time.Now()
	result := &Result{Assignments: make(map[model.ShiftKey]int64)}

	if len(unfilled) == 0 {
		result.Status = StatusEmptyInput
		result.Duration = time.Since(started)
		m.log.SolveComplete(result.Status, 0, 0, result.Duration)
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shifts, err := m.prepare(unfilled)
	if err != nil {
		return nil, err
	}
	if err := feature.AugmentAll(filled); err != nil {
		return nil, err
	}

	st := state.New()
	st.Accumulate(filled)

	employees, excluded := st.FilterAssignable(profiles.Employees())
	result.Excluded = excluded
	var byHours, byDays, byDaily int
	for _, ex := range excluded {
		switch ex.Reason {
		case state.ReasonHoursExhausted:
			byHours++
		case state.ReasonDaysExhausted:
			byDays++
		case state.ReasonDailyConflict:
			byDaily++
		}
	}
	m.log.Excluded(byHours, byDays, byDaily)
	if len(employees) == 0 {
		result.Status = StatusNoCandidates
		result.Duration = time.Since(started)
		m.log.SolveComplete(result.Status, 0, 0, result.Duration)
		return result, nil
	}

	m.log.StartSolve(len(shifts), len(employees))

	status, objective, assignments := m.optimize(shifts, employees, profiles, st)
	result.Status = status
	result.Objective = objective
	switch status {
	case StatusOptimal:
		result.Assignments = assignments
	case StatusInfeasible:
		result.Code = apperrors.CodeNoFeasibleSolution
	case StatusNonOptimal, StatusError:
		result.Code = apperrors.CodeSolverNonOptimal
	}
	result.Duration = time.Since(started)
	m.log.SolveComplete(result.Status, len(result.Assignments), result.Objective, result.Duration)
	return result, nil
}

// prepare 填充派生特征并按键去重，保留首次出现的班次
func (m *MILPSolver) prepare(unfilled []*model.Shift) ([]*model.Shift, error) {
	if err := feature.AugmentAll(unfilled); err != nil {
		return nil, err
	}
	seen := make(map[model.ShiftKey]struct{}, len(unfilled))
	shifts := make([]*model.Shift, 0, len(unfilled))
	for _, s := range unfilled {
		key := s.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shifts = append(shifts, s)
	}
	return shifts, nil
}

func (m *MILPSolver) optimize(shifts []*model.Shift, employees []int64, profiles *model.Profiles, st *state.State) (string, float64, map[model.ShiftKey]int64) {
	lp := glpk.New()
	defer lp.Delete()
	lp.SetProbName("weekly_shift_assignment")
	lp.SetObjDir(glpk.ObjDir(glpk.MAX))

	days := unfilledDays(shifts)
	shiftsByDay := make(map[int][]int, len(days))
	for j, s := range shifts {
		shiftsByDay[s.DayNum] = append(shiftsByDay[s.DayNum], j)
	}

	// 列编号从 1 开始
	numCols := 0
	addBinary := func(name string, objCoef float64) int32 {
		numCols++
		lp.AddCols(1)
		lp.SetColName(numCols, name)
		lp.SetColKind(numCols, glpk.VarType(glpk.BV))
		lp.SetObjCoef(numCols, objCoef)
		return int32(numCols)
	}

	xCols := make(map[pair]int32, len(employees)*len(shifts))
	yCols := make(map[[2]int64]int32, len(employees)*len(days))
	scores := scoring.ScoreMatrix(profiles, shifts)

	for _, emp := range employees {
		for j, s := range shifts {
			name := fmt.Sprintf("x_e%d_s%s", emp, s.Key())
			xCols[pair{emp, j}] = addBinary(name, scores[emp][j])
		}
		for _, d := range days {
			name := fmt.Sprintf("y_e%d_d%d", emp, d)
			yCols[[2]int64{emp, int64(d)}] = addBinary(name, 0)
		}
	}

	numRows := 0
	addUpperRow := func(name string, upper float64, ind []int32, val []float64) {
		numRows++
		lp.AddRows(1)
		lp.SetRowName(numRows, name)
		lp.SetRowBnds(numRows, glpk.BndsType(glpk.UP), 0, upper)
		rind, rval := matRow(ind, val)
		lp.SetMatRow(numRows, rind, rval)
	}

	// C1 每班至多一人
	for j, s := range shifts {
		ind := make([]int32, 0, len(employees))
		val := make([]float64, 0, len(employees))
		for _, emp := range employees {
			ind = append(ind, xCols[pair{emp, j}])
			val = append(val, 1)
		}
		addUpperRow(fmt.Sprintf("c1_shift_%s", s.Key()), 1, ind, val)
	}

	for _, emp := range employees {
		// C2 周时上限，留出已分配小时
		ind := make([]int32, 0, len(shifts))
		val := make([]float64, 0, len(shifts))
		for j, s := range shifts {
			ind = append(ind, xCols[pair{emp, j}])
			val = append(val, s.DurationHours)
		}
		addUpperRow(fmt.Sprintf("c2_hours_e%d", emp), state.MaxWeeklyHours-st.Hours(emp), ind, val)

		for _, d := range days {
			y := yCols[[2]int64{emp, int64(d)}]

			// C3 连接约束：某天任一班次被接下则该天指示变量为 1，
			// 反之没有班次时指示变量为 0
			for _, j := range shiftsByDay[d] {
				addUpperRow(
					fmt.Sprintf("c3_link_e%d_d%d_s%s", emp, d, shifts[j].Key()),
					0,
					[]int32{xCols[pair{emp, j}], y},
					[]float64{1, -1},
				)
			}
			ind := make([]int32, 0, len(shiftsByDay[d])+1)
			val := make([]float64, 0, len(shiftsByDay[d])+1)
			ind = append(ind, y)
			val = append(val, 1)
			for _, j := range shiftsByDay[d] {
				ind = append(ind, xCols[pair{emp, j}])
				val = append(val, -1)
			}
			addUpperRow(fmt.Sprintf("c3_use_e%d_d%d", emp, d), 0, ind, val)

			// C4 每天至多一班，扣除已分配班次
			remaining := float64(state.MaxShiftsPerDay - st.DayCount(emp, d))
			if remaining < 0 {
				remaining = 0
			}
			ind = make([]int32, 0, len(shiftsByDay[d]))
			val = make([]float64, 0, len(shiftsByDay[d]))
			for _, j := range shiftsByDay[d] {
				ind = append(ind, xCols[pair{emp, j}])
				val = append(val, 1)
			}
			addUpperRow(fmt.Sprintf("c4_daily_e%d_d%d", emp, d), remaining, ind, val)
		}

		// C3 天数上限：已值班的天不计入新增指示变量
		ind = make([]int32, 0, len(days))
		val = make([]float64, 0, len(days))
		for _, d := range days {
			if st.DayCount(emp, d) > 0 {
				continue
			}
			ind = append(ind, yCols[[2]int64{emp, int64(d)}])
			val = append(val, 1)
		}
		if len(ind) > 0 {
			addUpperRow(fmt.Sprintf("c3_days_e%d", emp), float64(state.MaxWorkDays-st.WorkDays(emp)), ind, val)
		}
	}

	smcp := glpk.NewSmcp()
	smcp.SetMsgLev(glpk.MsgLev(glpk.MSG_ERR))
	if err := lp.Simplex(smcp); err != nil {
		m.log.NonOptimal("simplex_failed", err)
		return StatusError, 0, nil
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MsgLev(glpk.MSG_ERR))
	if err := lp.Intopt(iocp); err != nil {
		m.log.NonOptimal("intopt_failed", err)
		return StatusError, 0, nil
	}

	switch status := lp.MipStatus(); status {
	case glpk.OPT:
		return StatusOptimal, lp.MipObjVal(), m.extract(lp, shifts, employees, xCols)
	case glpk.NOFEAS:
		m.log.NonOptimal("infeasible", nil)
		return StatusInfeasible, 0, nil
	default:
		m.log.NonOptimal(fmt.Sprintf("status_%d", status), nil)
		return StatusNonOptimal, 0, nil
	}
}

// pair 标识一个决策变量 x(员工, 班次下标)
type pair struct {
	emp int64
	j   int
}

// matRow 按 GLPK 的 1 基数组约定包装行系数：
// glp_set_mat_row 忽略下标 0 的元素，只读取 ind[1..n]，
// 因此在稠密切片前补一个占位元素。
func matRow(ind []int32, val []float64) ([]int32, []float64) {
	rind := make([]int32, 0, len(ind)+1)
	rval := make([]float64, 0, len(val)+1)
	rind = append(rind, 0)
	rval = append(rval, 0)
	return append(rind, ind...), append(rval, val...)
}

// extract 读取取值大于 0.5 的决策变量。同一班次出现多个认领时保留首个，
// 其余记录告警后丢弃。
func (m *MILPSolver) extract(lp *glpk.Prob, shifts []*model.Shift, employees []int64, xCols map[pair]int32) map[model.ShiftKey]int64 {
	assignments := make(map[model.ShiftKey]int64)
	for j, s := range shifts {
		key := s.Key()
		for _, emp := range employees {
			col := xCols[pair{emp, j}]
			if lp.MipColVal(int(col)) > 0.5 {
				if kept, dup := assignments[key]; dup {
					m.log.DuplicateClaim(key.String(), kept, emp)
					continue
				}
				assignments[key] = emp
			}
		}
	}
	return assignments
}

func unfilledDays(shifts []*model.Shift) []int {
	set := make(map[int]struct{})
	for _, s := range shifts {
		set[s.DayNum] = struct{}{}
	}
	days := make([]int, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}
