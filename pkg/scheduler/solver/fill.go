package solver

import (
	"context"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// FillResult 整周补位的产出
type FillResult struct {
	// Schedule 应用分配之后的完整周班表副本
	Schedule []*model.Shift `json:"schedule"`
	Solver   *Result        `json:"solver"`
	// NewlyFilled 本次求解新补上的班次数
	NewlyFilled int `json:"newly_filled"`
	// Remaining 求解后仍未分配的班次数
	Remaining int `json:"remaining"`
}

// Fill 对整周班表做一次补位求解
//
// 输入班表不被修改，返回应用了分配结果的深拷贝。
// 求解未达最优时班表原样返回，所有空班保持未分配。
func (m *MILPSolver) Fill(ctx context.Context, snapshot []*model.Shift, profiles *model.Profiles) (*FillResult, error) {
	schedule := model.CloneShifts(snapshot)
	filled, unfilled := model.SplitByFilled(schedule)

	result, err := m.Solve(ctx, unfilled, profiles, filled)
	if err != nil {
		return nil, err
	}

	newlyFilled := applyAssignments(unfilled, result.Assignments)

	return &FillResult{
		Schedule:    schedule,
		Solver:      result,
		NewlyFilled: newlyFilled,
		Remaining:   len(unfilled) - newlyFilled,
	}, nil
}

// applyAssignments 把分配结果写回空班行，返回实际补上的班次数。
// 同一个键对应多行时只写首行，其余行保持未分配。
func applyAssignments(unfilled []*model.Shift, assignments map[model.ShiftKey]int64) int {
	applied := make(map[model.ShiftKey]struct{}, len(assignments))
	newlyFilled := 0
	for _, s := range unfilled {
		key := s.Key()
		emp, ok := assignments[key]
		if !ok {
			continue
		}
		if _, dup := applied[key]; dup {
			continue
		}
		applied[key] = struct{}{}
		s.Assign(emp)
		newlyFilled++
	}
	return newlyFilled
}
