// Package scoring 计算员工画像与班次的匹配度得分
package scoring

import (
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// 五个维度的权重，总和为 1
const (
	WeightDay       = 0.30
	WeightTime      = 0.25
	WeightDuration  = 0.15
	WeightJob       = 0.20
	WeightShiftType = 0.10
)

// Score 计算员工对某个班次的匹配度，范围 [0, 1]
//
// 得分是五个维度边际概率的加权和。画像中不存在的类别按 0 处理，
// 即员工从未在历史中遇到过该类别时不贡献分数。
// 要求班次的派生特征已经填充。
func Score(p *model.EmployeeProfile, s *model.Shift) float64 {
	if p == nil || s == nil {
		return 0
	}

	score := WeightDay * p.DayProbs[s.DayNum]
	score += WeightTime * p.TimeProbs[s.TimeCategory]
	score += WeightDuration * p.DurationProbs[s.DurationCategory]
	score += WeightJob * p.JobProbs[s.JobNumber]
	score += WeightShiftType * p.ShiftTypeProbs[s.ShiftType]

	// 浮点累加可能让满配得分轻微越过 1，夹取回 [0, 1]
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// ScoreMatrix 计算每个员工对每个班次的得分，键为员工号
func ScoreMatrix(profiles *model.Profiles, shifts []*model.Shift) map[int64][]float64 {
	matrix := make(map[int64][]float64, profiles.Len())
	for emp, p := range profiles.ByEmployee {
		row := make([]float64, len(shifts))
		for i, s := range shifts {
			row[i] = Score(p, s)
		}
		matrix[emp] = row
	}
	return matrix
}
