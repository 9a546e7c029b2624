// Package profile 从历史班次学习员工偏好画像
package profile

import (
	"sort"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/feature"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// counts 单个员工在五个维度上的出现次数
type counts struct {
	total     int
	day       map[int]int
	time      map[string]int
	duration  map[string]int
	job       map[int64]int
	shiftType map[string]int
}

func newCounts() *counts {
	return &counts{
		day:       make(map[int]int),
		time:      make(map[string]int),
		duration:  make(map[string]int),
		job:       make(map[int64]int),
		shiftType: make(map[string]int),
	}
}

// Build 从历史班次构建全体员工画像
//
// 仅统计已分配员工的班次。每个维度的类别全集取自全部员工的历史观测值，
// 因此每个画像在每个全局观测过的类别上都有一列，该员工没值过的类别概率为 0。
// 没有任何历史班次的员工不出现在结果中。
func Build(historical []*model.Shift) (*model.Profiles, error) {
	profiles := &model.Profiles{ByEmployee: make(map[int64]*model.EmployeeProfile)}

	filled := make([]*model.Shift, 0, len(historical))
	for _, s := range historical {
		if s.IsFilled() {
			filled = append(filled, s)
		}
	}
	if len(filled) == 0 {
		return profiles, nil
	}

	if err := feature.AugmentAll(filled); err != nil {
		return nil, err
	}

	// 各维度的全局类别全集
	daySet := make(map[int]struct{})
	timeSet := make(map[string]struct{})
	durationSet := make(map[string]struct{})
	jobSet := make(map[int64]struct{})
	shiftTypeSet := make(map[string]struct{})

	byEmployee := make(map[int64]*counts)

	for _, s := range filled {
		emp, _ := s.Employee()

		daySet[s.DayNum] = struct{}{}
		timeSet[s.TimeCategory] = struct{}{}
		durationSet[s.DurationCategory] = struct{}{}
		jobSet[s.JobNumber] = struct{}{}
		shiftTypeSet[s.ShiftType] = struct{}{}

		c := byEmployee[emp]
		if c == nil {
			c = newCounts()
			byEmployee[emp] = c
		}
		c.total++
		c.day[s.DayNum]++
		c.time[s.TimeCategory]++
		c.duration[s.DurationCategory]++
		c.job[s.JobNumber]++
		c.shiftType[s.ShiftType]++
	}

	profiles.Universe = model.Universe{
		Days:       sortedInts(daySet),
		Times:      sortedStrings(timeSet),
		Durations:  sortedStrings(durationSet),
		Jobs:       sortedInt64s(jobSet),
		ShiftTypes: sortedStrings(shiftTypeSet),
	}

	for emp, c := range byEmployee {
		total := float64(c.total)
		p := &model.EmployeeProfile{
			EmployeeNumber: emp,
			TotalShifts:    c.total,
			DayProbs:       make(map[int]float64, len(profiles.Universe.Days)),
			TimeProbs:      make(map[string]float64, len(profiles.Universe.Times)),
			DurationProbs:  make(map[string]float64, len(profiles.Universe.Durations)),
			JobProbs:       make(map[int64]float64, len(profiles.Universe.Jobs)),
			ShiftTypeProbs: make(map[string]float64, len(profiles.Universe.ShiftTypes)),
		}

		for _, day := range profiles.Universe.Days {
			p.DayProbs[day] = float64(c.day[day]) / total
		}
		for _, tc := range profiles.Universe.Times {
			p.TimeProbs[tc] = float64(c.time[tc]) / total
		}
		for _, dc := range profiles.Universe.Durations {
			p.DurationProbs[dc] = float64(c.duration[dc]) / total
		}
		for _, job := range profiles.Universe.Jobs {
			p.JobProbs[job] = float64(c.job[job]) / total
		}
		for _, st := range profiles.Universe.ShiftTypes {
			p.ShiftTypeProbs[st] = float64(c.shiftType[st]) / total
		}

		profiles.ByEmployee[emp] = p
	}

	return profiles, nil
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedInt64s(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
