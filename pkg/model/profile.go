// Package model 定义排班补位系统的核心数据模型
package model

import "sort"

// EmployeeProfile 员工偏好画像
// 五个维度各自是一个类别概率分布：有历史班次时每个分布的概率和为 1.0，
// 全局观测过但该员工从未值过的类别概率为 0。画像构建完成后不再修改。
type EmployeeProfile struct {
	EmployeeNumber int64              `json:"employee_number"`
	TotalShifts    int                `json:"total_shifts"`
	DayProbs       map[int]float64    `json:"day_probs"`        // DayNum 1-7
	TimeProbs      map[string]float64 `json:"time_probs"`       // morning/afternoon/evening/night
	DurationProbs  map[string]float64 `json:"duration_probs"`   // short/medium/long
	JobProbs       map[int64]float64  `json:"job_probs"`        // 岗位号
	ShiftTypeProbs map[string]float64 `json:"shift_type_probs"` // 时段_时长 组合
}

// Universe 各维度在全部历史数据中观测到的类别全集
type Universe struct {
	Days       []int    `json:"days"`
	Times      []string `json:"times"`
	Durations  []string `json:"durations"`
	Jobs       []int64  `json:"jobs"`
	ShiftTypes []string `json:"shift_types"`
}

// Profiles 全体员工画像集合，进程启动时构建一次，之后只读
type Profiles struct {
	ByEmployee map[int64]*EmployeeProfile `json:"by_employee"`
	Universe   Universe                   `json:"universe"`
}

// Get 返回指定员工的画像，不存在时返回 nil
func (p *Profiles) Get(employee int64) *EmployeeProfile {
	if p == nil {
		return nil
	}
	return p.ByEmployee[employee]
}

// Len 返回有画像的员工数
func (p *Profiles) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ByEmployee)
}

// Employees 返回升序排列的员工号列表，保证遍历顺序稳定
func (p *Profiles) Employees() []int64 {
	if p == nil {
		return nil
	}
	out := make([]int64, 0, len(p.ByEmployee))
	for emp := range p.ByEmployee {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
