package handler

import (
	"net/http"
	"strconv"

	"github.com/istathak/AUS-submission-schedule-optimizer/internal/dataset"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/errors"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/stats"
)

// StatsHandler 画像与统计处理器
type StatsHandler struct {
	data *dataset.Dataset
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(data *dataset.Dataset) *StatsHandler {
	return &StatsHandler{data: data}
}

// ProfilesResponse 画像响应
type ProfilesResponse struct {
	Count    int                      `json:"count"`
	Universe model.Universe           `json:"universe"`
	Profiles []*model.EmployeeProfile `json:"profiles"`
}

// Profiles 返回员工偏好画像
//
// 带 employee_number 参数时只返回单个员工的画像。
func (h *StatsHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	profiles := h.data.Profiles()

	if raw := r.URL.Query().Get("employee_number"); raw != "" {
		emp, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, errors.InvalidInput("employee_number", "必须是整数"))
			return
		}
		p := profiles.Get(emp)
		if p == nil {
			respondError(w, errors.New(errors.CodeNotFound, "员工没有历史画像"))
			return
		}
		respondJSON(w, http.StatusOK, ProfilesResponse{
			Count:    1,
			Universe: profiles.Universe,
			Profiles: []*model.EmployeeProfile{p},
		})
		return
	}

	out := make([]*model.EmployeeProfile, 0, profiles.Len())
	for _, emp := range profiles.Employees() {
		out = append(out, profiles.Get(emp))
	}
	respondJSON(w, http.StatusOK, ProfilesResponse{
		Count:    len(out),
		Universe: profiles.Universe,
		Profiles: out,
	})
}

// Workload 返回目标周每个员工的工作量汇总
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	summary, err := stats.Workload(h.data.WeekSnapshot())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
