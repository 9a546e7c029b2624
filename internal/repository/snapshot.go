// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
)

// DB 仓储依赖的最小数据库接口
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SnapshotRepository 班次快照仓储
//
// 服务启动时一次性加载全部班次记录，之后不再访问数据库。
type SnapshotRepository struct {
	db    DB
	table string
}

// NewSnapshotRepository 创建班次快照仓储
func NewSnapshotRepository(db DB, table string) *SnapshotRepository {
	if table == "" {
		table = "shift_schedule"
	}
	return &SnapshotRepository{db: db, table: table}
}

// LoadShifts 加载全部班次记录
//
// EmployeeNumber 为 NULL 的行映射为未分配班次。
func (r *SnapshotRepository) LoadShifts(ctx context.Context) ([]*model.Shift, error) {
	query := fmt.Sprintf(`
		SELECT date, schedule_detail_id, day_num, shift_start_time, shift_end_time,
			job_number, employee_number
		FROM %s
		ORDER BY date, schedule_detail_id, day_num
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询班次快照失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.Shift
	for rows.Next() {
		var (
			s        model.Shift
			start    sql.NullString
			end      sql.NullString
			employee sql.NullInt64
		)
		if err := rows.Scan(
			&s.Date, &s.ScheduleDetailID, &s.DayNum,
			&start, &end, &s.JobNumber, &employee,
		); err != nil {
			return nil, fmt.Errorf("扫描班次记录失败: %w", err)
		}
		s.StartTime = start.String
		s.EndTime = end.String
		if employee.Valid {
			v := employee.Int64
			s.EmployeeNumber = &v
		} else {
			s.Unfilled = true
		}
		shifts = append(shifts, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历班次记录失败: %w", err)
	}
	return shifts, nil
}

// CountShifts 返回表中的班次总数
func (r *SnapshotRepository) CountShifts(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("统计班次数失败: %w", err)
	}
	return n, nil
}
