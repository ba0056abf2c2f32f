package models

import (
	"math"
	"time"
)

// AttendanceStatus представляет статус посещаемости, соответствует ENUM в БД.
// pending выставляется ровно один раз при создании строки и не может быть
// целью ручного обновления.
type AttendanceStatus string

const (
	AttendancePending AttendanceStatus = "pending"
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid сообщает, является ли значение одним из известных статусов.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePending, AttendancePresent, AttendanceAbsent,
		AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

type Attendance struct {
	ID        int              `json:"id" db:"id"`
	SessionID int              `json:"session_id" db:"session_id"`
	MemberID  int              `json:"member_id" db:"member_id"`
	Status    AttendanceStatus `json:"status" db:"status"`
	Notes     *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	Member *TeamMember `json:"member,omitempty" db:"-"`
}

type AttendanceSummary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Pending int `json:"pending"`
	Rate    int `json:"attendance_rate"`
}

// NewAttendanceSummary считает сводку по срезу "статус — количество строк".
// Формула закреплена контрактом: опоздавшие учитываются в проценте посещаемости,
// но остаются отдельной категорией в отчёте.
func NewAttendanceSummary(counts map[AttendanceStatus]int) AttendanceSummary {
	s := AttendanceSummary{
		Present: counts[AttendancePresent],
		Absent:  counts[AttendanceAbsent],
		Late:    counts[AttendanceLate],
		Excused: counts[AttendanceExcused],
		Pending: counts[AttendancePending],
	}
	s.Total = s.Present + s.Absent + s.Late + s.Excused + s.Pending
	if s.Total > 0 {
		s.Rate = int(math.Round(float64(s.Present+s.Late) / float64(s.Total) * 100))
	}
	return s
}
