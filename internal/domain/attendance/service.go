package attendance

import (
	"context"
)

// AttendanceService reconciles attendance records with standing shifts
type AttendanceService interface {
	// MarkAttendance marks a guard present or absent for a site, date and shift
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)

	// UnmarkAttendance deletes a record, returning the guard to unmarked
	UnmarkAttendance(ctx context.Context, id string) error

	// BulkMarkAttendance applies MarkAttendance to each guard in turn; failures do not abort the batch
	BulkMarkAttendance(ctx context.Context, req BulkMarkRequest) (BulkMarkResponse, error)

	// CopyAttendanceFromDate re-creates present records of one date on another
	CopyAttendanceFromDate(ctx context.Context, req CopyAttendanceRequest) (CopyAttendanceResponse, error)

	// ResetAttendance deletes every present record at a site for a date
	ResetAttendance(ctx context.Context, req ResetAttendanceRequest) (ResetAttendanceResponse, error)

	// UpdateAttendanceStatus records a replacement or reassignment with an approval stamp
	UpdateAttendanceStatus(ctx context.Context, req UpdateStatusRequest) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceResponse, error)
}
