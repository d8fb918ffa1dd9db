package shift

import "time"

type ShiftType string

const (
	ShiftTypeDay   ShiftType = "day"
	ShiftTypeNight ShiftType = "night"
)

var ShiftTypeValues = []string{
	string(ShiftTypeDay),
	string(ShiftTypeNight),
}

func (t ShiftType) IsValid() bool {
	return t == ShiftTypeDay || t == ShiftTypeNight
}

// Shift is a standing guard-to-site binding for one shift type, independent of any date.
type Shift struct {
	ID        string
	SiteID    string
	GuardID   string
	Type      ShiftType
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	GuardName *string
	SiteName  *string
}
