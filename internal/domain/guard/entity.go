package guard

import (
	"sort"
	"strings"
	"time"

	"github.com/guardline/roster-backend/internal/pkg/utils"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var StatusValues = []string{string(StatusActive), string(StatusInactive)}

type Type string

const (
	TypePermanent Type = "permanent"
	TypeContract  Type = "contract"
)

var TypeValues = []string{string(TypePermanent), string(TypeContract)}

type Guard struct {
	ID          string
	Name        string
	BadgeNumber string
	Status      Status
	Type        Type
	PayRate     decimal.Decimal // monthly
	Phone       *string
	Email       *string
	IDNumber    *string
	Address     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (g Guard) IsActive() bool {
	return g.Status == StatusActive
}

// ShiftRate is the pay for a single shift in the month containing at.
func (g Guard) ShiftRate(at time.Time) decimal.Decimal {
	days := decimal.NewFromInt(int64(utils.DaysInMonth(at)))
	return g.PayRate.Div(days)
}

// SortForSelection orders guards for a picker: selected guards first, then by name.
func SortForSelection(guards []Guard, selectedIDs []string) []Guard {
	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	out := make([]Guard, len(guards))
	copy(out, guards)
	sort.SliceStable(out, func(i, j int) bool {
		_, si := selected[out[i].ID]
		_, sj := selected[out[j].ID]
		if si != sj {
			return si
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
