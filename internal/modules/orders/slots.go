package orders

import (
	"fmt"
	"strings"
	"time"

	"homechef-delivery/internal/models"
)

const dateLayout = "2006-01-02"

// SlotPolicy decides when an order can be delivered. Items in Category are
// cooked fresh for the morning slot only, so an order for day D has to be
// placed before CutoffHour on day D-1.
type SlotPolicy struct {
	Category   string
	CutoffHour int
	Location   *time.Location
}

func (p SlotPolicy) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p SlotPolicy) hasRestricted(items []models.OrderItem) bool {
	if p.Category == "" {
		return false
	}
	for _, it := range items {
		if strings.EqualFold(it.Category, p.Category) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EarliestRestrictedDate is the first day a morning delivery can still be booked.
func (p SlotPolicy) EarliestRestrictedDate(now time.Time) time.Time {
	now = now.In(p.loc())
	next := startOfDay(now).AddDate(0, 0, 1)
	if now.Hour() >= p.CutoffHour {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Resolve validates the requested date and slot and fills in defaults. An empty
// date means the earliest deliverable day. The returned rejection is non-nil when
// the customer has to pick another date or slot.
func (p SlotPolicy) Resolve(items []models.OrderItem, date, slot string, now time.Time) (time.Time, string, *models.OrderRejection) {
	now = now.In(p.loc())
	today := startOfDay(now)
	restricted := p.hasRestricted(items)

	earliest := today
	if restricted {
		earliest = p.EarliestRestrictedDate(now)
		if slot == "" {
			slot = models.SlotMorning
		}
	}

	reject := func(msg string) *models.OrderRejection {
		return &models.OrderRejection{
			Message:            msg,
			RequiresReschedule: true,
			NextAvailableDate:  earliest.Format(dateLayout),
			Err:                models.ErrRescheduleRequired,
		}
	}

	if restricted && slot != models.SlotMorning {
		return time.Time{}, "", reject(fmt.Sprintf("%s is only delivered in the morning slot", p.Category))
	}

	if date == "" {
		return earliest, slot, nil
	}

	day, err := time.ParseInLocation(dateLayout, date, p.loc())
	if err != nil {
		return time.Time{}, "", reject("Please choose a valid delivery date")
	}
	if day.Before(earliest) {
		if restricted {
			return time.Time{}, "", reject(fmt.Sprintf(
				"Orders with %s must be placed before %02d:00 on the previous day. The next available date is %s.",
				p.Category, p.CutoffHour, earliest.Format(dateLayout)))
		}
		return time.Time{}, "", reject("The selected delivery date has already passed")
	}
	return day, slot, nil
}
