package usecase

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
)

// Day is one cell of a calendar view. A padding cell outside the month has a
// zero Date.
type Day struct {
	Date    types.Date           `json:"date"`
	Day     int                  `json:"day"`
	IsToday bool                 `json:"is_today"`
	Items   []*model.ContentItem `json:"items"`
}

// MonthView is a Sunday-first month grid padded to full weeks
type MonthView struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Weeks [][]Day `json:"weeks"`
}

// WeekView is the Sunday to Saturday list used on small screens
type WeekView struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

func validateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return goerr.Wrap(ErrInvalidInput, "month must be 1-12", goerr.V("month", month))
	}
	if year < 1 || year > 9999 {
		return goerr.Wrap(ErrInvalidInput, "year out of range", goerr.V("year", year))
	}
	return nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func groupByDate(items []*model.ContentItem) map[types.Date][]*model.ContentItem {
	byDate := make(map[types.Date][]*model.ContentItem)
	for _, item := range items {
		if item.ScheduledDate.IsZero() {
			continue
		}
		byDate[item.ScheduledDate] = append(byDate[item.ScheduledDate], item)
	}
	return byDate
}

// BuildMonth lays items out on the month grid. month is 1-based.
func BuildMonth(items []*model.ContentItem, year, month int, today types.Date) (*MonthView, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	byDate := groupByDate(items)
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	var cells []Day
	for range int(first.Weekday()) {
		cells = append(cells, Day{Items: []*model.ContentItem{}})
	}
	for d := 1; d <= daysIn(year, month); d++ {
		cells = append(cells, newDay(first.AddDate(0, 0, d-1), today, byDate))
	}
	for len(cells)%7 != 0 {
		cells = append(cells, Day{Items: []*model.ContentItem{}})
	}

	view := &MonthView{Year: year, Month: month}
	for i := 0; i < len(cells); i += 7 {
		view.Weeks = append(view.Weeks, cells[i:i+7])
	}
	return view, nil
}

// BuildWeek lists the Sunday to Saturday week that contains today's day of
// month within the given month, clamped to the month's last day.
func BuildWeek(items []*model.ContentItem, year, month int, today types.Date) (*WeekView, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	day := min(today.Time().Day(), daysIn(year, month))
	ref := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	start := ref.AddDate(0, 0, -int(ref.Weekday()))

	byDate := groupByDate(items)
	view := &WeekView{Year: year, Month: month}
	for i := range 7 {
		view.Days = append(view.Days, newDay(start.AddDate(0, 0, i), today, byDate))
	}
	return view, nil
}

func newDay(t time.Time, today types.Date, byDate map[types.Date][]*model.ContentItem) Day {
	date := types.NewDate(t)
	dayItems := byDate[date]
	if dayItems == nil {
		dayItems = []*model.ContentItem{}
	}
	return Day{
		Date:    date,
		Day:     t.Day(),
		IsToday: date == today,
		Items:   dayItems,
	}
}
