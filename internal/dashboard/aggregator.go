package dashboard

import (
	"sort"
	"time"

	"github.com/siza083/produtive/internal/calendar"
	"github.com/siza083/produtive/internal/subtask"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Input is one snapshot of a user's records. Now is explicit so the same
// snapshot always aggregates to the same result.
type Input struct {
	UserID      string
	Timezone    *string
	DefaultZone string
	Now         time.Time
	Subtasks    []subtask.Subtask
	Tasks       []TaskRecord
}

// urgency partitions the actionable list. Lower ranks sort first.
type urgency int

const (
	urgencyOverdue urgency = iota
	urgencyDueToday
)

type actionable struct {
	rank urgency
	item ListItem
}

// Aggregate derives the dashboard from a snapshot. It does no I/O and keeps
// no state, so concurrent calls are safe.
func Aggregate(in Input) *Result {
	loc := calendar.ResolveLocation(in.Timezone, in.DefaultZone)
	today := calendar.Today(in.Now, loc)
	weekStart, weekEnd := calendar.Week(in.Now, loc)

	tasks := make(map[string]*TaskRecord, len(in.Tasks))
	for i := range in.Tasks {
		tasks[in.Tasks[i].ID] = &in.Tasks[i]
	}

	visible := make([]subtask.Subtask, 0, len(in.Subtasks))
	for _, s := range in.Subtasks {
		if s.DeletedAt != nil {
			continue
		}
		if !tasks[s.TaskID].visibleTo(in.UserID) {
			continue
		}
		visible = append(visible, s)
	}

	res := &Result{
		Timezone:  loc.String(),
		Today:     today,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		List:      []ListItem{},
	}

	var list []actionable
	for _, s := range visible {
		done := s.Status.IsDone()
		due := ""
		if s.DueDate != nil {
			due = *s.DueDate
		}

		if !done && due != "" {
			switch {
			case due == today:
				res.Cards.Today++
				list = append(list, actionable{rank: urgencyDueToday, item: newListItem(s, tasks[s.TaskID])})
			case due < today:
				res.Cards.Overdue++
				list = append(list, actionable{rank: urgencyOverdue, item: newListItem(s, tasks[s.TaskID])})
			}
		}

		if due != "" && due >= weekStart && due <= weekEnd {
			res.Cards.Week++
		}

		if done && s.CompletedAt != nil {
			d := calendar.LocalDate(*s.CompletedAt, loc)
			if d >= weekStart && d <= weekEnd {
				res.Cards.Completed++
			}
		}
	}

	sortActionable(list)
	for _, a := range list {
		res.List = append(res.List, a.item)
	}

	res.Chart = chart(visible, in.Now, loc, today)
	return res
}

// sortActionable orders by rank, then due date, then title under Brazilian
// Portuguese collation. A collator is not safe for concurrent use, so each
// call builds its own.
func sortActionable(list []actionable) {
	coll := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if da, db := *a.item.DueDate, *b.item.DueDate; da != db {
			return da < db
		}
		return coll.CompareString(a.item.Title, b.item.Title) < 0
	})
}

func newListItem(s subtask.Subtask, t *TaskRecord) ListItem {
	item := ListItem{
		Subtask: s,
		Task: TaskRef{
			ID:     t.ID,
			Title:  t.Title,
			TeamID: t.TeamID,
		},
	}
	if t.Team != nil {
		item.Task.Team = &TeamRef{ID: t.Team.ID, Name: t.Team.Name}
	}
	return item
}

// chart covers Monday..Friday. Overdue is only reported up to today; future
// weekdays never show it.
func chart(visible []subtask.Subtask, now time.Time, loc *time.Location, today string) []ChartDay {
	days := calendar.Weekdays(now, loc)
	out := make([]ChartDay, 0, len(days))

	for _, d := range days {
		date := d.Format(calendar.DateLayout)
		day := ChartDay{
			Day:     d.Format("Mon"), // short English weekday; clients localize the label
			Date:    date,
			IsToday: date == today,
			IsPast:  date < today,
		}

		for _, s := range visible {
			if s.Status.IsDone() {
				if s.CompletedAt != nil && calendar.LocalDate(*s.CompletedAt, loc) == date {
					day.Completed++
				}
				continue
			}
			if date <= today && s.DueDate != nil && *s.DueDate == date {
				day.Overdue++
			}
		}

		out = append(out, day)
	}

	return out
}
