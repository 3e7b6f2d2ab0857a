package service

import (
	"strings"
	"time"

	"worktracker/internal/model"
)

// WorkItemFilter holds the optional list predicates. Zero values mean "no constraint".
type WorkItemFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Executor  string
	Approver  string
	Search    string
}

// ApplyFilters keeps the items matching every supplied predicate, in input order.
// Date bounds are inclusive, compared by calendar day against the effective date;
// an item without an effective date never satisfies a bound.
func ApplyFilters(items []model.WorkItem, f WorkItemFilter) []model.WorkItem {
	executor := strings.ToLower(strings.TrimSpace(f.Executor))
	approver := strings.ToLower(strings.TrimSpace(f.Approver))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var start, end time.Time
	if f.StartDate != nil {
		start = dayOf(*f.StartDate)
	}
	if f.EndDate != nil {
		end = dayOf(*f.EndDate)
	}

	out := make([]model.WorkItem, 0, len(items))
	for _, item := range items {
		if executor != "" && !containsFold(item.Executor, executor) {
			continue
		}
		if approver != "" && !containsFold(item.Approver, approver) {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		if f.StartDate != nil || f.EndDate != nil {
			eff := item.EffectiveDate()
			if eff == nil {
				continue
			}
			d := dayOf(*eff)
			if f.StartDate != nil && d.Before(start) {
				continue
			}
			if f.EndDate != nil && d.After(end) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch(item model.WorkItem, needle string) bool {
	return containsFold(item.DocumentName, needle) ||
		containsFold(item.WorkName, needle) ||
		containsFold(item.Executor, needle) ||
		containsFold(item.Controller, needle) ||
		containsFold(item.Approver, needle)
}

// containsFold expects needle already lower-cased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
