package service

import (
	"strings"

	"worktracker/internal/model"
)

// AggregateRows merges raw rows that share an aggregation key into one work item.
// The first row seeds the item; later rows only extend the executor and controller
// lists. Output order is the order in which keys were first seen.
func AggregateRows(rows []model.WorkItem) []model.WorkItem {
	index := make(map[model.AggregationKey]int, len(rows))
	out := make([]model.WorkItem, 0, len(rows))

	for _, row := range rows {
		key := row.Key()
		if i, ok := index[key]; ok {
			out[i].Executor = mergeNames(out[i].Executor, row.Executor)
			out[i].Controller = mergeNames(out[i].Controller, row.Controller)
			continue
		}

		item := row
		item.Executor = mergeNames(row.Executor)
		item.Controller = mergeNames(row.Controller)
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}

// mergeNames joins comma separated name lists, trimming entries and dropping exact
// duplicates while keeping first-seen order.
func mergeNames(lists ...string) string {
	seen := make(map[string]struct{})
	names := make([]string, 0, len(lists))
	for _, list := range lists {
		for _, name := range strings.Split(list, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
