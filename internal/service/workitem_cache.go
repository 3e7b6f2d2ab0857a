package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"worktracker/internal/model"

	"github.com/sirupsen/logrus"
)

// DefaultWorkItemTTL is how long a division snapshot is served before it is re-read.
const DefaultWorkItemTTL = 30 * time.Minute

// WorkItemSource is the store behind the cache.
type WorkItemSource interface {
	OpenRowsByDivision(ctx context.Context, divisionID int) ([]model.WorkItem, error)
	DivisionName(ctx context.Context, divisionID int) (string, bool, error)
	ExecutorNames(ctx context.Context, divisionID int) ([]string, error)
	ApproverNames(ctx context.Context, divisionID int) ([]string, error)
}

// CacheInvalidator drops everything cached for a division.
type CacheInvalidator interface {
	Invalidate(divisionID int, reason string)
}

type rowsEntry struct {
	rows     []model.WorkItem
	storedAt time.Time
}

type namesEntry struct {
	names    []string
	storedAt time.Time
}

// WorkItemCache is a read-through cache of raw work-item rows and lookup lists keyed by
// division. Concurrent misses for one division may both hit the store; the last write
// wins. A load that started before an invalidation of its division is returned to its
// caller but never stored.
type WorkItemCache struct {
	source WorkItemSource
	ttl    time.Duration
	now    func() time.Time
	log    logrus.FieldLogger

	mu        sync.RWMutex
	rows      map[int]rowsEntry
	executors map[int]namesEntry
	approvers map[int]namesEntry
	// generation is bumped on every invalidation of a division
	generation map[int]uint64
}

func NewWorkItemCache(source WorkItemSource, ttl time.Duration, log logrus.FieldLogger) *WorkItemCache {
	if ttl <= 0 {
		ttl = DefaultWorkItemTTL
	}
	return &WorkItemCache{
		source:     source,
		ttl:        ttl,
		now:        time.Now,
		log:        log,
		rows:       make(map[int]rowsEntry),
		executors:  make(map[int]namesEntry),
		approvers:  make(map[int]namesEntry),
		generation: make(map[int]uint64),
	}
}

// SetClock replaces the time source used for expiry.
func (c *WorkItemCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// GetForDivisions returns the aggregated work items of every requested division.
// Divisions are read in ascending id order so the output order is stable.
func (c *WorkItemCache) GetForDivisions(ctx context.Context, divisionIDs []int) ([]model.WorkItem, error) {
	ids := distinctSorted(divisionIDs)

	var raw []model.WorkItem
	for _, id := range ids {
		rows, err := c.divisionRows(ctx, id)
		if err != nil {
			return nil, err
		}
		raw = append(raw, rows...)
	}
	return AggregateRows(raw), nil
}

func (c *WorkItemCache) divisionRows(ctx context.Context, divisionID int) ([]model.WorkItem, error) {
	c.mu.RLock()
	entry, ok := c.rows[divisionID]
	fresh := ok && c.now().Sub(entry.storedAt) < c.ttl
	gen := c.generation[divisionID]
	c.mu.RUnlock()

	recordCacheRequest(cacheRows, fresh)
	if fresh {
		return entry.rows, nil
	}

	rows, err := c.source.OpenRowsByDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work items for division %d: %w", divisionID, err)
	}
	c.log.WithFields(logrus.Fields{"division_id": divisionID, "rows": len(rows)}).Debug("work item cache populated")

	c.mu.Lock()
	if c.generation[divisionID] == gen {
		c.rows[divisionID] = rowsEntry{rows: rows, storedAt: c.now()}
	}
	c.mu.Unlock()
	return rows, nil
}

// ClearCache drops the raw rows and the executor/approver lists cached for the division.
func (c *WorkItemCache) ClearCache(divisionID int) {
	c.Invalidate(divisionID, "manual")
}

func (c *WorkItemCache) Invalidate(divisionID int, reason string) {
	c.mu.Lock()
	delete(c.rows, divisionID)
	delete(c.executors, divisionID)
	delete(c.approvers, divisionID)
	// the all-divisions lists include this division too
	delete(c.executors, 0)
	delete(c.approvers, 0)
	c.generation[divisionID]++
	if divisionID != 0 {
		c.generation[0]++
	}
	c.mu.Unlock()

	recordCacheInvalidate(reason)
	c.log.WithFields(logrus.Fields{"division_id": divisionID, "reason": reason}).Debug("work item cache cleared")
}

// GetDivisionName falls back to "Division #<id>" when the division does not exist.
func (c *WorkItemCache) GetDivisionName(ctx context.Context, divisionID int) (string, error) {
	name, ok, err := c.source.DivisionName(ctx, divisionID)
	if err != nil {
		return "", err
	}
	if !ok || name == "" {
		return fmt.Sprintf("Division #%d", divisionID), nil
	}
	return name, nil
}

// GetExecutors lists distinct executor names; divisionID 0 covers all divisions.
func (c *WorkItemCache) GetExecutors(ctx context.Context, divisionID int) ([]string, error) {
	return c.names(ctx, cacheExecutors, c.executors, divisionID, c.source.ExecutorNames)
}

// GetApprovers lists distinct approver names; divisionID 0 covers all divisions.
func (c *WorkItemCache) GetApprovers(ctx context.Context, divisionID int) ([]string, error) {
	return c.names(ctx, cacheApprovers, c.approvers, divisionID, c.source.ApproverNames)
}

func (c *WorkItemCache) names(
	ctx context.Context,
	cache string,
	store map[int]namesEntry,
	divisionID int,
	load func(context.Context, int) ([]string, error),
) ([]string, error) {
	c.mu.RLock()
	entry, ok := store[divisionID]
	fresh := ok && c.now().Sub(entry.storedAt) < c.ttl
	gen := c.generation[divisionID]
	c.mu.RUnlock()

	recordCacheRequest(cache, fresh)
	if fresh {
		return slices.Clone(entry.names), nil
	}

	names, err := load(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	names = distinctSortedStrings(names)

	c.mu.Lock()
	if c.generation[divisionID] == gen {
		store[divisionID] = namesEntry{names: names, storedAt: c.now()}
	}
	c.mu.Unlock()
	return slices.Clone(names), nil
}

func distinctSorted(ids []int) []int {
	out := slices.Clone(ids)
	sort.Ints(out)
	return slices.Compact(out)
}

func distinctSortedStrings(names []string) []string {
	out := slices.Clone(names)
	sort.Strings(out)
	return slices.Compact(out)
}
