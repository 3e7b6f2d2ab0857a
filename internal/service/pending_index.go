package service

import (
	"context"
	"strings"

	"worktracker/internal/model"
)

// PendingRequestSource loads unresolved requests for a batch of document numbers.
type PendingRequestSource interface {
	ListPendingByDocuments(ctx context.Context, documentNumbers []string) ([]model.Request, error)
}

// PendingRequestIndex answers "does document D have a pending request from user U".
type PendingRequestIndex struct {
	source PendingRequestSource
}

func NewPendingRequestIndex(source PendingRequestSource) *PendingRequestIndex {
	return &PendingRequestIndex{source: source}
}

// PendingLookup groups pending requests by document number, keeping store order.
type PendingLookup map[string][]model.Request

// Build fetches the pending requests of all documents in one pass.
func (x *PendingRequestIndex) Build(ctx context.Context, documentNumbers []string) (PendingLookup, error) {
	lookup := make(PendingLookup)
	if len(documentNumbers) == 0 {
		return lookup, nil
	}

	seen := make(map[string]struct{}, len(documentNumbers))
	docs := make([]string, 0, len(documentNumbers))
	for _, d := range documentNumbers {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		docs = append(docs, d)
	}

	requests, err := x.source.ListPendingByDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		lookup[r.WorkDocumentNumber] = append(lookup[r.WorkDocumentNumber], r)
	}
	return lookup, nil
}

// HasPending checks a single document.
func (x *PendingRequestIndex) HasPending(ctx context.Context, documentNumber, sender string) (bool, error) {
	lookup, err := x.Build(ctx, []string{documentNumber})
	if err != nil {
		return false, err
	}
	_, ok := lookup.FirstFrom(documentNumber, sender)
	return ok, nil
}

// FirstFrom returns the first pending, not-done request on the document whose sender
// matches case-insensitively. The first match in store order wins.
func (l PendingLookup) FirstFrom(documentNumber, sender string) (*model.Request, bool) {
	for i := range l[documentNumber] {
		r := &l[documentNumber][i]
		if r.Status == model.RequestPending && !r.IsDone && strings.EqualFold(r.Sender, sender) {
			return r, true
		}
	}
	return nil, false
}
