package service

import (
	"context"

	"worktracker/internal/model"
)

// Highlighter marks work items that have a pending request from the viewing user.
type Highlighter struct {
	index *PendingRequestIndex
}

func NewHighlighter(index *PendingRequestIndex) *Highlighter {
	return &Highlighter{index: index}
}

// HighlightRows annotates items in place. Items without a matching request are left untouched.
func (h *Highlighter) HighlightRows(ctx context.Context, items []model.WorkItem, currentUserName string) error {
	if len(items) == 0 || currentUserName == "" {
		return nil
	}

	docs := make([]string, 0, len(items))
	for _, item := range items {
		docs = append(docs, item.DocumentNumber)
	}
	lookup, err := h.index.Build(ctx, docs)
	if err != nil {
		return err
	}

	for i := range items {
		req, ok := lookup.FirstFrom(items[i].DocumentNumber, currentUserName)
		if !ok {
			continue
		}
		switch {
		case req.RequestType == model.RequestTypeFact:
			items[i].HighlightClass = model.HighlightFact
		case model.IsCorrection(req.RequestType):
			items[i].HighlightClass = model.HighlightCorrection
		}
		items[i].PendingRequestID = req.ID.String()
		items[i].PendingRequestType = req.RequestType
		items[i].PendingProposedDate = req.ProposedDate
		items[i].PendingNote = req.Note
		items[i].PendingReceiver = req.Receiver
	}
	return nil
}
