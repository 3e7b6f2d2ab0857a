package service

import (
	"github.com/pkg/errors"
)

var (
	ErrRequestNotFound       = errors.New("request not found")
	ErrRequestNotPending     = errors.New("request is no longer pending")
	ErrNotRequestParty       = errors.New("caller is not allowed to change this request")
	ErrInvalidRequestID      = errors.New("invalid request id")
	ErrInvalidStatus         = errors.New("status must be ACCEPTED or DECLINED")
	ErrInvalidRequestType    = errors.New("unknown request type")
	ErrInvalidDate           = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDocumentNumber = errors.New("document number has no work id segment")
)
