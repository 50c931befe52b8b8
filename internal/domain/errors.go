package domain

import "errors"

// ErrNoResult is wrapped by collaborators when the backend answered but the
// expected payload field was absent.
var ErrNoResult = errors.New("backend returned no result")

// ErrPublishRecordNotFound is returned by the publish ledger for unknown ids.
var ErrPublishRecordNotFound = errors.New("publish record not found")
