package models

import "errors"

var (
	// ErrModelUnavailable is returned when a classifier cannot be loaded. Fatal at startup.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmptyInput is returned by a classifier asked to score empty normalized text.
	ErrEmptyInput = errors.New("empty input")
	// ErrConfiguration marks invalid label maps, thresholds or model priorities.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrIncompleteAggregates is returned when an annotated batch or its aggregates
	// are missing output for a registered model.
	ErrIncompleteAggregates = errors.New("incomplete aggregates")
	// ErrInvalidRecords marks a request whose records cannot be told apart.
	ErrInvalidRecords = errors.New("invalid records")
)
