// Package events defines the events published on the eventbus while
// serving mock queries.
package events

import "time"

// GraphQLStart is emitted before a mock operation runs.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
	// Overridden reports whether the request carried a mock override.
	Overridden bool
}

// GraphQLFinish is emitted after a mock operation ran. Errors holds the
// field and request errors of the result. ConfigError is set instead when
// the mocks could not produce a result.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	ConfigError   error
	Duration      time.Duration
}
