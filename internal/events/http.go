package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the GraphQL endpoint receives a request.
// The event context carries the request id.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted once the response status is known.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
