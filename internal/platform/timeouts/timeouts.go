// Package timeouts defines shared timeout constants used across the
// client runtime. Centralizing these values prevents drift between the
// transport and the runtime and makes the durations discoverable.
package timeouts

import "time"

// GatewayQuery caps a single gateway query round trip when the caller's
// context carries no deadline. Submissions are exempt: a transaction
// keeps confirming whether or not we watch it.
const GatewayQuery = 10 * time.Second

// FeedPoll bounds each blocking feed receive so the drain goroutine can
// notice a shutdown request.
const FeedPoll = 250 * time.Millisecond

// Refresh is the default interval between authoritative re-queries of
// tracked sessions.
const Refresh = 10 * time.Second
