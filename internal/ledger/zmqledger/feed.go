package zmqledger

import (
	"context"
	"fmt"
	"sync"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/gridstake/arcade/internal/arcade/event"
	"github.com/gridstake/arcade/internal/arcade/telemetry"
	"github.com/gridstake/arcade/internal/platform/timeouts"
)

// Feed subscribes to the gateway's publish endpoint and surfaces
// notifications on a channel. It implements ledger.Feed.
type Feed struct {
	sock    *zmq.Socket
	out     chan event.Notification
	done    chan struct{}
	once    sync.Once
	emitter *telemetry.Emitter
}

// NewFeed connects a SUB socket to the publish endpoint, subscribes to
// every game topic, and starts draining. The emitter may be nil.
func NewFeed(addr string, emitter *telemetry.Emitter) (*Feed, error) {
	sock, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return nil, fmt.Errorf("open feed socket: %w", err)
	}
	if err := sock.Connect(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("connect feed %s: %w", addr, err)
	}
	for _, topic := range feedTopics {
		if err := sock.SetSubscribe(topic); err != nil {
			sock.Close()
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	if err := sock.SetRcvtimeo(timeouts.FeedPoll); err != nil {
		sock.Close()
		return nil, fmt.Errorf("configure feed socket: %w", err)
	}

	f := &Feed{
		sock:    sock,
		out:     make(chan event.Notification, 64),
		done:    make(chan struct{}),
		emitter: emitter,
	}
	go f.drain()
	return f, nil
}

// Notifications implements ledger.Feed. The channel closes after
// Close.
func (f *Feed) Notifications() <-chan event.Notification {
	return f.out
}

// Close stops the drain goroutine and releases the socket. Safe to call
// more than once.
func (f *Feed) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

// drain owns the socket: receives, decodes, and forwards until closed.
// Malformed frames are dropped with a diagnostic rather than tearing
// the feed down; the reconciler treats the stream as lossy anyway.
func (f *Feed) drain() {
	defer close(f.out)
	defer f.sock.Close()

	for {
		select {
		case <-f.done:
			return
		default:
		}

		parts, err := f.sock.RecvMessageBytes(0)
		if err != nil {
			// Receive timeouts are the shutdown poll firing.
			if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
				continue
			}
			f.diagnose("feed receive failed", err)
			continue
		}
		if len(parts) < 2 {
			f.diagnose("feed frame missing payload", fmt.Errorf("%d parts", len(parts)))
			continue
		}

		n, err := decodeNotification(string(parts[0]), parts[1], time.Now())
		if err != nil {
			f.diagnose("feed frame dropped", err)
			continue
		}

		select {
		case f.out <- n:
		case <-f.done:
			return
		}
	}
}

func (f *Feed) diagnose(message string, cause error) {
	_ = f.emitter.Emit(context.Background(), telemetry.Event{
		Severity:  telemetry.SeverityWarn,
		Component: "zmqledger",
		Message:   message,
		Attrs:     map[string]string{"cause": cause.Error()},
	})
}
