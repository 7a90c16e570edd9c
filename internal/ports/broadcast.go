package ports

import "github.com/focushive/hivetimer/internal/domain"

// Broadcaster delivers timer events to the channels named by the event's
// destination list. Publish must be safe to call concurrently and must not
// block on slow subscribers; the orchestrator calls it after the state
// mutation has committed, while still holding the per-user lock, so events
// enqueue in commit order.
type Broadcaster interface {
	Publish(event domain.TimerEvent)
}
