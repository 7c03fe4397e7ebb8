package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventPut   EventType = "put"
	EventMerge EventType = "merge"
)

// MergeStrategy records which branch of the merge algorithm ran.
type MergeStrategy string

const (
	StrategyNone   MergeStrategy = ""       // put, or a rejected merge
	StrategyInsert MergeStrategy = "insert" // nothing stored yet, merge degraded to put
	StrategyObject MergeStrategy = "object" // shallow mapping overwrite
	StrategyArray  MergeStrategy = "array"  // upsert by merge key
)

// ChangeEvent describes one mutation attempt on a store.
type ChangeEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Key       string        `json:"key"`
	Strategy  MergeStrategy `json:"strategy,omitempty"`

	// Matched and Appended count sequence elements for StrategyArray.
	Matched  int `json:"matched,omitempty"`
	Appended int `json:"appended,omitempty"`

	Err error `json:"-"`
}

// Hooks defines callbacks for store observability.
// They run after the store lock has been released.
type Hooks struct {
	OnPut   func(*ChangeEvent)
	OnMerge func(*ChangeEvent)
}

// Fire dispatches the event to the matching callback, if any.
func (h Hooks) Fire(e *ChangeEvent) {
	switch e.Type {
	case EventPut:
		if h.OnPut != nil {
			h.OnPut(e)
		}
	case EventMerge:
		if h.OnMerge != nil {
			h.OnMerge(e)
		}
	}
}

// Chain combines several hook sets; callbacks run in order.
func Chain(hooks ...Hooks) Hooks {
	return Hooks{
		OnPut: func(e *ChangeEvent) {
			for _, h := range hooks {
				if h.OnPut != nil {
					h.OnPut(e)
				}
			}
		},
		OnMerge: func(e *ChangeEvent) {
			for _, h := range hooks {
				if h.OnMerge != nil {
					h.OnMerge(e)
				}
			}
		},
	}
}
