package memory

import (
	"context"
	"sync"

	appoutbox "riderlink/internal/app/outbox"
)

// Outbox keeps event records in memory. Demo mode and tests use it in place
// of the database-backed store; Records exposes what was captured.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

var _ appoutbox.Outbox = (*Outbox)(nil)

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}
