// Package notify reacts to inactivity events by appending a record to a
// JSON file. Failures are logged and swallowed; the publisher side must
// never see them.
//
// The sink file is single-writer: the read-modify-write is serialized
// only within one process. When both the api and the report binaries
// run, point them at different notify.file paths.
package notify

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"conectar-users/internal/event"
)

type userRef struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"lastLogin"`
}

type record struct {
	Timestamp string    `json:"timestamp"`
	Message   string    `json:"message"`
	Users     []userRef `json:"users"`
}

type Listener struct {
	file string
	log  *zap.Logger

	mu   sync.Mutex
	done chan struct{}
}

func NewListener(file string, log *zap.Logger) *Listener {
	return &Listener{file: file, log: log, done: make(chan struct{})}
}

// Start consumes events until the bus closes the subscription channel.
func (l *Listener) Start(bus *event.Bus) {
	events := bus.Subscribe(event.TopicUsersInactive)
	go func() {
		defer close(l.done)
		for ev := range events {
			p, ok := ev.Payload.(event.InactiveUsers)
			if !ok {
				l.log.Warn("unexpected payload on users.inactive")
				continue
			}
			l.Handle(p)
		}
	}()
}

// Wait blocks until the consuming goroutine has drained and exited.
func (l *Listener) Wait() { <-l.done }

// Handle appends one notification record to the sink file.
func (l *Listener) Handle(p event.InactiveUsers) {
	emails := make([]string, 0, len(p.Users))
	refs := make([]userRef, 0, len(p.Users))
	for _, u := range p.Users {
		emails = append(emails, u.Email)
		refs = append(refs, userRef{ID: u.ID, Email: u.Email, LastLogin: u.LastLogin})
	}
	rec := record{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   "Inactive users detected: " + strings.Join(emails, ", "),
		Users:     refs,
	}
	l.log.Info(rec.Message, zap.Int("count", len(refs)))

	l.mu.Lock()
	defer l.mu.Unlock()

	var records []record
	if data, err := os.ReadFile(l.file); err == nil {
		// a corrupt or missing file just starts the log over
		_ = json.Unmarshal(data, &records)
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		l.log.Error("marshal notifications", zap.Error(err))
		return
	}
	if err := os.WriteFile(l.file, data, 0o644); err != nil {
		l.log.Error("write notifications file", zap.Error(err))
	}
}
