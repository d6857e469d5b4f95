// Package editor holds what the field, option-set and wizard editors share:
// their lifetime and how they report outcomes to the host.
package editor

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by editors after Close.
var ErrClosed = errors.New("editor is closed")

// Lifetime scopes the requests of one editor. Closing it cancels every
// request bound to it.
type Lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewLifetime starts a lifetime.
func NewLifetime() *Lifetime {
	ctx, cancel := context.WithCancel(context.Background())
	return &Lifetime{ctx: ctx, cancel: cancel}
}

// Bind derives a context that is cancelled when either ctx or the lifetime ends.
func (l *Lifetime) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Closed reports whether Close was called.
func (l *Lifetime) Closed() bool {
	return l.ctx.Err() != nil
}

// Close ends the lifetime.
func (l *Lifetime) Close() {
	l.cancel()
}

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives transient messages.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(Notification) {})

// Recorder keeps notifications in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// All returns every notification received so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}
