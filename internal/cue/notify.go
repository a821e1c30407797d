package cue

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/valentindosimont/pomodoro/internal/timer"
)

// Permission is the user's answer to showing desktop notifications
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps stored text back to a Permission
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// PermissionStore persists the notification answer
type PermissionStore interface {
	LoadPermission() (Permission, error)
	SavePermission(p Permission) error
}

// Permissions tracks the notification permission for one run. The user is
// asked at most once per run.
type Permissions struct {
	mu        sync.Mutex
	store     PermissionStore
	current   Permission
	requested bool
}

// NewPermissions loads the stored answer. A nil store or failed read starts
// from the default state.
func NewPermissions(store PermissionStore) *Permissions {
	p := &Permissions{store: store, current: PermissionDefault}
	if store != nil {
		if stored, err := store.LoadPermission(); err == nil {
			p.current = stored
		}
	}
	return p
}

// Permission returns the current answer
func (p *Permissions) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// NeedsPrompt is true while no answer exists and the user has not been asked
func (p *Permissions) NeedsPrompt() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current == PermissionDefault && !p.requested
}

// Resolve records the user's answer to the prompt
func (p *Permissions) Resolve(granted bool) error {
	p.mu.Lock()
	p.requested = true
	if granted {
		p.current = PermissionGranted
	} else {
		p.current = PermissionDenied
	}
	answer := p.current
	store := p.store
	p.mu.Unlock()

	if store == nil {
		return nil
	}
	if err := store.SavePermission(answer); err != nil {
		return fmt.Errorf("save notification permission: %w", err)
	}
	return nil
}

// Dismiss marks the prompt as shown without storing an answer
func (p *Permissions) Dismiss() {
	p.mu.Lock()
	p.requested = true
	p.mu.Unlock()
}

// Notifier shows a desktop notification
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier sends notifications through the platform notification service
type DesktopNotifier struct {
	Icon string
}

func (n DesktopNotifier) Notify(title, body string) error {
	if err := beeep.Notify(title, body, n.Icon); err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}
	return nil
}

// Context describes the completion a cue is played for
type Context struct {
	FinishedMode timer.Mode
	NextMode     timer.Mode
}

// Message returns the notification title and body for ctx
func Message(ctx Context) (title, body string) {
	if ctx.FinishedMode == timer.Focus {
		kind := "short"
		if ctx.NextMode == timer.LongBreak {
			kind = "long"
		}
		return "Focus Complete!", fmt.Sprintf("Time for a %s break", kind)
	}
	return "Break Complete!", "Ready for another focus session?"
}
