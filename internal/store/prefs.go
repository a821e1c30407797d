package store

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/valentindosimont/pomodoro/internal/cue"
	"github.com/valentindosimont/pomodoro/internal/timer"
)

// Preference keys. Durations are stored as decimal minute counts.
const (
	KeyFocusDuration      = "pomodoro-focus-duration"
	KeyShortBreakDuration = "pomodoro-short-break-duration"
	KeyLongBreakDuration  = "pomodoro-long-break-duration"
	KeyNotifyPermission   = "notification-permission"
	KeyCue                = "pomodoro-cue"
	KeyTaskType           = "pomodoro-task-type"
	KeyTheme              = "pomodoro-theme"
)

// ErrPersistenceUnavailable is returned when the backing store failed and
// values are only kept in memory for the rest of the session.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// DurationKey returns the preference key holding the length of mode
func DurationKey(m timer.Mode) string {
	switch m {
	case timer.ShortBreak:
		return KeyShortBreakDuration
	case timer.LongBreak:
		return KeyLongBreakDuration
	default:
		return KeyFocusDuration
	}
}

// KV is a string key/value store
type KV interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Close() error
}

// MemoryKV keeps values for the lifetime of the process
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Close() error { return nil }

// Prefs reads and writes typed preferences on top of a KV. When the KV
// fails to write, Prefs switches to an in-memory KV for the session.
type Prefs struct {
	mu       sync.Mutex
	kv       KV
	degraded bool
}

func NewPrefs(kv KV) *Prefs {
	if kv == nil {
		kv = NewMemoryKV()
	}
	return &Prefs{kv: kv}
}

// Degraded reports whether writes have fallen back to memory
func (p *Prefs) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

func (p *Prefs) get(key string) (string, bool, error) {
	p.mu.Lock()
	kv := p.kv
	p.mu.Unlock()
	return kv.Get(key)
}

func (p *Prefs) put(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.kv.Put(key, value)
	if err == nil {
		return nil
	}
	if !p.degraded {
		_ = p.kv.Close()
		p.kv = NewMemoryKV()
		p.degraded = true
	}
	_ = p.kv.Put(key, value)
	return fmt.Errorf("%w: put %s: %v", ErrPersistenceUnavailable, key, err)
}

// LoadDurations returns the stored durations. Missing, unparseable or
// out-of-range values fall back per mode to the defaults. A read failure
// returns the defaults together with the error.
func (p *Prefs) LoadDurations() (timer.Durations, error) {
	defaults := timer.DefaultDurations()
	d := defaults
	for _, m := range timer.Modes {
		raw, ok, err := p.get(DurationKey(m))
		if err != nil {
			return defaults, fmt.Errorf("%w: load durations: %v", ErrPersistenceUnavailable, err)
		}
		if !ok {
			continue
		}
		minutes, err := timer.ParseDuration(m, raw)
		if err != nil {
			continue
		}
		d = d.With(m, minutes)
	}
	return d, nil
}

// SaveDuration stores the length of mode
func (p *Prefs) SaveDuration(m timer.Mode, minutes int) error {
	return p.put(DurationKey(m), strconv.Itoa(minutes))
}

// LoadPermission implements cue.PermissionStore
func (p *Prefs) LoadPermission() (cue.Permission, error) {
	raw, _, err := p.get(KeyNotifyPermission)
	if err != nil {
		return cue.PermissionDefault, fmt.Errorf("load notification permission: %w", err)
	}
	return cue.ParsePermission(raw), nil
}

// SavePermission implements cue.PermissionStore
func (p *Prefs) SavePermission(perm cue.Permission) error {
	return p.put(KeyNotifyPermission, string(perm))
}

// LoadString returns the value at key or fallback when it is absent
func (p *Prefs) LoadString(key, fallback string) string {
	raw, ok, err := p.get(key)
	if err != nil || !ok || raw == "" {
		return fallback
	}
	return raw
}

func (p *Prefs) SaveString(key, value string) error {
	return p.put(key, value)
}

// Close releases the backing store
func (p *Prefs) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kv.Close()
}
