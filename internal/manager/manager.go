// Package manager is the single authority over the local categories:
// export, import (merge or overwrite), validation, summary, auto-backup and
// restore, plus the content vault.
package manager

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/schedule"
	"github.com/hpungsan/clarity/internal/store"
)

// Bundle metadata written on every export.
const (
	Version = "1.0.0"
	AppName = "Clarity Content Studio"
)

// ReloadDelay is how long after a successful import or clear subscribers
// are told that categories changed.
const ReloadDelay = 1500 * time.Millisecond

// maxCASAttempts bounds read-modify-write retries on CONFLICT.
const maxCASAttempts = 5

// Notifier receives user-facing outcome messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Confirmer gates destructive operations.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// ChangeEvent tells subscribers which categories changed.
type ChangeEvent struct {
	Reason string   `json:"reason"`
	Keys   []string `json:"keys"`
}

// Options configures a Manager. Store is required.
type Options struct {
	Store     store.Store
	Config    *config.Config
	BaseDir   string // exports land in BaseDir/exports
	Logger    *zap.Logger
	Notifier  Notifier
	Scheduler schedule.Scheduler // nil delivers change events synchronously
	Now       func() time.Time
}

// Manager serialises its mutating operations; reads are lock-free.
type Manager struct {
	store     store.Store
	cfg       *config.Config
	baseDir   string
	logger    *zap.Logger
	notifier  Notifier
	scheduler schedule.Scheduler
	now       func() time.Time

	mu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(ChangeEvent)
	nextSub int
}

// New constructs a Manager.
func New(opts Options) *Manager {
	m := &Manager{
		store:     opts.Store,
		cfg:       opts.Config,
		baseDir:   opts.BaseDir,
		logger:    opts.Logger,
		notifier:  opts.Notifier,
		scheduler: opts.Scheduler,
		now:       opts.Now,
		subs:      make(map[int]func(ChangeEvent)),
	}
	if m.cfg == nil {
		m.cfg = config.DefaultConfig()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.notifier == nil {
		m.notifier = LogNotifier{Logger: m.logger}
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Subscribe registers fn for change events and returns an unsubscribe func.
func (m *Manager) Subscribe(fn func(ChangeEvent)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

// scheduleChange delivers ev to subscribers after ReloadDelay.
func (m *Manager) scheduleChange(ev ChangeEvent) {
	if m.scheduler == nil {
		m.emit(ev)
		return
	}
	m.scheduler.After(ReloadDelay, func(context.Context) { m.emit(ev) })
}

func (m *Manager) emit(ev ChangeEvent) {
	m.subsMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids) // subscription order
	fns := make([]func(ChangeEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// LogNotifier forwards notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Success(msg string) { n.Logger.Info(msg) }
func (n LogNotifier) Error(msg string) { n.Logger.Warn(msg) }
