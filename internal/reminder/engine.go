package reminder

import (
	"context"
	"sync"
	"time"

	"taskdesk-backend/internal/tasks"
)

// Source supplies the task snapshot an engine evaluates each tick.
type Source interface {
	Tasks() []tasks.Task
}

type Options struct {
	CheckInterval   time.Duration
	RefreshInterval time.Duration
	RearmAfter      time.Duration
	UpcomingWindow  time.Duration

	// Refresh resyncs the task snapshot from the authoritative store. Runs
	// on its own coarser cadence than the reminder check. Optional.
	Refresh func(ctx context.Context)
}

func (o *Options) fill() {
	if o.CheckInterval <= 0 {
		o.CheckInterval = 10 * time.Second
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = time.Minute
	}
	if o.RearmAfter <= 0 {
		o.RearmAfter = time.Hour
	}
	if o.UpcomingWindow <= 0 {
		o.UpcomingWindow = time.Hour
	}
}

// Engine owns one user's reminder state: the evaluator's reminded set and
// the notification store. Ticks are serialized under mu so the membership
// check and insertion are one atomic step per task per tick; overlapping
// timers cannot double-fire.
type Engine struct {
	opts     Options
	source   Source
	notifier Notifier

	mu         sync.Mutex
	eval       *Evaluator
	store      *NotificationStore
	permission Permission

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewEngine(source Source, notifier Notifier, opts Options) *Engine {
	opts.fill()
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Engine{
		opts:       opts,
		source:     source,
		notifier:   notifier,
		eval:       NewEvaluator(opts.RearmAfter),
		store:      NewNotificationStore(),
		permission: PermissionDefault,
	}
}

// Start requests notification permission once, runs an immediate check,
// then ticks until Stop or ctx cancellation. Reminder checks and snapshot
// refreshes run on independent cadences. Teardown clears both tickers; no
// orphaned timers keep firing.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.permission == PermissionDefault {
		e.permission = e.notifier.RequestPermission()
	}
	e.mu.Unlock()

	e.stop = make(chan struct{})
	e.done = make(chan struct{})

	go func() {
		defer close(e.done)

		e.Tick(time.Now())

		ticker := time.NewTicker(e.opts.CheckInterval)
		defer ticker.Stop()
		refresh := time.NewTicker(e.opts.RefreshInterval)
		defer refresh.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-e.stop:
				return
			case now := <-ticker.C:
				e.Tick(now)
			case <-refresh.C:
				if e.opts.Refresh != nil {
					e.opts.Refresh(ctx)
				}
			}
		}
	}()
}

func (e *Engine) Stop() {
	if e.stop == nil {
		return
	}
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
}

// Tick runs one re-arm pass and one evaluation against the current
// snapshot. Returns the notifications emitted this tick.
func (e *Engine) Tick(now time.Time) []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.source.Tasks()
	e.eval.Rearm(list, now)
	fired := e.eval.Evaluate(list, now, e.store.HasLive)
	e.store.Append(fired...)

	if e.permission == PermissionGranted {
		for _, n := range fired {
			e.notifier.Notify("Task Reminder: "+n.Title, n.Message)
		}
	}
	return fired
}

// Open is the dropdown-open operation: marks everything read and returns
// the list in stored order.
func (e *Engine) Open() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.MarkAllRead()
}

// Dismiss removes one notification and re-arms its task.
func (e *Engine) Dismiss(notificationID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	taskID, ok := e.store.Dismiss(notificationID)
	if ok {
		e.eval.Dismissed(taskID)
	}
	return ok
}

// ClearAll empties the notification list without touching the reminded
// set: clearing is not a re-arm.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.ClearAll()
}

func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.UnreadCount()
}

func (e *Engine) HasUpcoming(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return HasUpcoming(e.source.Tasks(), now, e.opts.UpcomingWindow)
}

func (e *Engine) Notifications() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.All()
}
