package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// ControllerDeps holds the collaborators of a SessionController. Only
// Scheduler is required; missing collaborators turn their effects into no-ops.
type ControllerDeps struct {
	Scheduler   ports.Scheduler
	Player      ports.CuePlayer
	Notifier    ports.Notifier
	Journal     ports.Journal
	GitDetector ports.GitDetector
	Logger      hclog.Logger
	WorkingDir  string
}

type request struct {
	cmd   domain.Command
	reply chan domain.Snapshot
}

// SessionController owns the single Session and serializes every command
// through one loop goroutine. Input surfaces (the TUI, the MCP server) and
// the tick source only ever send commands.
type SessionController struct {
	deps   ControllerDeps
	logger hclog.Logger

	commands chan request
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	session domain.Session
	seq     uint64
	subs    map[int]chan domain.Snapshot
	nextSub int

	// Owned by the loop goroutine.
	ticker     ports.TickerHandle
	generation uint64
	branch     string

	background sync.WaitGroup
}

var (
	_ ports.SessionDriver    = (*SessionController)(nil)
	_ ports.ActivityProvider = (*SessionController)(nil)
)

// NewSessionController creates a controller around a fresh session.
func NewSessionController(cfg domain.SessionConfig, deps ControllerDeps) *SessionController {
	logger := deps.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SessionController{
		deps:     deps,
		logger:   logger.Named("controller"),
		commands: make(chan request),
		done:     make(chan struct{}),
		session:  domain.NewSession(cfg),
		subs:     make(map[int]chan domain.Snapshot),
	}
}

// Run processes commands until ctx is cancelled. It releases the tick source
// and waits for in-flight cues and notifications before returning.
func (c *SessionController) Run(ctx context.Context) error {
	c.detectBranch(ctx)
	c.logger.Debug("controller started", "session", c.SessionID(), "branch", c.branch)

	defer func() {
		c.releaseTicker()
		c.stopOnce.Do(func() { close(c.done) })
		c.background.Wait()
		c.closeSubscribers()
		c.logger.Debug("controller stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-c.commands:
			snap := c.process(ctx, req.cmd)
			if req.reply != nil {
				req.reply <- snap
			}
		}
	}
}

// Dispatch sends cmd to the loop and waits for the resulting snapshot.
func (c *SessionController) Dispatch(ctx context.Context, cmd domain.Command) (domain.Snapshot, error) {
	reply := make(chan domain.Snapshot, 1)
	select {
	case c.commands <- request{cmd: cmd, reply: reply}:
	case <-c.done:
		return domain.Snapshot{}, domain.ErrControllerStopped
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	}
}

// Snapshot returns the latest state.
func (c *SessionController) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := domain.NewSnapshot(c.session)
	snap.Seq = c.seq
	return snap
}

// SessionID returns the id of the owned session.
func (c *SessionController) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.ID
}

// Subscribe registers for snapshots published after each command. Slow
// subscribers only ever see the newest snapshot. The channel is closed when
// the controller stops or cancel is called.
func (c *SessionController) Subscribe() (<-chan domain.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan domain.Snapshot, 1)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// RecentActivity implements ports.ActivityProvider.
func (c *SessionController) RecentActivity(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	if c.deps.Journal == nil {
		return nil, nil
	}
	return c.deps.Journal.Recent(ctx, limit)
}

// ActivitySummary aggregates the journal of the owned session.
func (c *SessionController) ActivitySummary(ctx context.Context) (*ports.JournalSummary, error) {
	id := c.SessionID()
	if c.deps.Journal == nil {
		return &ports.JournalSummary{SessionID: id}, nil
	}
	summary, err := c.deps.Journal.Summary(ctx, id)
	if err != nil {
		return nil, err
	}

	done, err := c.deps.Journal.ByKind(ctx, domain.EventTaskCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	for _, e := range done {
		if e.SessionID == id {
			summary.CompletedTasks = append(summary.CompletedTasks, e.Detail)
		}
	}
	return summary, nil
}

func (c *SessionController) process(ctx context.Context, cmd domain.Command) domain.Snapshot {
	if tick, ok := cmd.(domain.Tick); ok && (c.ticker == nil || tick.Generation != c.generation) {
		c.logger.Trace("dropping stale tick", "generation", tick.Generation, "current", c.generation)
		return c.Snapshot()
	}

	c.mu.Lock()
	next, effects := domain.Reduce(c.session, cmd)
	c.session = next
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	if _, ok := cmd.(domain.Tick); !ok {
		c.logger.Debug("command", "name", domain.CommandName(cmd), "remaining", next.RemainingSeconds, "running", next.Running)
	}

	for _, effect := range effects {
		c.runEffect(ctx, next, effect)
	}

	snap := domain.NewSnapshot(next)
	snap.Seq = seq
	c.publish(snap)
	return snap
}

func (c *SessionController) runEffect(ctx context.Context, s domain.Session, effect domain.Effect) {
	switch e := effect.(type) {
	case domain.PlayCue:
		if c.deps.Player == nil {
			return
		}
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			if err := c.deps.Player.Play(ctx, e.Cue); err != nil {
				c.logger.Warn("cue playback failed", "cue", e.Cue, "error", err)
			}
		}()

	case domain.Notify:
		if c.deps.Notifier == nil {
			return
		}
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			if err := c.deps.Notifier.Notify(e.Message); err != nil {
				c.logger.Warn("notification failed", "error", err)
			}
		}()

	case domain.StartTicker:
		c.acquireTicker()

	case domain.StopTicker:
		c.releaseTicker()

	case domain.Record:
		if c.deps.Journal == nil {
			return
		}
		entry := ports.JournalEntry{
			ID:         domain.NewEventID(),
			SessionID:  s.ID,
			Kind:       e.Kind,
			Phase:      e.Phase,
			Detail:     e.Detail,
			GitBranch:  c.branch,
			RecordedAt: time.Now(),
		}
		if err := c.deps.Journal.Append(ctx, entry); err != nil {
			c.logger.Warn("journal append failed", "kind", e.Kind, "error", err)
		}

	default:
		c.logger.Error("unknown effect", "effect", domain.EffectName(effect))
	}
}

// acquireTicker replaces any live registration with a fresh one. Bumping the
// generation makes ticks from older registrations stale.
func (c *SessionController) acquireTicker() {
	c.releaseTicker()
	if c.deps.Scheduler == nil {
		return
	}
	gen := c.generation
	c.ticker = c.deps.Scheduler.Every(domain.TickInterval, func() {
		c.enqueue(domain.Tick{Generation: gen})
	})
}

func (c *SessionController) releaseTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.generation++
}

// enqueue sends cmd without waiting for a reply.
func (c *SessionController) enqueue(cmd domain.Command) {
	select {
	case c.commands <- request{cmd: cmd}:
	case <-c.done:
	}
}

func (c *SessionController) publish(snap domain.Snapshot) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Replace the unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *SessionController) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *SessionController) detectBranch(ctx context.Context) {
	if c.deps.GitDetector == nil || !c.deps.GitDetector.IsAvailable() {
		return
	}
	info, err := c.deps.GitDetector.Detect(ctx, c.deps.WorkingDir)
	if err != nil {
		c.logger.Debug("git context unavailable", "error", err)
		return
	}
	if info != nil {
		c.branch = info.Branch
	}
}
