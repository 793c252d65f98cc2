// Package stake owns the stake record lifecycle of one signed-in session:
// validation, a single idempotent upsert, read-back verification and the
// dashboard view derived from the stored record.
package stake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/rewards"
)

// DefaultTimeout is the wall-clock budget of one submission or load.
const DefaultTimeout = 8 * time.Second

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateVerifying  State = "verifying"
	StateDone       State = "done"
	StateRejected   State = "rejected"
	StateFailed     State = "failed"
)

// Transition is delivered to observers on every state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	Err  *Error    `json:"-"`
	At   time.Time `json:"at"`
}

// SessionSource is the part of the identity provider the controller needs.
type SessionSource interface {
	CurrentUser() *domain.User
	OnSessionChange(fn func(*domain.User)) (unsubscribe func())
}

// Submission is what the stake form posts. Blank nickname or wallet keep the
// stored values.
type Submission struct {
	Nickname      string `json:"nickname"`
	WalletAddress string `json:"wallet_address"`
	rewards.Counts
}

type Result struct {
	Record   *domain.StakeRecord `json:"record"`
	Rewards  rewards.Rewards     `json:"rewards"`
	Created  bool                `json:"created"`
	Warnings []string            `json:"warnings,omitempty"`
}

type Dashboard struct {
	HasStake bool                `json:"has_stake"`
	Record   *domain.StakeRecord `json:"record,omitempty"`
	Rewards  *rewards.Rewards    `json:"rewards,omitempty"`
	Action   Action              `json:"action,omitempty"`
}

type Options struct {
	Timeout time.Duration
	// LockIdentityFields rejects changes to a nickname or wallet address
	// that is already stored.
	LockIdentityFields bool
	Logger             *slog.Logger
}

// Controller serialises submissions for one session. All state is owned by
// the instance; construct one per signed-in session.
type Controller struct {
	store        repository.StakeStore
	session      SessionSource
	timeout      time.Duration
	lockIdentity bool
	log          *slog.Logger
	now          func() time.Time

	emitMu sync.Mutex // orders transition delivery

	mu          sync.Mutex
	state       State
	ownerID     string
	generation  uint64 // bumped whenever the signed-in owner changes
	record      *domain.StakeRecord
	haveRecord  bool
	current     *attempt
	observers   []func(Transition)
	closed      bool
	unsubscribe func()

	wg sync.WaitGroup
}

type attempt struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timer   *time.Timer
	started time.Time
	done    chan struct{}

	// guarded by Controller.mu
	gen      uint64
	ownerID  string
	finished bool
	result   *Result
	err      *Error
}

func New(store repository.StakeStore, session SessionSource, opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.With("component", "stake")
	}
	c := &Controller{
		store:        store,
		session:      session,
		timeout:      opts.Timeout,
		lockIdentity: opts.LockIdentityFields,
		log:          opts.Logger,
		now:          time.Now,
		state:        StateIdle,
	}
	if u := session.CurrentUser(); u != nil {
		c.ownerID = u.ID
	}
	c.unsubscribe = session.OnSessionChange(c.sessionChanged)
	return c
}

// OnTransition registers an observer. Observers run synchronously and must
// not call Submit.
func (c *Controller) OnTransition(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submitting reports whether an attempt is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Load is the dashboard fetch-on-load path. It never writes.
func (c *Controller) Load(ctx context.Context) (*Dashboard, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, newError(KindUnauthenticated, "sign in to see your stake")
	}
	gen, _, _ := c.snapshot(user.ID)

	lctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec, err := c.store.FetchByOwner(lctx, user.ID)
	if err != nil {
		e := classify("load stake", err)
		c.log.Warn("stake load failed", "user_id", user.ID, "kind", e.Kind, "error", err)
		return nil, e
	}

	c.mu.Lock()
	if gen == c.generation && c.current == nil {
		c.record, c.haveRecord = rec, true
	}
	c.mu.Unlock()

	return dashboardFor(rec), nil
}

func dashboardFor(rec *domain.StakeRecord) *Dashboard {
	if rec == nil {
		return &Dashboard{HasStake: false, Action: ActionOpenStakeForm}
	}
	r := rewards.Compute(rec.Counts())
	return &Dashboard{HasStake: true, Record: rec, Rewards: &r}
}

// Submit runs one attempt: Validating, Submitting, Verifying, Done. A second
// call while an attempt is in flight fails with KindBusy. The attempt runs
// on a context detached from ctx: if the caller goes away the write still
// completes and the controller reconciles its state, but Submit returns a
// KindCanceled error wrapping ctx.Err() immediately. There is no automatic
// retry.
func (c *Controller) Submit(ctx context.Context, sub Submission) (*Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, newError(KindUnauthenticated, "session has ended")
	}
	if c.current != nil {
		c.mu.Unlock()
		submissionsTotal.WithLabelValues(string(KindBusy)).Inc()
		return nil, newError(KindBusy, "a submission is already in progress")
	}
	actx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a := &attempt{ctx: actx, cancel: cancel, started: c.now(), done: make(chan struct{})}
	c.current = a
	c.wg.Add(1)
	c.mu.Unlock()

	a.timer = time.AfterFunc(c.timeout, func() {
		c.finish(a, nil, newError(KindTimeout, fmt.Sprintf("submission did not complete within %s", c.timeout)))
		a.cancel()
	})
	go c.run(a, sub)

	select {
	case <-a.done:
	case <-ctx.Done():
		e := newError(KindCanceled, "request cancelled; the submission continues in the background")
		e.Err = ctx.Err()
		return nil, e
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func (c *Controller) run(a *attempt, sub Submission) {
	defer c.wg.Done()
	defer func() {
		a.timer.Stop()
		a.cancel()
		c.mu.Lock()
		if c.current == a {
			c.current = nil
		}
		c.mu.Unlock()
	}()

	if !c.advance(a, StateValidating) {
		return
	}
	user := c.session.CurrentUser()
	if user == nil {
		c.finish(a, nil, newError(KindUnauthenticated, "sign in to submit a stake"))
		return
	}
	if err := sub.Counts.Validate(); err != nil {
		c.finish(a, nil, newError(KindInvalidStake, err.Error()))
		return
	}
	if sub.Counts.IsZero() {
		c.finish(a, nil, newError(KindEmptyStake, "add at least one NFT to stake"))
		return
	}

	c.mu.Lock()
	a.ownerID = user.ID
	c.mu.Unlock()
	gen, existing, known := c.snapshot(user.ID)
	c.mu.Lock()
	a.gen = gen
	c.mu.Unlock()

	if !known {
		rec, err := c.store.FetchByOwner(a.ctx, user.ID)
		if err != nil {
			c.finish(a, nil, classify("read existing stake", err))
			return
		}
		existing = rec
	}

	rec, lockErr := c.merge(user.ID, sub, existing)
	if lockErr != nil {
		c.finish(a, nil, lockErr)
		return
	}

	if !c.advance(a, StateSubmitting) {
		return
	}
	saved, err := c.store.Upsert(a.ctx, rec)
	if err != nil {
		c.finish(a, nil, classify("save stake", err))
		return
	}
	if saved == nil {
		saved = rec
	}

	res := &Result{Record: saved, Created: existing == nil}
	if !c.advance(a, StateVerifying) {
		// timed out after the store accepted the write; next load reconciles
		c.log.Warn("stake saved after the submission timed out", "user_id", user.ID)
		return
	}

	if c.stale(a) {
		res.Warnings = append(res.Warnings, "your session changed before the saved stake could be verified")
	} else {
		got, err := c.store.FetchByOwner(a.ctx, user.ID)
		switch {
		case err != nil:
			c.log.Warn("stake verification failed", "user_id", user.ID, "error", err)
			res.Warnings = append(res.Warnings, "your stake was saved but could not be read back yet; it will show up on the dashboard shortly")
		case got == nil:
			c.log.Warn("stake not visible after save", "user_id", user.ID)
			res.Warnings = append(res.Warnings, "your stake was saved but is not visible yet; it will show up on the dashboard shortly")
		default:
			res.Record = got
		}
	}
	res.Rewards = rewards.Compute(res.Record.Counts())
	c.finish(a, res, nil)
}

// merge builds the full-replace record and applies the identity-field policy.
func (c *Controller) merge(ownerID string, sub Submission, existing *domain.StakeRecord) (*domain.StakeRecord, *Error) {
	nickname := strings.TrimSpace(sub.Nickname)
	wallet := strings.TrimSpace(sub.WalletAddress)

	if existing != nil {
		var err *Error
		nickname, err = c.lockedField("nickname", nickname, existing.Nickname)
		if err != nil {
			return nil, err
		}
		wallet, err = c.lockedField("wallet address", wallet, existing.WalletAddress)
		if err != nil {
			return nil, err
		}
	}

	rec := &domain.StakeRecord{
		OwnerID:       ownerID,
		Nickname:      nickname,
		WalletAddress: wallet,
		Status:        domain.StakeActive,
	}
	rec.SetCounts(sub.Counts)
	return rec, nil
}

func (c *Controller) lockedField(name, submitted, stored string) (string, *Error) {
	if submitted == "" {
		return stored, nil
	}
	if c.lockIdentity && stored != "" && submitted != stored {
		return "", newError(KindFieldLocked, name+" cannot be changed after your first stake")
	}
	return submitted, nil
}

// snapshot returns the owner generation and the cached record for ownerID,
// resetting the cache if the owner changed without a notification yet.
func (c *Controller) snapshot(ownerID string) (uint64, *domain.StakeRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ownerID != c.ownerID {
		c.resetOwnerLocked(ownerID)
	}
	return c.generation, c.record, c.haveRecord
}

func (c *Controller) stale(a *attempt) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return a.gen != c.generation
}

func (c *Controller) sessionChanged(u *domain.User) {
	id := ""
	if u != nil {
		id = u.ID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.ownerID {
		return
	}
	c.resetOwnerLocked(id)
}

func (c *Controller) resetOwnerLocked(ownerID string) {
	c.ownerID = ownerID
	c.generation++
	c.record = nil
	c.haveRecord = false
}

func (c *Controller) advance(a *attempt, to State) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if a.finished {
		c.mu.Unlock()
		return false
	}
	t, observers := c.transitionLocked(to, nil)
	c.mu.Unlock()

	deliver(observers, t)
	return true
}

func (c *Controller) finish(a *attempt, res *Result, err *Error) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if a.finished {
		c.mu.Unlock()
		return
	}
	a.finished = true
	a.result, a.err = res, err

	to := StateDone
	switch {
	case err == nil:
		if a.gen == c.generation {
			c.record, c.haveRecord = res.Record, true
		}
	case isRejection(err.Kind):
		to = StateRejected
	default:
		to = StateFailed
		c.haveRecord = false
	}
	t, observers := c.transitionLocked(to, err)
	ownerID := a.ownerID
	c.mu.Unlock()

	close(a.done)
	deliver(observers, t)

	outcome := "done"
	if err != nil {
		outcome = string(err.Kind)
	}
	submissionsTotal.WithLabelValues(outcome).Inc()
	submitDuration.WithLabelValues(string(to)).Observe(c.now().Sub(a.started).Seconds())

	switch to {
	case StateDone:
		c.log.Info("stake submitted", "user_id", ownerID, "created", res.Created,
			"pickaxes", res.Rewards.TotalPickaxes, "warnings", len(res.Warnings))
	case StateRejected:
		c.log.Info("stake submission rejected", "user_id", ownerID, "kind", err.Kind)
	default:
		c.log.Error("stake submission failed", "user_id", ownerID, "kind", err.Kind, "error", err)
	}
}

func (c *Controller) transitionLocked(to State, err *Error) (Transition, []func(Transition)) {
	t := Transition{From: c.state, To: to, Err: err, At: c.now()}
	c.state = to
	observers := make([]func(Transition), len(c.observers))
	copy(observers, c.observers)
	return t, observers
}

func deliver(observers []func(Transition), t Transition) {
	for _, fn := range observers {
		fn(t)
	}
}

func isRejection(k Kind) bool {
	switch k {
	case KindUnauthenticated, KindEmptyStake, KindInvalidStake, KindFieldLocked:
		return true
	}
	return false
}

// Close detaches from the session and waits for an in-flight attempt to
// finish writing.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.wg.Wait()
}
