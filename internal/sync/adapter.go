package sync

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/events"
	"github.com/hungduong/loveanniversary/internal/logging"
	"github.com/hungduong/loveanniversary/internal/models"
	"github.com/hungduong/loveanniversary/internal/store"
)

// State represents the adapter's connection state.
type State string

const (
	StateInitializing State = "initializing"
	StateOnline       State = "online"
	StateOffline      State = "offline"
)

// Config holds the adapter's timing parameters.
type Config struct {
	FetchTimeout     time.Duration // per remote call
	RetryAttempts    int           // initial connection attempts
	RetryBackoff     time.Duration // fixed delay between attempts
	AutoSaveInterval time.Duration // offline local re-save cadence
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:     5 * time.Second,
		RetryAttempts:    3,
		RetryBackoff:     2 * time.Second,
		AutoSaveInterval: 10 * time.Second,
	}
}

// Adapter connects the local store to a remote document store. It mirrors
// the store's mutation surface: every mutation lands locally first, then
// writes through to the remote copy when online. Remote failures never
// fail the caller's mutation; the adapter degrades to offline and keeps
// serving local data.
type Adapter struct {
	store    *store.Store
	remote   DocumentStore
	bus      *events.Bus
	log      *logging.Logger
	cfg      Config
	coupleID string

	mu         sync.RWMutex
	state      State
	connecting bool
	lastSync   time.Time
	lastErr    error
	sub        Subscription

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates an adapter for the given couple id. Zero config fields take
// their defaults.
func New(st *store.Store, remote DocumentStore, bus *events.Bus, coupleID string, cfg Config) *Adapter {
	def := DefaultConfig()
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = def.RetryAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = def.AutoSaveInterval
	}

	return &Adapter{
		store:    st,
		remote:   remote,
		bus:      bus,
		log:      logging.Get().With("sync"),
		cfg:      cfg,
		coupleID: coupleID,
		state:    StateInitializing,
		lastSync: st.LastSync(),
		stopCh:   make(chan struct{}),
	}
}

// Start attempts the initial remote connection and launches the offline
// auto-save loop. It blocks until the connection attempt resolves to
// online or offline, then announces the outcome with a syncReady event.
func (a *Adapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.autoSaveLoop(ctx)

	a.connect(ctx)
}

// connect runs the bounded fetch-retry loop and settles the adapter into
// online or offline, announcing the result. A nil remote settles offline
// immediately; local-only deployments run the store without a backend.
// Only one connect runs at a time: a caller arriving while a handshake is
// in flight returns immediately and that handshake's outcome stands.
func (a *Adapter) connect(ctx context.Context) {
	a.mu.Lock()
	if a.connecting {
		a.mu.Unlock()
		return
	}
	a.connecting = true
	a.state = StateInitializing
	a.lastErr = nil
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.connecting = false
		a.mu.Unlock()
	}()

	if a.remote == nil {
		a.setState(StateOffline, apperrors.New(apperrors.ErrSyncUnavailable, "remote sync disabled"))
		a.bus.Publish(events.SyncReady, events.SyncReadyPayload{
			Document: a.store.Document(),
			Online:   false,
			CoupleID: a.coupleID,
		})
		return
	}

	var lastErr error
	for attempt := 1; attempt <= a.cfg.RetryAttempts; attempt++ {
		fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
		remoteDoc, err := a.remote.Fetch(fetchCtx, a.coupleID)
		cancel()

		if err == nil {
			a.goOnline(ctx, remoteDoc)
			return
		}
		if apperrors.Is(err, apperrors.ErrRemoteNotFound) {
			// First device for this couple id; seed the remote copy.
			a.goOnline(ctx, nil)
			return
		}

		lastErr = err
		a.log.Warn("remote fetch failed", logging.Fields{
			"attempt":  attempt,
			"attempts": a.cfg.RetryAttempts,
			"error":    err.Error(),
		})

		if attempt < a.cfg.RetryAttempts {
			select {
			case <-time.After(a.cfg.RetryBackoff):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = a.cfg.RetryAttempts
			case <-a.stopCh:
				return
			}
		}
	}

	a.setState(StateOffline, apperrors.Wrap(apperrors.ErrSyncUnavailable, "remote unreachable", lastErr))
	a.log.Info("working offline", logging.Fields{"coupleId": a.coupleID})
	a.bus.Publish(events.SyncReady, events.SyncReadyPayload{
		Document: a.store.Document(),
		Online:   false,
		CoupleID: a.coupleID,
	})
}

// goOnline merges the fetched remote document with the local one, writes
// the winner back, opens the live subscription and announces readiness.
// A nil remoteDoc means the remote copy does not exist yet.
func (a *Adapter) goOnline(ctx context.Context, remoteDoc *models.Document) {
	merged, remoteWon := Merge(a.store.Document(), remoteDoc)
	if remoteWon {
		if err := a.store.Replace(merged); err != nil {
			a.log.Error("failed to adopt remote document", err)
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	err := a.remote.Store(storeCtx, a.coupleID, merged)
	cancel()
	if err != nil {
		a.setState(StateOffline, apperrors.Wrap(apperrors.ErrSyncFailed, "failed to write merged document", err))
		a.bus.Publish(events.SyncReady, events.SyncReadyPayload{
			Document: a.store.Document(),
			Online:   false,
			CoupleID: a.coupleID,
		})
		return
	}

	sub, err := a.remote.Watch(ctx, a.coupleID)
	if err != nil {
		a.setState(StateOffline, apperrors.Wrap(apperrors.ErrSyncUnavailable, "failed to open remote subscription", err))
		a.bus.Publish(events.SyncReady, events.SyncReadyPayload{
			Document: a.store.Document(),
			Online:   false,
			CoupleID: a.coupleID,
		})
		return
	}

	a.mu.Lock()
	a.state = StateOnline
	a.lastErr = nil
	a.sub = sub
	a.mu.Unlock()
	a.markSynced()

	a.wg.Add(1)
	go a.watchLoop(sub)

	a.log.Info("connected to remote", logging.Fields{"coupleId": a.coupleID})
	a.bus.Publish(events.SyncReady, events.SyncReadyPayload{
		Document: a.store.Document(),
		Online:   true,
		CoupleID: a.coupleID,
	})
}

// watchLoop applies remote pushes until the subscription ends.
func (a *Adapter) watchLoop(sub Subscription) {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopCh:
			return
		case doc, ok := <-sub.Updates():
			if !ok {
				select {
				case <-a.stopCh:
				default:
					if a.State() == StateOnline {
						a.degrade(apperrors.New(apperrors.ErrSyncUnavailable, "remote subscription closed"))
						a.log.Warn("remote subscription closed, working offline")
					}
				}
				return
			}
			a.applyRemote(doc)
		}
	}
}

// applyRemote merges a pushed remote snapshot into the local document.
// remoteUpdated fires only when the remote copy actually wins.
func (a *Adapter) applyRemote(doc *models.Document) {
	merged, remoteWon := Merge(a.store.Document(), doc)
	if !remoteWon {
		return
	}

	if err := a.store.Replace(merged); err != nil {
		a.log.Error("failed to apply remote update", err)
		return
	}

	a.markSynced()

	a.bus.Publish(events.RemoteUpdated, events.RemoteUpdatePayload{Document: a.store.Document()})
}

// autoSaveLoop re-persists the local document on a fixed cadence while
// offline, so an unclean shutdown loses at most one interval of edits.
func (a *Adapter) autoSaveLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		case <-ticker.C:
			if a.State() != StateOffline {
				continue
			}
			if err := a.store.Replace(a.store.Document()); err != nil {
				a.log.Error("offline auto-save failed", err)
			}
		}
	}
}

// writeThrough pushes the current document to the remote copy. A failure
// flips the adapter offline; the caller's mutation has already been
// persisted locally and stays successful.
func (a *Adapter) writeThrough(ctx context.Context) {
	if a.State() != StateOnline {
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	if err := a.remote.Store(pushCtx, a.coupleID, a.store.Document()); err != nil {
		a.log.Warn("remote write failed, keeping local copy", logging.Fields{"error": err.Error()})
		a.degrade(apperrors.Wrap(apperrors.ErrSyncFailed, "remote write failed", err))
		return
	}

	a.markSynced()
}

// markSynced records a successful remote round trip, both in memory and in
// local storage so Status reports it across restarts.
func (a *Adapter) markSynced() {
	now := time.Now()
	a.mu.Lock()
	a.lastSync = now
	a.mu.Unlock()

	if err := a.store.SetLastSync(now); err != nil {
		a.log.Error("failed to persist last sync time", err)
	}
}

// Retry re-runs the connection sequence. Used by the UI's "try again"
// affordance while offline; a no-op when already online.
func (a *Adapter) Retry(ctx context.Context) Status {
	if a.State() != StateOnline {
		a.connect(ctx)
	}
	return a.Status()
}

// State returns the current connection state.
func (a *Adapter) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Adapter) setState(state State, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state
	a.lastErr = err
}

// degrade flips the adapter offline and tears down the live subscription.
func (a *Adapter) degrade(err error) {
	a.mu.Lock()
	a.state = StateOffline
	a.lastErr = err
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

// Status describes the adapter for the UI.
type Status struct {
	State     State      `json:"state"`
	Online    bool       `json:"online"`
	CoupleID  string     `json:"coupleId"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

// Status returns a snapshot of the adapter's state.
func (a *Adapter) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Status{
		State:    a.state,
		Online:   a.state == StateOnline,
		CoupleID: a.coupleID,
	}
	if !a.lastSync.IsZero() {
		t := a.lastSync
		s.LastSync = &t
	}
	if a.lastErr != nil {
		s.LastError = a.lastErr.Error()
	}
	return s
}

// Close stops the background loops and tears down the subscription.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		close(a.stopCh)

		a.mu.Lock()
		sub := a.sub
		a.sub = nil
		a.mu.Unlock()
		if sub != nil {
			sub.Close()
		}

		a.wg.Wait()
	})
}

// The mutation surface below mirrors the local store. Every call persists
// locally first, then writes through to the remote copy.

// AddMemory creates a memory and writes the document through.
func (a *Adapter) AddMemory(ctx context.Context, input store.MemoryInput) (*models.Memory, error) {
	m, err := a.store.AddMemory(input)
	if err != nil {
		return nil, err
	}
	a.writeThrough(ctx)
	return m, nil
}

// UpdateMemory patches a memory and writes the document through.
func (a *Adapter) UpdateMemory(ctx context.Context, id string, patch store.MemoryPatch) (*models.Memory, error) {
	m, err := a.store.UpdateMemory(id, patch)
	if err != nil {
		return nil, err
	}
	a.writeThrough(ctx)
	return m, nil
}

// DeleteMemory removes a memory and writes the document through.
func (a *Adapter) DeleteMemory(ctx context.Context, id string) error {
	if err := a.store.DeleteMemory(id); err != nil {
		return err
	}
	a.writeThrough(ctx)
	return nil
}

// AddPhoto creates a photo and writes the document through.
func (a *Adapter) AddPhoto(ctx context.Context, input store.PhotoInput) (*models.Photo, error) {
	p, err := a.store.AddPhoto(input)
	if err != nil {
		return nil, err
	}
	a.writeThrough(ctx)
	return p, nil
}

// UpdatePhoto patches a photo and writes the document through.
func (a *Adapter) UpdatePhoto(ctx context.Context, id string, patch store.PhotoPatch) (*models.Photo, error) {
	p, err := a.store.UpdatePhoto(id, patch)
	if err != nil {
		return nil, err
	}
	a.writeThrough(ctx)
	return p, nil
}

// DeletePhoto removes a photo and writes the document through.
func (a *Adapter) DeletePhoto(ctx context.Context, id string) error {
	if err := a.store.DeletePhoto(id); err != nil {
		return err
	}
	a.writeThrough(ctx)
	return nil
}

// UpdateCoupleInfo patches the couple info and writes the document through.
func (a *Adapter) UpdateCoupleInfo(ctx context.Context, patch store.CoupleInfoPatch) (models.CoupleInfo, error) {
	info, err := a.store.UpdateCoupleInfo(patch)
	if err != nil {
		return models.CoupleInfo{}, err
	}
	a.writeThrough(ctx)
	return info, nil
}

// Import replaces the document from a payload and writes it through.
func (a *Adapter) Import(ctx context.Context, raw []byte) error {
	if err := a.store.Import(raw); err != nil {
		return err
	}
	a.writeThrough(ctx)
	return nil
}

// Reset restores defaults and writes the fresh document through.
func (a *Adapter) Reset(ctx context.Context) error {
	if err := a.store.Reset(); err != nil {
		return err
	}
	a.writeThrough(ctx)
	return nil
}

// Document returns the current local document.
func (a *Adapter) Document() *models.Document {
	return a.store.Document()
}

// Stats returns the dashboard summary.
func (a *Adapter) Stats() models.Stats {
	return a.store.Stats()
}

// Export serializes the document for download. Local only.
func (a *Adapter) Export() (string, []byte, error) {
	return a.store.Export()
}

// Theme returns the per-device theme preference. Not synchronized.
func (a *Adapter) Theme() string {
	return a.store.Theme()
}

// SetTheme stores the per-device theme preference. Not synchronized.
func (a *Adapter) SetTheme(theme string) error {
	return a.store.SetTheme(theme)
}
