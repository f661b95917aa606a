package aggregator

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/glasspane/dashboard/internal/domain/tabdata"
)

// ErrProtectionsNotSet reports request data delivered before the
// protection status is known. This is a host contract violation, not a
// recoverable runtime condition; the offending update is not applied.
var ErrProtectionsNotSet = errors.New("aggregator: request data delivered before protections")

// Aggregator owns the field state for one tab-view session. One instance
// exists per tab; the host recreates it on navigation.
type Aggregator struct {
	mu sync.Mutex

	tabURL          string
	trackerBlocking *tabdata.TrackerBlockingData
	protections     *tabdata.Protections
	locale          *string
	upgradedHTTPS   *bool

	permissions      []tabdata.Permission
	permissionsSet   bool
	certificate      []tabdata.CertificateItem
	certificateSet   bool
	isPendingUpdates *bool
	parentEntity     *tabdata.Entity
	consent          *tabdata.ConsentStatus

	ready    bool
	last     *tabdata.Snapshot
	readyCbs []func(*tabdata.Snapshot)
	pending  PendingQueue
	subs     map[uint64]func(*tabdata.Snapshot)
	nextSub  uint64
}

// New creates an empty aggregator with no fields set.
func New() *Aggregator {
	return &Aggregator{
		subs: make(map[uint64]func(*tabdata.Snapshot)),
	}
}

// SetRequestData derives fresh tracker-blocking data from a raw request
// payload. Protections must already be known; the derivation also captures
// the latest HTTPS-upgrade value, defaulting to false when it has not
// arrived yet (the gate still blocks rendering until it does).
func (a *Aggregator) SetRequestData(tabURL string, raw tabdata.RequestPayload) error {
	a.mu.Lock()
	if a.protections == nil {
		a.mu.Unlock()
		return ErrProtectionsNotSet
	}
	upgraded := false
	if a.upgradedHTTPS != nil {
		upgraded = *a.upgradedHTTPS
	}
	derived := tabdata.NewTrackerBlockingData(tabURL, upgraded, *a.protections, raw)
	a.tabURL = tabURL
	a.trackerBlocking = &derived
	a.commit()
	return nil
}

// SetProtections replaces the protection status.
func (a *Aggregator) SetProtections(p tabdata.Protections) {
	a.mu.Lock()
	a.protections = &p
	a.commit()
}

// SetLocale replaces the active UI locale.
func (a *Aggregator) SetLocale(locale string) {
	a.mu.Lock()
	a.locale = &locale
	a.commit()
}

// SetUpgradedHTTPS replaces the HTTPS-upgrade flag.
func (a *Aggregator) SetUpgradedHTTPS(v bool) {
	a.mu.Lock()
	a.upgradedHTTPS = &v
	a.commit()
}

// SetPermissions replaces the per-permission grant state.
func (a *Aggregator) SetPermissions(perms []tabdata.Permission) {
	a.mu.Lock()
	a.permissions = perms
	a.permissionsSet = true
	a.commit()
}

// SetCertificate replaces the certificate-chain view data.
func (a *Aggregator) SetCertificate(chain []tabdata.CertificateItem) {
	a.mu.Lock()
	a.certificate = chain
	a.certificateSet = true
	a.commit()
}

// SetIsPendingUpdates replaces the extension-update pending flag.
func (a *Aggregator) SetIsPendingUpdates(v bool) {
	a.mu.Lock()
	a.isPendingUpdates = &v
	a.commit()
}

// SetParentEntity replaces the owning-entity metadata.
func (a *Aggregator) SetParentEntity(e tabdata.Entity) {
	a.mu.Lock()
	a.parentEntity = &e
	a.commit()
}

// MergeConsent shallow-merges a partial consent-status delivery into the
// accumulator. Unlike every other field, earlier values survive unless the
// update names them.
func (a *Aggregator) MergeConsent(u tabdata.ConsentUpdate) {
	a.mu.Lock()
	if a.consent == nil {
		a.consent = &tabdata.ConsentStatus{}
	}
	a.consent.Merge(u)
	a.commit()
}

// Ready reports whether the readiness gate is satisfied.
func (a *Aggregator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// Snapshot returns a freshly combined snapshot, or nil while any of the
// four required fields is missing.
func (a *Aggregator) Snapshot() *tabdata.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// OnReady registers a callback for the first complete snapshot. The
// callback fires exactly once; if the aggregator is already ready it
// fires on a fresh goroutine rather than re-entering the caller.
func (a *Aggregator) OnReady(fn func(*tabdata.Snapshot)) {
	a.mu.Lock()
	if a.ready {
		snap := a.snapshotLocked()
		a.mu.Unlock()
		go fn(snap)
		return
	}
	a.readyCbs = append(a.readyCbs, fn)
	a.mu.Unlock()
}

// OnUpdate registers a callback invoked after every update that changes
// snapshot content. The returned cancel func removes the subscription.
func (a *Aggregator) OnUpdate(fn func(*tabdata.Snapshot)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// Wait blocks until the first complete snapshot exists, or ctx is done.
// Usable any number of times, including after readiness.
func (a *Aggregator) Wait(ctx context.Context) (*tabdata.Snapshot, error) {
	a.mu.Lock()
	if a.ready {
		snap := a.snapshotLocked()
		a.mu.Unlock()
		return snap, nil
	}
	ch := a.pending.Enqueue()
	a.mu.Unlock()

	select {
	case snap := <-ch:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// commit recomputes the combined view, resolves readiness and dispatches
// notifications. Called with the lock held; releases it. State is fully
// committed before any callback runs.
func (a *Aggregator) commit() {
	snap := a.snapshotLocked()

	var notify []func()

	if snap != nil && !a.ready {
		a.ready = true
		cbs := a.readyCbs
		a.readyCbs = nil
		for _, fn := range cbs {
			fn := fn
			notify = append(notify, func() { fn(snap) })
		}
		queue := &a.pending
		notify = append(notify, func() { queue.Drain(snap) })
	}

	if snap != nil && !reflect.DeepEqual(snap, a.last) {
		for _, fn := range a.subs {
			fn := fn
			notify = append(notify, func() { fn(snap) })
		}
	}
	a.last = snap

	a.mu.Unlock()
	for _, fn := range notify {
		fn()
	}
}

// snapshotLocked combines current field state. Pure with respect to the
// fields; returns nil while the gate is open.
func (a *Aggregator) snapshotLocked() *tabdata.Snapshot {
	if a.trackerBlocking == nil || a.protections == nil || a.upgradedHTTPS == nil || a.locale == nil {
		return nil
	}

	var consent *tabdata.ConsentStatus
	if a.consent != nil {
		c := *a.consent
		consent = &c
	}

	return &tabdata.Snapshot{
		Tab: tabdata.Tab{
			URL:             a.tabURL,
			Locale:          *a.locale,
			UpgradedHTTPS:   *a.upgradedHTTPS,
			Protections:     *a.protections,
			TrackerBlocking: *a.trackerBlocking,
			ParentEntity:    a.parentEntity,
			Consent:         consent,
		},
		Permissions:      a.permissions,
		Certificate:      a.certificate,
		IsPendingUpdates: a.isPendingUpdates,
	}
}
