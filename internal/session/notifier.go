package session

import "sync"

// Notifier fans out "current user changed" signals to watchers of the same
// profile inside this process. Writers outside the process (another server
// instance sharing the database, a manual edit) are only seen by polling.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewNotifier creates an empty Notifier
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe registers interest in profileID. The returned cancel func must be
// called to release the subscription; it is safe to call more than once.
func (n *Notifier) Subscribe(profileID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.subs[profileID] == nil {
		n.subs[profileID] = make(map[chan struct{}]struct{})
	}
	n.subs[profileID][ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[profileID], ch)
			if len(n.subs[profileID]) == 0 {
				delete(n.subs, profileID)
			}
		})
	}
	return ch, cancel
}

// Publish wakes every subscriber of profileID without blocking. A subscriber
// that has not consumed its previous signal yet keeps a single pending one.
func (n *Notifier) Publish(profileID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs[profileID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
