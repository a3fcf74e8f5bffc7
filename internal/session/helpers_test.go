package session

func (n *Notifier) subscriberCount(profileID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[profileID])
}
