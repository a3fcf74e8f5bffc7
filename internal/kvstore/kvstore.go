// Package kvstore provides the string-keyed key-value storage every
// collection in a profile is persisted to.
package kvstore

// Store is a synchronous key-value primitive scoped to a single profile.
// Each call is atomic on its own; callers that read, modify and write a
// value get last-write-wins semantics when racing with another writer.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Provider hands out the Store backing a profile. Profiles never share keys.
type Provider interface {
	Profile(profileID string) Store
}
