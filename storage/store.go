package storage

// Keys under which the client persists its state between runs.
const (
	KeyAccessToken    = "access_token"
	KeyRefreshToken   = "refresh_token"
	KeyUser           = "user"
	KeyCurrentAccount = "current_account"
)

// Store is durable client-side key/value storage. Values are opaque strings;
// structured values are stored as JSON by their owning store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Set creates or overwrites the value for key.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
