package redisstore

const (
	// KeyBookmarks is the fixed key for the bookmark document.
	KeyBookmarks = "curio:bookmarks"
	// KeyCollections is the fixed key for the collections document.
	KeyCollections = "curio:collections"
	// KeyPrefixResults is the prefix for per-session latest-results keys.
	KeyPrefixResults = "curio:results:"
)

// ResultsKey returns the key for a session's latest-results cache.
func ResultsKey(sessionID string) string {
	return KeyPrefixResults + sessionID
}
