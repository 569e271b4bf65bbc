package internal

// Persisted key layout. Values are JSON except the session marker.
const (
	SessionMarkerKey   = "gujjar-gpt-session"
	SessionMarkerValue = "authenticated"
	ProfileKey         = "gujjar-gpt-user-profile"
	chatsKeyPrefix     = "gujjar-gpt-chats-"
	accountKeyPrefix   = "user-"
)

// ChatsKey returns the key holding the session collection for a profile name
func ChatsKey(name string) string {
	return chatsKeyPrefix + name
}

// AccountKey returns the key holding the account record for an email
func AccountKey(email string) string {
	return accountKeyPrefix + email
}
