package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Messages shown on the login screen
const (
	msgFillAllFields = "Please fill in all fields."
	msgEnterName     = "Please enter your name."
	msgAccountExists = "An account with this email already exists."
	msgNoAccount     = "No account found with this email."
	msgBadPassword   = "Invalid password."
	msgGuestReserved = "\"Guest\" is reserved for guest sessions."
)

// ProfileStore handles the local sign-in gate and the live profile.
// Credentials are stored in plain text; this is a convenience gate, not security.
type ProfileStore struct {
	mu       sync.Mutex
	store    Store
	sessions *SessionStore
	profile  *UserProfile
}

// NewProfileStore creates a ProfileStore. sessions is reloaded whenever the profile changes.
func NewProfileStore(store Store, sessions *SessionStore) *ProfileStore {
	return &ProfileStore{store: store, sessions: sessions}
}

// Current returns the live profile, or nil before login
func (p *ProfileStore) Current() *UserProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.profile == nil {
		return nil
	}
	profile := *p.profile
	return &profile
}

// SignUp creates an account and logs in with it
func (p *ProfileStore) SignUp(name, email, password string) (*UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &AuthError{Reason: msgFillAllFields}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &AuthError{Reason: msgEnterName}
	}

	key := AccountKey(email)
	_, exists, err := p.store.Get(key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &AuthError{Reason: msgAccountExists}
	}

	data, err := json.Marshal(Account{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}
	if err := p.store.Set(key, string(data)); err != nil {
		return nil, err
	}
	LogInfo("Created account for %s", email)

	return p.loginAs(UserProfile{Name: name})
}

// LogIn checks the stored account and logs in
func (p *ProfileStore) LogIn(email, password string) (*UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &AuthError{Reason: msgFillAllFields}
	}

	raw, ok, err := p.store.Get(AccountKey(email))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &AuthError{Reason: msgNoAccount}
	}

	var account Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, fmt.Errorf("failed to parse account %s: %w", email, err)
	}
	if account.Password != password {
		return nil, &AuthError{Reason: msgBadPassword}
	}

	name := account.Name
	if name == "" {
		name = ProfileNameFromEmail(email)
	}
	return p.loginAs(UserProfile{Name: name})
}

// ContinueAsGuest logs in with the guest profile. Guest sessions are never persisted.
func (p *ProfileStore) ContinueAsGuest() (*UserProfile, error) {
	return p.loginAs(UserProfile{Name: GuestName})
}

func (p *ProfileStore) loginAs(profile UserProfile) (*UserProfile, error) {
	if err := p.store.Set(SessionMarkerKey, SessionMarkerValue); err != nil {
		return nil, err
	}
	if err := p.saveProfile(profile); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.profile = &profile
	p.mu.Unlock()

	if err := p.sessions.Load(profile.Name); err != nil {
		return nil, err
	}
	out := profile
	return &out, nil
}

// Resume restores the profile of a previous login. ok is false when no login is stored.
func (p *ProfileStore) Resume() (profile *UserProfile, ok bool, err error) {
	marker, found, err := p.store.Get(SessionMarkerKey)
	if err != nil {
		return nil, false, err
	}
	if !found || marker == "" {
		return nil, false, nil
	}

	restored := UserProfile{Name: GuestName}
	raw, found, err := p.store.Get(ProfileKey)
	if err != nil {
		return nil, false, err
	}
	if found {
		if err := json.Unmarshal([]byte(raw), &restored); err != nil {
			return nil, false, fmt.Errorf("failed to parse stored profile: %w", err)
		}
	}

	p.mu.Lock()
	p.profile = &restored
	p.mu.Unlock()

	if err := p.sessions.Load(restored.Name); err != nil {
		return nil, false, err
	}
	out := restored
	return &out, true, nil
}

// UpdateProfile replaces the live profile. A name change moves the session
// collection to the new name's key; the copy and the removal are not atomic.
func (p *ProfileStore) UpdateProfile(next UserProfile) error {
	p.mu.Lock()
	current := p.profile
	p.mu.Unlock()
	if current == nil {
		return ErrNotLoggedIn
	}

	next.Name = strings.TrimSpace(next.Name)
	if next.Name == "" {
		next.Name = current.Name
	}
	if next.Name != current.Name && strings.EqualFold(next.Name, GuestName) {
		return &ValidationError{Field: "name", Reason: msgGuestReserved}
	}

	if next.Name != current.Name {
		if err := p.migrateChats(current.Name, next.Name); err != nil {
			return err
		}
	}

	if err := p.saveProfile(next); err != nil {
		return err
	}

	p.mu.Lock()
	p.profile = &next
	p.mu.Unlock()

	if next.Name != current.Name {
		return p.sessions.Rename(next.Name)
	}
	return nil
}

// SetAvatar stores an image file as the profile avatar
func (p *ProfileStore) SetAvatar(path string) error {
	current := p.Current()
	if current == nil {
		return ErrNotLoggedIn
	}
	attachment, err := LoadAttachment(path)
	if err != nil {
		return err
	}
	current.Avatar = attachment.DataURL()
	return p.UpdateProfile(*current)
}

func (p *ProfileStore) migrateChats(oldName, newName string) error {
	oldKey, newKey := ChatsKey(oldName), ChatsKey(newName)
	raw, ok, err := p.store.Get(oldKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := p.store.Set(newKey, raw); err != nil {
		return err
	}
	if err := p.store.Remove(oldKey); err != nil {
		return err
	}
	LogInfo("Moved sessions from %q to %q", oldName, newName)
	return nil
}

// LogOut forgets the login and deletes the current user's sessions
func (p *ProfileStore) LogOut() error {
	p.mu.Lock()
	current := p.profile
	p.profile = nil
	p.mu.Unlock()

	if err := p.store.Remove(SessionMarkerKey); err != nil {
		return err
	}
	if err := p.store.Remove(ProfileKey); err != nil {
		return err
	}
	if current != nil {
		if err := p.store.Remove(ChatsKey(current.Name)); err != nil {
			return err
		}
	}
	p.sessions.Reset()
	return nil
}

func (p *ProfileStore) saveProfile(profile UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return p.store.Set(ProfileKey, string(data))
}

// ProfileNameFromEmail derives a display name from the local part of an email.
// "jane.doe_x@example.com" becomes "Jane Doe X".
func ProfileNameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)

	runes := []rune(local)
	for i, r := range runes {
		if i == 0 || !isWordRune(runes[i-1]) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
