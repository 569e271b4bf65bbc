package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/gujjar-gpt/internal"
)

func TestAuthCommands(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run("whoami"); !errors.Is(err, internal.ErrNotLoggedIn) {
		t.Fatalf("whoami before login error = %v, want ErrNotLoggedIn", err)
	}

	out, err := env.run("signup", "--name", "Asha Patel", "--email", "asha@example.com", "--password", "hunter2")
	if err != nil {
		t.Fatalf("signup error = %v", err)
	}
	if !strings.Contains(out, "Welcome, Asha Patel!") {
		t.Errorf("signup output = %q", out)
	}

	if _, err := env.run("signup", "--name", "Again", "--email", "asha@example.com", "--password", "x"); err == nil ||
		err.Error() != "An account with this email already exists." {
		t.Errorf("duplicate signup error = %v", err)
	}

	out, err = env.run("whoami")
	if err != nil || !strings.Contains(out, "Asha Patel") {
		t.Errorf("whoami = %q, %v", out, err)
	}

	if _, err := env.run("logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if _, err := env.run("whoami"); !errors.Is(err, internal.ErrNotLoggedIn) {
		t.Errorf("whoami after logout error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  string
	}{
		{name: "wrong password", email: "asha@example.com", password: "nope", wantErr: "Invalid password."},
		{name: "unknown account", email: "ravi@example.com", password: "pw", wantErr: "No account found with this email."},
		{name: "missing fields", wantErr: "Please fill in all fields."},
		{name: "ok", email: "asha@example.com", password: "hunter2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run("login", "--email", tt.email, "--password", tt.password)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("login error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || !strings.Contains(out, "Logged in as Asha Patel") {
				t.Errorf("login = %q, %v", out, err)
			}
		})
	}
}

func TestLoginGuest(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("login", "--guest")
	if err != nil {
		t.Fatalf("login --guest error = %v", err)
	}
	if !strings.Contains(out, "Logged in as Guest") {
		t.Errorf("output = %q", out)
	}

	if _, err := env.run("send", "hello"); err != nil {
		t.Fatalf("send as guest error = %v", err)
	}
	out, err = env.run("list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "Guest chats are not saved.") {
		t.Errorf("list output = %q", out)
	}
	if got := env.sessions(internal.GuestName); len(got) != 0 {
		t.Errorf("guest sessions were persisted: %+v", got)
	}
}

func TestProfileSetName(t *testing.T) {
	env := newTestEnv(t)
	env.signup("Asha")

	if _, err := env.run("send", "remember me"); err != nil {
		t.Fatalf("send error = %v", err)
	}

	out, err := env.run("profile", "set-name", "Asha", "Patel")
	if err != nil {
		t.Fatalf("set-name error = %v", err)
	}
	if !strings.Contains(out, "Profile renamed to Asha Patel") {
		t.Errorf("output = %q", out)
	}

	if got := env.sessions("Asha"); len(got) != 0 {
		t.Errorf("sessions left under the old name: %d", len(got))
	}
	if got := env.sessions("Asha Patel"); len(got) != 1 {
		t.Errorf("sessions under the new name = %d, want 1", len(got))
	}
}

func TestProfileSetName_GuestReserved(t *testing.T) {
	env := newTestEnv(t)
	env.signup("Asha")
	_, err := env.run("send", "keep me")
	if err != nil {
		t.Fatalf("send error = %v", err)
	}

	var validation *internal.ValidationError
	if _, err := env.run("profile", "set-name", "Guest"); !errors.As(err, &validation) {
		t.Fatalf("set-name Guest error = %v, want ValidationError", err)
	}

	out, err := env.run("whoami")
	if err != nil || !strings.Contains(out, "Asha") {
		t.Errorf("whoami = %q, %v", out, err)
	}
	if got := env.sessions("Asha"); len(got) != 1 {
		t.Errorf("sessions under Asha = %d, want 1", len(got))
	}
}
