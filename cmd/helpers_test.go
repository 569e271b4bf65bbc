package cmd

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/iksnae/gujjar-gpt/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of the command tree to its default so that
// values from one Execute call do not leak into the next
func resetFlags() {
	resetCommandFlags(rootCmd)
}

func resetCommandFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandFlags(sub)
	}
}

// testEnv is a storage directory shared by a sequence of commands
type testEnv struct {
	t   *testing.T
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, name := range []string{"GUJJAR_GPT_API_KEY", "GEMINI_API_KEY", "API_KEY", "GUJJAR_GPT_PROVIDER", "GUJJAR_GPT_PROMETHEUS_PUSHGATEWAY"} {
		t.Setenv(name, "")
	}
	return &testEnv{t: t, dir: testutil.CreateTempDir(t)}
}

// run executes the root command against the env's storage with the mock provider
func (e *testEnv) run(args ...string) (string, error) {
	return e.runWithInput(nil, args...)
}

func (e *testEnv) runWithInput(in io.Reader, args ...string) (string, error) {
	e.t.Helper()
	resetFlags()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(in)
	full := append([]string{"--storage", e.dir, "--provider", "mock"}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// sessions opens the env's database and returns the saved sessions of owner
func (e *testEnv) sessions(owner string) []internal.ChatSession {
	e.t.Helper()
	store, err := internal.NewSQLiteStore(filepath.Join(e.dir, "chats.db"))
	if err != nil {
		e.t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	sessions := internal.NewSessionStore(store)
	if err := sessions.Load(owner); err != nil {
		e.t.Fatalf("Load() error = %v", err)
	}
	return sessions.List()
}

func (e *testEnv) signup(name string) {
	e.t.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	if _, err := e.run("signup", "--name", name, "--email", email, "--password", "pw"); err != nil {
		e.t.Fatalf("signup error = %v", err)
	}
}
