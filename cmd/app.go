package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/iksnae/gujjar-gpt/internal/gateway"
)

// app bundles the state every command opens: config, store, sessions and profile
type app struct {
	paths    internal.StoragePaths
	cfg      *internal.Config
	store    internal.Store
	sessions *internal.SessionStore
	profiles *internal.ProfileStore
	metrics  *internal.MetricsPusher
}

// openApp resolves paths and config from the persistent flags, opens the
// store and restores the last login. Callers must Close it.
func openApp() (*app, error) {
	paths, err := internal.GetStoragePaths(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage paths: %w", err)
	}
	if configPath != "" {
		paths.ConfigFile = configPath
	}

	cfg, err := internal.LoadConfig(paths)
	if err != nil {
		return nil, err
	}
	if backendName != "" {
		cfg.Storage.Backend = backendName
	}
	if provider != "" {
		cfg.Provider = provider
	}

	store, err := internal.OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	internal.LogDebug("Opened %s store under %s", cfg.Storage.Backend, cfg.Storage.Dir)

	sessions := internal.NewSessionStore(store)
	a := &app{
		paths:    paths,
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		profiles: internal.NewProfileStore(store, sessions),
		metrics:  internal.NewMetricsPusher(cfg.Metrics.Pushgateway),
	}

	if _, _, err := a.profiles.Resume(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to restore login: %w", err)
	}
	return a, nil
}

// Close pushes metrics and closes the store
func (a *app) Close() {
	a.metrics.Push()
	if err := a.store.Close(); err != nil {
		internal.LogWarn("Failed to close store: %v", err)
	}
}

// requireLogin returns the live profile or ErrNotLoggedIn
func (a *app) requireLogin() (*internal.UserProfile, error) {
	profile := a.profiles.Current()
	if profile == nil {
		return nil, internal.ErrNotLoggedIn
	}
	return profile, nil
}

// controller builds the gateway and a controller with a fresh conversation.
// A gateway that cannot start a conversation is not fatal: LastError carries
// the banner and chat sends fail with a session-init error turn.
func (a *app) controller(ctx context.Context) (*internal.Controller, error) {
	gw, err := gateway.New(ctx, a.cfg)
	if err != nil {
		var svcErr *internal.ServiceError
		if !errors.As(err, &svcErr) {
			return nil, err
		}
		internal.LogWarn("AI service unavailable: %s", svcErr.Message)
		gw = unavailableGateway{err: svcErr}
	}

	ctrl := internal.NewController(gw, a.sessions)
	if err := ctrl.NewChat(ctx); err != nil {
		internal.LogDebug("Conversation not started: %v", err)
	}
	return ctrl, nil
}

// findSession looks up a saved session of the current profile
func (a *app) findSession(id string) (internal.ChatSession, error) {
	if _, err := a.requireLogin(); err != nil {
		return internal.ChatSession{}, err
	}
	session, ok := a.sessions.Get(id)
	if !ok {
		return internal.ChatSession{}, fmt.Errorf("session not found: %s", id)
	}
	return session, nil
}

// unavailableGateway stands in when the provider cannot be constructed,
// so that every send still ends in an error turn instead of aborting the command
type unavailableGateway struct {
	err *internal.ServiceError
}

func (u unavailableGateway) NewContext(context.Context, []internal.ChatMessage) (*internal.Conversation, error) {
	return nil, u.err
}

func (u unavailableGateway) ExchangeTurn(context.Context, *internal.Conversation, string, []internal.Attachment) (*internal.TurnReply, error) {
	return nil, u.err
}

func (u unavailableGateway) GenerateImage(context.Context, string) (*internal.ImageReply, error) {
	return nil, internal.NewServiceError(u.err.Kind, internal.ModeImage, u.err.Err)
}
