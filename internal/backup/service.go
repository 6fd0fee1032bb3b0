// Package backup mirrors the whole record store to a single remote document.
// Upload and download always move the full state; the last writer wins.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/alexanderramin/daylog/internal/gist"
	"github.com/alexanderramin/daylog/internal/repository"
)

// Snapshotter is the part of the record store that sync needs.
type Snapshotter interface {
	ExportAll(ctx context.Context) (domain.Snapshot, error)
	ReplaceAll(ctx context.Context, snap domain.Snapshot) error
}

// ConfirmFunc asks whether a destructive download may proceed.
type ConfirmFunc func(ctx context.Context) (bool, error)

// Confirmed always agrees. Use it only when the caller already asked.
func Confirmed(context.Context) (bool, error) { return true, nil }

// Status is the sync panel summary.
type Status struct {
	Connected   bool
	Account     domain.Account
	DocumentID  string
	LastSync    *time.Time
	RecordCount int
}

// Service runs the sync protocol. Only one operation runs at a time; a
// second call while one is in flight fails with ErrSyncInProgress.
type Service struct {
	api      gist.API
	store    Snapshotter
	state    repository.SyncStateRepo
	clock    clock.Clock
	cfg      gist.Config
	logger   *slog.Logger
	listener events.Listener

	busy atomic.Bool
}

func NewService(api gist.API, store Snapshotter, state repository.SyncStateRepo, clk clock.Clock, cfg gist.Config, logger *slog.Logger, listener events.Listener) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		api:      api,
		store:    store,
		state:    state,
		clock:    clk,
		cfg:      cfg,
		logger:   logger,
		listener: events.OrNoop(listener),
	}
}

// CredentialWarning returns a notice when token does not look like a GitHub
// personal access token. Such tokens are still accepted.
func CredentialWarning(token string) string {
	if strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_") {
		return ""
	}
	return "token does not start with ghp_ or github_pat_; it may not be a personal access token"
}

// Connect verifies credential, resolves the backup document (creating it
// when missing) and persists the result. On any failure the stored sync
// state is cleared entirely.
func (s *Service) Connect(ctx context.Context, credential string) (domain.SyncState, error) {
	var state domain.SyncState
	err := s.run(ctx, "connect", func(ctx context.Context) error {
		credential = strings.TrimSpace(credential)
		if credential == "" {
			return s.abortConnect(ctx, fmt.Errorf("%w: empty token", ErrAuth))
		}

		s.progress(ctx, 20, "verifying token")
		user, err := s.api.User(ctx, credential)
		if err != nil {
			if errors.Is(err, gist.ErrUnauthorized) {
				err = fmt.Errorf("%w: %w", ErrAuth, err)
			}
			return s.abortConnect(ctx, err)
		}

		s.progress(ctx, 60, "locating backup document")
		docID, err := s.resolveDocument(ctx, credential)
		if err != nil {
			return s.abortConnect(ctx, err)
		}

		state = domain.SyncState{
			Credential: credential,
			DocumentID: docID,
			Account:    domain.Account{Login: user.Login, Name: user.Name, AvatarURL: user.AvatarURL, ID: user.ID},
		}
		if err := s.state.Save(ctx, state); err != nil {
			return s.abortConnect(ctx, err)
		}
		s.progress(ctx, 100, "connected as "+state.Account.DisplayName())
		return nil
	})
	if err != nil {
		return domain.SyncState{}, err
	}
	return state, nil
}

func (s *Service) abortConnect(ctx context.Context, cause error) error {
	if err := s.state.Clear(ctx); err != nil {
		return errors.Join(cause, fmt.Errorf("clearing sync state: %w", err))
	}
	return cause
}

func (s *Service) resolveDocument(ctx context.Context, credential string) (string, error) {
	gists, err := s.api.ListGists(ctx, credential)
	if err != nil {
		return "", err
	}
	if g, ok := gist.FindByMarker(gists, s.cfg.Marker); ok {
		return g.ID, nil
	}
	placeholder, err := json.Marshal(map[string]string{"created": s.clock.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return "", err
	}
	g, err := s.api.CreateGist(ctx, credential, s.cfg.Marker, map[string]string{s.cfg.FileName: string(placeholder)})
	if err != nil {
		return "", err
	}
	if g.ID == "" {
		return "", fmt.Errorf("create gist: %w: missing id", gist.ErrMalformedResponse)
	}
	return g.ID, nil
}

// Upload replaces the remote document with the full local snapshot.
// lastSync is recorded only after the remote acknowledges the write.
func (s *Service) Upload(ctx context.Context) error {
	return s.run(ctx, "upload", func(ctx context.Context) error {
		state, err := s.connectedState(ctx)
		if err != nil {
			return err
		}

		s.progress(ctx, 20, "collecting records")
		snap, err := s.store.ExportAll(ctx)
		if err != nil {
			return err
		}

		s.progress(ctx, 40, "encoding backup")
		blob, err := Encode(snap)
		if err != nil {
			return err
		}

		s.progress(ctx, 60, "uploading")
		if _, err := s.api.UpdateGist(ctx, state.Credential, state.DocumentID, map[string]string{s.cfg.FileName: blob}); err != nil {
			return err
		}

		return s.finish(ctx, state, fmt.Sprintf("uploaded %d records", snap.RecordCount()))
	})
}

// Download replaces all local records and important dates with the remote
// backup after confirm agrees. The backup is fully decoded and validated
// before the store is touched.
func (s *Service) Download(ctx context.Context, confirm ConfirmFunc) error {
	return s.run(ctx, "download", func(ctx context.Context) error {
		state, err := s.connectedState(ctx)
		if err != nil {
			return err
		}
		if confirm == nil {
			return ErrDownloadDeclined
		}
		ok, err := confirm(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDownloadDeclined
		}

		s.progress(ctx, 20, "fetching backup")
		g, err := s.api.GetGist(ctx, state.Credential, state.DocumentID)
		if err != nil {
			return err
		}
		file, ok := g.Files[s.cfg.FileName]
		if !ok {
			return fmt.Errorf("%w: document has no %s", ErrDecode, s.cfg.FileName)
		}

		s.progress(ctx, 60, "decoding backup")
		snap, err := Decode(file.Content)
		if err != nil {
			return err
		}

		s.progress(ctx, 80, "writing local store")
		if err := s.store.ReplaceAll(ctx, snap); err != nil {
			return err
		}

		return s.finish(ctx, state, fmt.Sprintf("restored %d records", snap.RecordCount()))
	})
}

// Disconnect forgets the credential and document. Remote data is kept.
func (s *Service) Disconnect(ctx context.Context) error {
	return s.run(ctx, "disconnect", func(ctx context.Context) error {
		return s.state.Clear(ctx)
	})
}

// Status reports the connection and store size.
func (s *Service) Status(ctx context.Context) (Status, error) {
	state, err := s.state.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	snap, err := s.store.ExportAll(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Connected:   state.Connected(),
		Account:     state.Account,
		DocumentID:  state.DocumentID,
		LastSync:    state.LastSync,
		RecordCount: snap.RecordCount(),
	}, nil
}

func (s *Service) connectedState(ctx context.Context) (domain.SyncState, error) {
	state, err := s.state.Load(ctx)
	if err != nil {
		return domain.SyncState{}, err
	}
	if !state.Connected() {
		return domain.SyncState{}, ErrNotConnected
	}
	return state, nil
}

func (s *Service) finish(ctx context.Context, state domain.SyncState, detail string) error {
	now := s.clock.Now()
	state.LastSync = &now
	if err := s.state.Save(ctx, state); err != nil {
		return err
	}
	s.progress(ctx, 100, detail)
	return nil
}

func (s *Service) progress(ctx context.Context, percent int, message string) {
	s.listener.OnSyncProgress(ctx, percent, message)
}

// run enforces one operation at a time, then logs and reports the outcome.
func (s *Service) run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if !s.busy.CompareAndSwap(false, true) {
		s.listener.OnSyncResult(ctx, events.OutcomeError, Message(ErrSyncInProgress))
		return ErrSyncInProgress
	}
	defer s.busy.Store(false)

	start := time.Now()
	err := fn(ctx)
	attrs := []any{"use_case", "sync_" + name, "duration_ms", time.Since(start).Milliseconds(), "success", err == nil}
	if err != nil {
		s.logger.ErrorContext(ctx, "sync_use_case", append(attrs, "error", err.Error())...)
		s.listener.OnSyncResult(ctx, events.OutcomeError, Message(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logger.InfoContext(ctx, "sync_use_case", attrs...)
	s.listener.OnSyncResult(ctx, events.OutcomeSuccess, name+" complete")
	return nil
}
