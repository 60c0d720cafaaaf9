package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/rgehrsitz/dpesim/internal/api"
	"github.com/rgehrsitz/dpesim/internal/auth"
	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/config"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/logging"
	"github.com/rgehrsitz/dpesim/internal/output"
)

// appEnv is what every command needs: the effective configuration, the
// session, and a backend (the API, or a snapshot file when offline).
type appEnv struct {
	cfg     *config.Config
	logger  logging.Logger
	store   *auth.FileStore
	tokens  oauth2.TokenSource
	client  *api.Client
	backend bridge.Backend
	format  string
	out     io.Writer
}

func loadEnv(cmd *cobra.Command) (*appEnv, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("format")
	snapshot, _ := cmd.Flags().GetString("snapshot")

	parser := config.NewInputParser()
	cfg, err := parser.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	logger := logging.FromSlog(logging.NewLogger(cfg.Log.Level, os.Stderr))

	store := auth.NewFileStore(cfg.Session.File)
	tokens := auth.NewTokenSource(store)
	client, err := api.New(cfg.API.BaseURL, tokens, api.WithTimeout(cfg.API.Timeout), api.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	env := &appEnv{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		tokens:  tokens,
		client:  client,
		backend: client,
		format:  format,
		out:     cmd.OutOrStdout(),
	}
	if snapshot != "" {
		entries, err := parser.LoadSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		logger.Infof("working offline on %s (%d entries)", snapshot, len(entries))
		env.backend = &snapshotBackend{entries: entries}
		env.tokens = nil
	}
	return env, nil
}

func (e *appEnv) formatter() (output.Formatter, error) {
	return output.NewFormatter(e.format)
}

// project is an opened bridge driven inline, with the notices it raised.
type project struct {
	ref     string
	b       *bridge.Bridge
	ctx     context.Context
	timeout time.Duration
	notices []bridge.Notice
}

// open loads a project, and the recorded scenario at ordinal when it is not
// negative.
func (e *appEnv) open(ctx context.Context, ref string, ordinal int) (*project, error) {
	if !domain.ValidRef(ref) {
		return nil, fmt.Errorf("%q: %w", ref, api.ErrInvalidRef)
	}
	loc, err := bridge.NewLocation(e.cfg.Simulation.AppURL, ref)
	if err != nil {
		return nil, err
	}
	if ordinal >= 0 {
		loc = loc.WithOrdinal(ordinal)
	}

	p := &project{ref: ref, ctx: ctx, timeout: e.cfg.API.Timeout}
	d := bridge.NewDispatcher()
	d.Subscribe(func(ev bridge.Event) {
		if n, ok := ev.(bridge.Notice); ok {
			p.notices = append(p.notices, n)
		}
	})
	p.b = bridge.New(e.backend, loc, bridge.Options{
		Tokens:          e.tokens,
		Dispatcher:      d,
		Logger:          e.logger,
		MaxCombinations: e.cfg.Simulation.MaxCombinations,
	})

	if err := p.run(p.b.Open()); err != nil {
		return nil, err
	}
	if !p.b.Loaded() {
		return nil, fmt.Errorf("project %s did not load", ref)
	}
	if ordinal >= 0 {
		if _, ok := p.b.Detail(); !ok {
			return nil, fmt.Errorf("scenario %d of %s: %w", ordinal, ref, errNoDetail)
		}
	}
	return p, nil
}

var errNoDetail = errors.New("no recorded data (is the session valid and the ordinal in range?)")

// run executes tasks and returns the first error notice they raised.
func (p *project) run(tasks []bridge.Task) error {
	mark := len(p.notices)
	bridge.RunInline(p.ctx, p.b, p.timeout, tasks...)
	return p.failure(mark)
}

func (p *project) failure(since int) error {
	for _, n := range p.notices[since:] {
		if n.Level == bridge.NoticeError {
			return noticeError{n}
		}
	}
	return nil
}

// noticeError surfaces an error notice; its message already names the
// action and the cause.
type noticeError struct {
	n bridge.Notice
}

func (e noticeError) Error() string { return e.n.Message }
func (e noticeError) Unwrap() error { return e.n.Err }

// infos returns the informational notices raised so far.
func (p *project) infos() []string {
	var out []string
	for _, n := range p.notices {
		if n.Level == bridge.NoticeInfo {
			out = append(out, n.Message)
		}
	}
	return out
}
