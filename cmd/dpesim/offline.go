package main

import (
	"context"
	"errors"

	"github.com/rgehrsitz/dpesim/internal/api"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

var errOffline = errors.New("not available when working on a snapshot file")

// snapshotBackend serves a configuration read from a file. Only reading and
// counting work; everything that needs the backend fails with errOffline.
type snapshotBackend struct {
	entries []domain.Entry
}

func (s *snapshotBackend) Snapshot(ctx context.Context, ref string) ([]domain.Entry, error) {
	return domain.CloneEntries(s.entries), nil
}

func (s *snapshotBackend) Submit(ctx context.Context, sub simul.Submission) error {
	return errOffline
}

func (s *snapshotBackend) Graph(ctx context.Context, ref string) ([]domain.GraphPoint, error) {
	return nil, nil
}

func (s *snapshotBackend) ScenarioDetail(ctx context.Context, ref string, ordinal, maxOrdinal int) (domain.ScenarioDetail, error) {
	return domain.ScenarioDetail{}, errOffline
}

func (s *snapshotBackend) ChoiceSetting(ctx context.Context, entryID, choiceID string) (domain.ChoiceSetting, error) {
	return domain.ChoiceSetting{}, errOffline
}

func (s *snapshotBackend) SaveChoiceSetting(ctx context.Context, ref, entryID, choiceID string, upd api.ChoiceSettingUpdate) error {
	return errOffline
}

func (s *snapshotBackend) RenameGroup(ctx context.Context, key domain.Key, label string) error {
	return errOffline
}

func (s *snapshotBackend) DescribeGroup(ctx context.Context, key domain.Key, description string) error {
	return errOffline
}

func (s *snapshotBackend) SaveEntryPath(ctx context.Context, entryID, path string) error {
	return errOffline
}

func (s *snapshotBackend) AddGroup(ctx context.Context, entryID string) error { return errOffline }

func (s *snapshotBackend) AttachScope(ctx context.Context, ref string, key domain.Key) error {
	return errOffline
}
