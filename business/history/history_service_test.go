//go:build !integration

package history

import (
	"context"
	"errors"
	"testing"

	"otodoki/domain"
)

type fakeHistoryRepo struct {
	entries []domain.PlayHistory
	err     error
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry *domain.PlayHistory) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) FindByUser(_ context.Context, _ uint) ([]domain.PlayHistory, error) {
	return f.entries, f.err
}

type fakeTrackRepo struct {
	existing map[string]bool
	upserted []string
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{existing: make(map[string]bool)}
}

func (f *fakeTrackRepo) Upsert(_ context.Context, track *domain.Track) error {
	f.upserted = append(f.upserted, track.CatalogID)
	f.existing[track.CatalogID] = true
	return nil
}

func (f *fakeTrackRepo) Exists(_ context.Context, catalogID string) (bool, error) {
	return f.existing[catalogID], nil
}

func (f *fakeTrackRepo) FindByCatalogID(_ context.Context, catalogID string) (domain.Track, error) {
	if !f.existing[catalogID] {
		return domain.Track{}, errors.New("track not found")
	}
	return domain.Track{CatalogID: catalogID}, nil
}

func (f *fakeTrackRepo) FindByCatalogIDs(_ context.Context, catalogIDs []string) ([]domain.Track, error) {
	tracks := make([]domain.Track, 0, len(catalogIDs))
	for _, id := range catalogIDs {
		if f.existing[id] {
			tracks = append(tracks, domain.Track{CatalogID: id})
		}
	}
	return tracks, nil
}

func TestRecordPlay_ValidatesInput(t *testing.T) {
	svc := NewHistoryService(&fakeHistoryRepo{}, newFakeTrackRepo())

	if _, err := svc.RecordPlay(context.Background(), 1, RecordPlayInput{Action: domain.ActionLike}); err == nil {
		t.Fatal("expected error for missing catalog id")
	}

	if _, err := svc.RecordPlay(context.Background(), 1, RecordPlayInput{CatalogID: "1", Action: "love"}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestRecordPlay_AppendsEntry(t *testing.T) {
	repo := &fakeHistoryRepo{}
	svc := NewHistoryService(repo, newFakeTrackRepo())

	entry, err := svc.RecordPlay(context.Background(), 7, RecordPlayInput{
		CatalogID: "123",
		Action:    domain.ActionLike,
		Context:   map[string]interface{}{"source": "swipe"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if entry.UserID != 7 || entry.CatalogID != "123" || entry.Action != domain.ActionLike {
		t.Fatalf("entry = %+v", entry)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("appended %d entries, want 1", len(repo.entries))
	}
}

func TestRecordPlay_CachesUnseenTrackMetadata(t *testing.T) {
	tracks := newFakeTrackRepo()
	svc := NewHistoryService(&fakeHistoryRepo{}, tracks)

	_, err := svc.RecordPlay(context.Background(), 7, RecordPlayInput{
		CatalogID: "123",
		Action:    domain.ActionSkip,
		Track:     &domain.Track{Title: "Idol", Artist: "YOASOBI"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(tracks.upserted) != 1 || tracks.upserted[0] != "123" {
		t.Fatalf("upserted = %v, want the played track cached under its catalog id", tracks.upserted)
	}
}

func TestRecordPlay_SkipsCacheWhenTrackKnown(t *testing.T) {
	tracks := newFakeTrackRepo()
	tracks.existing["123"] = true
	svc := NewHistoryService(&fakeHistoryRepo{}, tracks)

	_, err := svc.RecordPlay(context.Background(), 7, RecordPlayInput{
		CatalogID: "123",
		Action:    domain.ActionDislike,
		Track:     &domain.Track{Title: "Idol"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(tracks.upserted) != 0 {
		t.Fatalf("upserted = %v, want no writes for a known track", tracks.upserted)
	}
}

func TestListHistory_JoinsCachedTracks(t *testing.T) {
	repo := &fakeHistoryRepo{entries: []domain.PlayHistory{
		{UserID: 7, CatalogID: "cached", Action: domain.ActionLike},
		{UserID: 7, CatalogID: "evicted", Action: domain.ActionSkip},
	}}
	tracks := newFakeTrackRepo()
	tracks.existing["cached"] = true

	svc := NewHistoryService(repo, tracks)

	records, err := svc.ListHistory(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Track == nil || records[0].Track.CatalogID != "cached" {
		t.Fatalf("first record track = %+v, want the cached track attached", records[0].Track)
	}
	if records[1].Track != nil {
		t.Fatal("record without cached track should carry nil metadata")
	}
}

func TestGetTrack(t *testing.T) {
	tracks := newFakeTrackRepo()
	tracks.existing["123"] = true
	svc := NewHistoryService(&fakeHistoryRepo{}, tracks)

	got, err := svc.GetTrack(context.Background(), "123")
	if err != nil {
		t.Fatal(err)
	}
	if got.CatalogID != "123" {
		t.Fatalf("track = %+v", got)
	}

	if _, err := svc.GetTrack(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown track")
	}
}

func TestRecordPlay_AppendErrorPropagates(t *testing.T) {
	wantErr := errors.New("db down")
	svc := NewHistoryService(&fakeHistoryRepo{err: wantErr}, newFakeTrackRepo())

	_, err := svc.RecordPlay(context.Background(), 7, RecordPlayInput{
		CatalogID: "123",
		Action:    domain.ActionLike,
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
