package storage

import (
	"testing"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func playedGame(t *testing.T) *model.Game {
	t.Helper()
	g := model.NewGame()
	for _, s := range []string{"e2", "e4", "e7", "e5", "g1", "f3"} {
		_, err := g.HandleSelection(8-int(s[1]-'0'), int(s[0]-'a'))
		testutil.AssertNoError(t, err)
	}
	return g
}

func TestSaveAndLoadGame(t *testing.T) {
	s := openTestStore(t)
	g := playedGame(t)

	want := Snapshot{Record: g.Record(), WhiteID: "alice", BlackID: "bob"}
	testutil.AssertNoError(t, s.SaveGame("g1", want))

	got, found, err := s.LoadGame("g1")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, got.WhiteID, "alice")
	testutil.AssertEqual(t, got.BlackID, "bob")
	testutil.AssertEqual(t, got.Record.History, want.Record.History)

	restored, err := model.RestoreGame(got.Record)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, restored.FEN(), g.FEN())
}

func TestLoadMissingGame(t *testing.T) {
	s := openTestStore(t)
	_, found, err := s.LoadGame("nope")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, found)
}

func TestListAndDeleteGames(t *testing.T) {
	s := openTestStore(t)
	rec := model.NewGame().Record()
	for _, id := range []string{"b", "a", "c"} {
		testutil.AssertNoError(t, s.SaveGame(id, Snapshot{Record: rec}))
	}

	ids, err := s.ListGames()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ids, []string{"a", "b", "c"})

	testutil.AssertNoError(t, s.DeleteGame("b"))
	ids, err = s.ListGames()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, ids, []string{"a", "c"})

	_, found, err := s.LoadGame("b")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, found)
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.SaveGame("g1", Snapshot{Record: model.NewGame().Record(), WhiteID: "alice"}))
	testutil.AssertNoError(t, s.Close())

	s, err = Open(dir)
	testutil.AssertNoError(t, err)
	defer s.Close()
	snap, found, err := s.LoadGame("g1")
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, snap.WhiteID, "alice")
}
