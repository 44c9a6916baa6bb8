// Package archive stores finished and in-progress games with every committed
// move in SQLite.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/benbeisheim/chessrules-backend/internal/model"
)

var ErrGameNotFound = errors.New("game not archived")

const schema = `
	CREATE TABLE IF NOT EXISTS games (
		game_id TEXT PRIMARY KEY,
		initial_fen TEXT NOT NULL,
		white_player_id TEXT NOT NULL DEFAULT '',
		black_player_id TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS moves (
		game_id TEXT NOT NULL,
		move_number INTEGER NOT NULL,
		from_sq TEXT NOT NULL,
		to_sq TEXT NOT NULL,
		kind TEXT NOT NULL,
		san TEXT NOT NULL DEFAULT '',
		fen_after TEXT NOT NULL,
		player_color TEXT NOT NULL,
		played_at TIMESTAMP NOT NULL,
		FOREIGN KEY(game_id) REFERENCES games(game_id),
		PRIMARY KEY(game_id, move_number)
	);
	CREATE INDEX IF NOT EXISTS idx_moves_game
	ON moves(game_id);
`

// Game is one row of the games table.
type Game struct {
	ID         string       `json:"gameId"`
	InitialFEN string       `json:"initialFen"`
	WhiteID    string       `json:"whitePlayerId"`
	BlackID    string       `json:"blackPlayerId"`
	Result     model.Result `json:"result"`
	StartedAt  time.Time    `json:"startedAt"`
}

// Move is one archived ply.
type Move struct {
	Number   int            `json:"moveNumber"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Kind     model.MoveKind `json:"kind"`
	SAN      string         `json:"san"`
	FENAfter string         `json:"fenAfter"`
	Color    model.Color    `json:"color"`
	PlayedAt time.Time      `json:"playedAt"`
}

type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive database at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	// A single connection keeps writes serialised and in-memory databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting archive pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return &Archive{db: db, now: time.Now}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// CreateGame registers a new game. Re-creating an existing id is a no-op.
func (a *Archive) CreateGame(ctx context.Context, gameID, initialFEN string) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO games (game_id, initial_fen, started_at) VALUES (?, ?, ?)",
		gameID, initialFEN, a.now().UTC())
	if err != nil {
		return fmt.Errorf("archiving game %s: %w", gameID, err)
	}
	return nil
}

// SetPlayer records who took a seat.
func (a *Archive) SetPlayer(ctx context.Context, gameID string, color model.Color, playerID string) error {
	column := "white_player_id"
	if color == model.Black {
		column = "black_player_id"
	}
	res, err := a.db.ExecContext(ctx, "UPDATE games SET "+column+" = ? WHERE game_id = ?", playerID, gameID)
	if err != nil {
		return fmt.Errorf("archiving %s player of %s: %w", color, gameID, err)
	}
	return requireRow(res, gameID)
}

// AppendMove stores a committed ply.
func (a *Archive) AppendMove(ctx context.Context, gameID string, m model.MoveRecord, san, fenAfter string) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO moves (game_id, move_number, from_sq, to_sq, kind, san, fen_after, player_color, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, m.Number, m.From.Notation(), m.To.Notation(), string(m.Kind), san, fenAfter, string(m.Color), a.now().UTC())
	if err != nil {
		return fmt.Errorf("archiving move %d of %s: %w", m.Number, gameID, err)
	}
	return nil
}

// FinishGame stores the result of a decided game.
func (a *Archive) FinishGame(ctx context.Context, gameID string, result model.Result) error {
	res, err := a.db.ExecContext(ctx, "UPDATE games SET result = ? WHERE game_id = ?", string(result), gameID)
	if err != nil {
		return fmt.Errorf("archiving result of %s: %w", gameID, err)
	}
	return requireRow(res, gameID)
}

func (a *Archive) Game(ctx context.Context, gameID string) (Game, error) {
	var g Game
	var result string
	err := a.db.QueryRowContext(ctx, `
		SELECT game_id, initial_fen, white_player_id, black_player_id, result, started_at
		FROM games WHERE game_id = ?`, gameID).
		Scan(&g.ID, &g.InitialFEN, &g.WhiteID, &g.BlackID, &result, &g.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	if err != nil {
		return Game{}, fmt.Errorf("reading game %s: %w", gameID, err)
	}
	g.Result = model.Result(result)
	return g, nil
}

// Moves returns the archived plies of a game in order.
func (a *Archive) Moves(ctx context.Context, gameID string) ([]Move, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT move_number, from_sq, to_sq, kind, san, fen_after, player_color, played_at
		FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("reading moves of %s: %w", gameID, err)
	}
	defer rows.Close()

	moves := []Move{}
	for rows.Next() {
		var m Move
		var kind, color string
		if err := rows.Scan(&m.Number, &m.From, &m.To, &kind, &m.SAN, &m.FENAfter, &color, &m.PlayedAt); err != nil {
			return nil, fmt.Errorf("scanning move of %s: %w", gameID, err)
		}
		m.Kind = model.MoveKind(kind)
		m.Color = model.Color(color)
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

func requireRow(res sql.Result, gameID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	return nil
}
