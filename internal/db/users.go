package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	UserID    int64     `json:"user_id"`
	DiscordID string    `json:"discord_id"`
	UserName  string    `json:"user_name"`
	RegDate   time.Time `json:"reg_date"`
}

// GetOrCreateUser returns the local user for a Discord account, registering
// it on first contact. The insert is idempotent.
func (db *DB) GetOrCreateUser(ctx context.Context, discordID, userName string) (*User, error) {
	_, err := db.pool.Exec(ctx,
		"INSERT INTO users (discord_id, user_name) VALUES ($1, $2) ON CONFLICT (discord_id) DO NOTHING",
		discordID, userName,
	)
	if err != nil {
		return nil, err
	}
	return db.GetUserByDiscordID(ctx, discordID)
}

func (db *DB) GetUserByDiscordID(ctx context.Context, discordID string) (*User, error) {
	var u User
	err := db.pool.QueryRow(ctx,
		"SELECT user_id, discord_id, user_name, reg_date FROM users WHERE discord_id = $1",
		discordID,
	).Scan(&u.UserID, &u.DiscordID, &u.UserName, &u.RegDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
