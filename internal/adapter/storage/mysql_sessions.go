package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digistall/digistall/internal/core/domain"
)

func (m *MySQLAdapter) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var (
		s     domain.Session
		email sql.NullString
		name  sql.NullString
		login sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT s.token, s.user_id, s.expires, u.email, u.name, u.github_login
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, token,
	).Scan(&s.Token, &s.UserID, &s.Expires, &email, &name, &login)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if email.Valid {
		s.Email = &email.String
	}
	if name.Valid {
		s.Name = &name.String
	}
	if login.Valid {
		s.GithubLogin = &login.String
	}
	return &s, nil
}

func (m *MySQLAdapter) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
