package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lightbox/internal/geometry"
)

const sessionColumns = "id, mode, status, draft_text, category, ratio_kind, selection_json, offsets_json, trim_start_seconds, processed_json, seed_json, post_id, error_message, needs_attention, attention_reason, progress_stage, progress_percent, progress_message, last_heartbeat, created_at, updated_at, published_at"

// NewSession inserts a fresh draft in compose mode with the default
// aspect ratio.
func (s *Store) NewSession(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO sessions (
            mode, status, ratio_kind, trim_start_seconds,
            progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ModeCompose,
		StatusDraft,
		string(geometry.DefaultRatioKind),
		0.0,
		0.0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a session by identifier. A missing session returns
// (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Update persists changes to an existing session.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session is nil")
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE sessions
         SET mode = ?, status = ?, draft_text = ?, category = ?, ratio_kind = ?,
             selection_json = ?, offsets_json = ?, trim_start_seconds = ?,
             processed_json = ?, seed_json = ?, post_id = ?, error_message = ?,
             needs_attention = ?, attention_reason = ?,
             progress_stage = ?, progress_percent = ?, progress_message = ?,
             last_heartbeat = ?, updated_at = ?, published_at = ?
         WHERE id = ?`,
		sess.Mode,
		sess.Status,
		nullableString(sess.DraftText),
		nullableString(sess.Category),
		nullableString(sess.RatioKind),
		nullableString(sess.SelectionJSON),
		nullableString(sess.OffsetsJSON),
		sess.TrimStartSeconds,
		nullableString(sess.ProcessedJSON),
		nullableString(sess.SeedJSON),
		nullableString(sess.PostID),
		nullableString(sess.ErrorMessage),
		boolToInt(sess.NeedsAttention),
		nullableString(sess.AttentionReason),
		nullableString(sess.ProgressStage),
		sess.ProgressPercent,
		nullableString(sess.ProgressMessage),
		nullableTime(sess.LastHeartbeat),
		sess.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(sess.PublishedAt),
		sess.ID,
	); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// List returns sessions filtered by status set (or all sessions when no
// status is provided), most recently touched first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Session, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + sessionColumns + ` FROM sessions`
	orderClause := ` ORDER BY updated_at DESC, id DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Remove deletes a session by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearPublished removes only published sessions.
func (s *Store) ClearPublished(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE status = ?`, StatusPublished)
	if err != nil {
		return 0, fmt.Errorf("clear published: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all sessions.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	return res.RowsAffected()
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id               int64
		modeStr          string
		statusStr        string
		draftText        sql.NullString
		category         sql.NullString
		ratioKind        sql.NullString
		selectionJSON    sql.NullString
		offsetsJSON      sql.NullString
		trimStart        sql.NullFloat64
		processedJSON    sql.NullString
		seedJSON         sql.NullString
		postID           sql.NullString
		errorMessage     sql.NullString
		needsAttention   sql.NullInt64
		attentionReason  sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		publishedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&modeStr,
		&statusStr,
		&draftText,
		&category,
		&ratioKind,
		&selectionJSON,
		&offsetsJSON,
		&trimStart,
		&processedJSON,
		&seedJSON,
		&postID,
		&errorMessage,
		&needsAttention,
		&attentionReason,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&lastHeartbeatRaw,
		&createdRaw,
		&updatedRaw,
		&publishedRaw,
	); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:               id,
		Mode:             Mode(modeStr),
		Status:           Status(statusStr),
		DraftText:        draftText.String,
		Category:         category.String,
		RatioKind:        ratioKind.String,
		SelectionJSON:    selectionJSON.String,
		OffsetsJSON:      offsetsJSON.String,
		TrimStartSeconds: trimStart.Float64,
		ProcessedJSON:    processedJSON.String,
		SeedJSON:         seedJSON.String,
		PostID:           postID.String,
		ErrorMessage:     errorMessage.String,
		AttentionReason:  attentionReason.String,
		ProgressStage:    progressStage.String,
		ProgressPercent:  progressPercent.Float64,
		ProgressMessage:  progressMessage.String,
	}
	if needsAttention.Valid {
		sess.NeedsAttention = needsAttention.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		sess.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		sess.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			sess.LastHeartbeat = &heartbeat
		}
	}
	if publishedRaw.Valid {
		if published, err := parseTimeString(publishedRaw.String); err == nil {
			sess.PublishedAt = &published
		}
	}
	return sess, nil
}
