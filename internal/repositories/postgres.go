package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	crdbpgxv5 "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pulse/backend/internal/db"
	"github.com/pulse/backend/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Legacy rows may carry NULL relationship arrays; they are read as empty sets.
var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"name",
	"COALESCE(username, '')",
	"image",
	"COALESCE(followers, '{}'::TEXT[])",
	"COALESCE(following, '{}'::TEXT[])",
	"COALESCE(blocked_users, '{}'::TEXT[])",
	"created_at",
	"updated_at",
}

var selectUser = "SELECT " + strings.Join(userColumns, ", ") + " FROM users"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.Name,
		&user.Username,
		&user.Image,
		&user.Followers,
		&user.Following,
		&user.BlockedUsers,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, name, username, image, followers, following, blocked_users, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)
    `, user.ID, strings.ToLower(user.Email), user.Password, user.Name, user.Username, user.Image,
		emptyIfNil(user.Followers), emptyIfNil(user.Following), emptyIfNil(user.BlockedUsers),
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, selectUser+" WHERE id = $1", id)
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, selectUser+" WHERE email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// FindByUsername fetches a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, selectUser+" WHERE username = $1", username)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// FindMany returns the users named by refs, which may mix ids and emails.
// Unknown references are skipped.
func (r *PostgresUserRepository) FindMany(ctx context.Context, refs []string) ([]models.User, error) {
	var ids, emails []string
	for _, raw := range refs {
		ref := models.ParseUserRef(raw)
		switch {
		case ref.IsZero():
		case ref.Kind == models.RefLegacyEmail:
			emails = append(emails, ref.Value)
		default:
			ids = append(ids, ref.Value)
		}
	}
	if len(ids) == 0 && len(emails) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Or{sq.Eq{"id": ids}, sq.Eq{"email": emails}}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build batch user query: %w", err)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// UpdateProfile writes the non-nil profile fields and returns the updated record.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id string, changes models.ProfileChanges) (models.User, error) {
	update := psql.Update("users").Set("updated_at", time.Now().UTC())
	if changes.Name != nil {
		update = update.Set("name", *changes.Name)
	}
	if changes.Username != nil {
		update = update.Set("username", sq.Expr("NULLIF(?, '')", *changes.Username))
	}
	if changes.Image != nil {
		update = update.Set("image", *changes.Image)
	}

	query, args, err := update.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build profile update: %w", err)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrConflict
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// MutateUser applies fn to the locked user row and persists its relationship sets.
func (r *PostgresUserRepository) MutateUser(ctx context.Context, id string, fn func(user *models.User) error) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var result models.User
	err = crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		user, err := scanUser(tx.QueryRow(ctx, selectUser+" WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock user: %w", err)
		}

		if err := fn(&user); err != nil {
			return err
		}

		user.UpdatedAt = time.Now().UTC()
		if err := writeRelationships(ctx, tx, user); err != nil {
			return err
		}
		result = user
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return result, nil
}

// MutateRelationships locks both users in id order and persists both sides together.
func (r *PostgresUserRepository) MutateRelationships(ctx context.Context, actorID, targetID string, fn func(actor, target *models.User) error) error {
	if actorID == targetID {
		return fmt.Errorf("mutate relationships: actor and target are the same user")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectUser+" WHERE id IN ($1, $2) ORDER BY id FOR UPDATE", actorID, targetID)
		if err != nil {
			return fmt.Errorf("lock users: %w", err)
		}
		locked := make(map[string]models.User, 2)
		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("scan user: %w", err)
			}
			locked[user.ID] = user
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate locked users: %w", err)
		}

		actor, ok := locked[actorID]
		if !ok {
			return ErrNotFound
		}
		target, ok := locked[targetID]
		if !ok {
			return ErrNotFound
		}

		if err := fn(&actor, &target); err != nil {
			return err
		}

		now := time.Now().UTC()
		actor.UpdatedAt, target.UpdatedAt = now, now
		if err := writeRelationships(ctx, tx, actor); err != nil {
			return err
		}
		return writeRelationships(ctx, tx, target)
	})
}

func writeRelationships(ctx context.Context, tx pgx.Tx, user models.User) error {
	_, err := tx.Exec(ctx, `
        UPDATE users
        SET followers = $2, following = $3, blocked_users = $4, updated_at = $5
        WHERE id = $1
    `, user.ID, emptyIfNil(user.Followers), emptyIfNil(user.Following), emptyIfNil(user.BlockedUsers), user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update relationships: %w", err)
	}
	return nil
}

// DeleteCascade removes the user and every reference to it in one transaction:
// owned videos first, then relationship and like references, then the record.
func (r *PostgresUserRepository) DeleteCascade(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	email := strings.ToLower(user.Email)

	return crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            DELETE FROM videos
            WHERE user_id = $1 OR (user_id <> '' AND lower(user_id) = $2)
        `, user.ID, email); err != nil {
			return fmt.Errorf("delete owned videos: %w", err)
		}

		if _, err := tx.Exec(ctx, `
            UPDATE users
            SET followers = ARRAY(SELECT x FROM unnest(followers) AS x WHERE x <> $1 AND lower(x) <> $2),
                following = ARRAY(SELECT x FROM unnest(following) AS x WHERE x <> $1 AND lower(x) <> $2),
                blocked_users = ARRAY(SELECT x FROM unnest(blocked_users) AS x WHERE x <> $1 AND lower(x) <> $2)
            WHERE id <> $1
              AND EXISTS (
                SELECT 1 FROM unnest(followers || following || blocked_users) AS x
                WHERE x = $1 OR lower(x) = $2
              )
        `, user.ID, email); err != nil {
			return fmt.Errorf("strip relationship references: %w", err)
		}

		if _, err := tx.Exec(ctx, `
            UPDATE videos
            SET likes = ARRAY(SELECT x FROM unnest(likes) AS x WHERE x <> $1 AND lower(x) <> $2)
            WHERE EXISTS (SELECT 1 FROM unnest(likes) AS x WHERE x = $1 OR lower(x) = $2)
        `, user.ID, email); err != nil {
			return fmt.Errorf("strip like references: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, user.ID); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

var videoColumns = []string{
	"id",
	"user_id",
	"user_name",
	"title",
	"description",
	"video_url",
	"thumbnail_url",
	"controls",
	"width",
	"height",
	"quality",
	"views",
	"COALESCE(likes, '{}'::TEXT[])",
	"(SELECT count(*) FROM video_comments c WHERE c.video_id = videos.id)",
	"created_at",
	"updated_at",
}

var selectVideo = "SELECT " + strings.Join(videoColumns, ", ") + " FROM videos"

func scanVideo(row rowScanner) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID,
		&video.UserID,
		&video.UserName,
		&video.Title,
		&video.Description,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.Controls,
		&video.Transformation.Width,
		&video.Transformation.Height,
		&video.Transformation.Quality,
		&video.Views,
		&video.Likes,
		&video.CommentCount,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	return video, err
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, user_id, user_name, title, description, video_url, thumbnail_url, controls, width, height, quality, views, likes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `, video.ID, video.UserID, video.UserName, video.Title, video.Description, video.VideoURL, video.ThumbnailURL,
		video.Controls, video.Transformation.Width, video.Transformation.Height, video.Transformation.Quality,
		video.Views, emptyIfNil(video.Likes), video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a single video.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, selectVideo+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}
	return video, nil
}

// List returns the newest videos first.
func (r *PostgresVideoRepository) List(ctx context.Context, limit int) ([]models.Video, error) {
	return r.query(ctx, selectVideo+" ORDER BY created_at DESC LIMIT $1", limit)
}

// ListByOwner returns every video attributed to the user under any alias.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, user models.User) ([]models.Video, error) {
	email := strings.ToLower(user.Email)
	return r.query(ctx, selectVideo+`
        WHERE user_id = $1
           OR (user_id <> '' AND lower(user_id) = $2)
           OR (user_id = '' AND $3 <> '' AND lower(user_name) = $3)
        ORDER BY created_at DESC
    `, user.ID, email, emailLocalPart(email))
}

func emailLocalPart(email string) string {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return local
}

func (r *PostgresVideoRepository) query(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// UpdateDetails rewrites the title and description of a video.
func (r *PostgresVideoRepository) UpdateDetails(ctx context.Context, id, title, description string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, updated_at = $4
        WHERE id = $1
    `, id, title, description, time.Now().UTC())
	if err != nil {
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Video{}, ErrNotFound
	}

	video, err := scanVideo(conn.QueryRow(ctx, selectVideo+" WHERE id = $1", id))
	if err != nil {
		return models.Video{}, fmt.Errorf("reload video: %w", err)
	}
	return video, nil
}

// Delete removes a video and, through the foreign key, its comments.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter and returns the new value.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var views int64
	err = conn.QueryRow(ctx, `
        UPDATE videos SET views = views + 1 WHERE id = $1 RETURNING views
    `, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// MutateLikes locks the video row and replaces its like set with fn's result.
func (r *PostgresVideoRepository) MutateLikes(ctx context.Context, id string, fn func(likes []string) []string) ([]string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var result []string
	err = crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var likes []string
		err := tx.QueryRow(ctx, `
            SELECT COALESCE(likes, '{}'::TEXT[]) FROM videos WHERE id = $1 FOR UPDATE
        `, id).Scan(&likes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock video: %w", err)
		}

		next := emptyIfNil(fn(likes))
		if _, err := tx.Exec(ctx, `
            UPDATE videos SET likes = $2, updated_at = $3 WHERE id = $1
        `, id, next, time.Now().UTC()); err != nil {
			return fmt.Errorf("update likes: %w", err)
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddComment appends a comment and returns the video's new comment total.
func (r *PostgresVideoRepository) AddComment(ctx context.Context, comment models.Comment) (int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int
	err = crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO video_comments (id, video_id, user_id, user_name, text, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
        `, comment.ID, comment.VideoID, comment.UserID, comment.UserName, comment.Text, comment.CreatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return ErrNotFound
			}
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("insert comment: %w", err)
		}
		if err := tx.QueryRow(ctx, `
            SELECT count(*) FROM video_comments WHERE video_id = $1
        `, comment.VideoID).Scan(&total); err != nil {
			return fmt.Errorf("count comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListComments returns a video's comments in insertion order.
func (r *PostgresVideoRepository) ListComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, video_id, user_id, user_name, text, created_at
        FROM video_comments
        WHERE video_id = $1
        ORDER BY seq
    `, videoID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.VideoID, &c.UserID, &c.UserName, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// FindComment fetches a single comment on a video.
func (r *PostgresVideoRepository) FindComment(ctx context.Context, videoID, commentID string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var c models.Comment
	err = conn.QueryRow(ctx, `
        SELECT id, video_id, user_id, user_name, text, created_at
        FROM video_comments
        WHERE video_id = $1 AND id = $2
    `, videoID, commentID).Scan(&c.ID, &c.VideoID, &c.UserID, &c.UserName, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a single comment.
func (r *PostgresVideoRepository) DeleteComment(ctx context.Context, videoID, commentID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM video_comments WHERE video_id = $1 AND id = $2
    `, videoID, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ RelationshipRepository = (*PostgresUserRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
