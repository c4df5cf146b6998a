package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// Repository persists the catalog (articles, users, events) in Postgres.
type Repository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var (
	_ ports.ArticleRepository = (*Repository)(nil)
	_ ports.UserRepository    = (*Repository)(nil)
	_ ports.EventRepository   = (*Repository)(nil)
)

// NewRepository wires a sql.DB implementation.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          BIGSERIAL PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS articles (
    id           BIGSERIAL PRIMARY KEY,
    url          TEXT NOT NULL UNIQUE,
    title        TEXT NOT NULL,
    content      TEXT,
    source       TEXT NOT NULL,
    language     VARCHAR(20),
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_events (
    id          BIGSERIAL PRIMARY KEY,
    user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    article_id  BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    event_type  VARCHAR(32) NOT NULL,
    event_value SMALLINT,
    event_ts    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_user_events_user ON user_events (user_id, event_ts DESC);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles (published_at DESC, created_at DESC);
`

// Migrate creates the catalog tables if they are absent.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Upsert creates or updates an article keyed by URL. An existing row keeps
// its published timestamp unless it was previously absent.
func (r *Repository) Upsert(ctx context.Context, article domain.Article) error {
	query := `INSERT INTO articles (url, title, content, source, language, published_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (url) DO UPDATE
              SET title = EXCLUDED.title,
                  content = EXCLUDED.content,
                  source = EXCLUDED.source,
                  language = EXCLUDED.language,
                  published_at = COALESCE(articles.published_at, EXCLUDED.published_at)`

	_, err := r.db.ExecContext(ctx, query,
		article.URL,
		article.Title,
		nullString(article.Content),
		article.Source,
		nullString(article.Language),
		nullTime(article.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

// ListLatest returns articles most-recent-first.
func (r *Repository) ListLatest(ctx context.Context, limit, offset int) ([]domain.Article, error) {
	rows, err := r.sb.
		Select(articleColumns...).
		From("articles").
		OrderBy("published_at DESC NULLS LAST", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query latest articles: %w", err)
	}
	return scanArticles(rows)
}

// ListCandidates returns the bounded candidate pool, most-recent-first.
func (r *Repository) ListCandidates(ctx context.Context, limit int) ([]domain.Article, error) {
	return r.ListLatest(ctx, limit, 0)
}

// GetByIDs returns articles ordered as requested, skipping missing ids.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.sb.
		Select(articleColumns...).
		From("articles").
		Where("id = ANY(?)", pq.Int64Array(ids)).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query articles by ids: %w", err)
	}

	fetched, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Article, len(fetched))
	for _, a := range fetched {
		byID[a.ID] = a
	}

	out := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Ensure returns the user for the external id, creating it if absent.
func (r *Repository) Ensure(ctx context.Context, externalID string) (domain.User, error) {
	query := `INSERT INTO users (external_id) VALUES ($1)
              ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
              RETURNING id, external_id, created_at`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, externalID).
		Scan(&user.ID, &user.ExternalID, &user.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return user, nil
}

// Add appends one interaction event. Events are never updated or deleted.
func (r *Repository) Add(ctx context.Context, userID, articleID int64, kind domain.EventKind) error {
	_, err := r.sb.
		Insert("user_events").
		Columns("user_id", "article_id", "event_type", "event_value").
		Values(userID, articleID, string(kind), 1).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// latestEventTextsQuery resolves repeated events for a (user, article) pair
// to the most recent one, then keeps articles whose winning event matches
// the requested kind, latest first.
const latestEventTextsQuery = `
SELECT t.title, t.content FROM (
    SELECT DISTINCT ON (e.article_id)
           e.article_id, e.event_type, e.event_ts, a.title, a.content
    FROM user_events e
    JOIN articles a ON a.id = e.article_id
    WHERE e.user_id = $1
    ORDER BY e.article_id, e.event_ts DESC, e.id DESC
) t
WHERE t.event_type = $2
ORDER BY t.event_ts DESC
LIMIT $3`

// LikedTexts returns title+body texts of articles whose most recent event
// by the user is a like, latest first.
func (r *Repository) LikedTexts(ctx context.Context, userID int64, limit int) ([]string, error) {
	return r.eventTexts(ctx, userID, domain.EventLike, limit)
}

// DislikedTexts mirrors LikedTexts for dislikes.
func (r *Repository) DislikedTexts(ctx context.Context, userID int64, limit int) ([]string, error) {
	return r.eventTexts(ctx, userID, domain.EventDislike, limit)
}

func (r *Repository) eventTexts(ctx context.Context, userID int64, kind domain.EventKind, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, latestEventTextsQuery, userID, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query %s texts: %w", kind, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var title string
		var content sql.NullString
		if err := rows.Scan(&title, &content); err != nil {
			return nil, fmt.Errorf("scan %s text: %w", kind, err)
		}
		text := title
		if content.Valid && content.String != "" {
			text = title + "\n" + content.String
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return texts, nil
}

// RatedArticleIDs returns every article id the user has rated with any
// event kind.
func (r *Repository) RatedArticleIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.sb.
		Select("DISTINCT article_id").
		From("user_events").
		Where(sq.Eq{"user_id": userID}).
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query rated ids: %w", err)
	}
	defer rows.Close()

	rated := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rated id: %w", err)
		}
		rated[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return rated, nil
}

var articleColumns = []string{"id", "url", "title", "content", "source", "language", "published_at", "created_at"}

func scanArticles(rows *sql.Rows) ([]domain.Article, error) {
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var (
			a                 domain.Article
			content, language sql.NullString
			publishedAt       sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &content, &a.Source, &language, &publishedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Content = content.String
		a.Language = language.String
		if publishedAt.Valid {
			a.PublishedAt = publishedAt.Time
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
