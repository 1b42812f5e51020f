package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/learning-roadmaps/internal/models"
	"github.com/terra-clan/learning-roadmaps/internal/registry"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 1
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	poolConfig.MaxConnLifetime = 30 * time.Minute
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const (
	insertCatalogEntry = `
		INSERT INTO catalog_entries (position, slug, title, emoji, color, description, tags, coming_soon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	insertPhase = `
		INSERT INTO roadmap_phases (roadmap_slug, position, phase_id, title, emoji, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	insertTopic = `
		INSERT INTO phase_topics (roadmap_slug, phase_position, position, topic_id, title, explanation, code_example, exercise, common_mistakes, interview_questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
)

// ReplaceContent deletes the stored content and inserts the registry's
// catalog and assembled phases in one transaction
func (r *PostgresRepository) ReplaceContent(ctx context.Context, reg *registry.Registry) error {
	batch := &pgx.Batch{}

	for i, e := range reg.AllRoadmaps() {
		batch.Queue(insertCatalogEntry,
			i, e.Slug, e.Title, e.Emoji, e.Color, e.Description, nonNil(e.Tags), e.ComingSoon,
		)
	}

	for _, slug := range reg.PhaseSlugs() {
		phases, _ := reg.RoadmapPhases(slug)
		for pi, p := range phases {
			batch.Queue(insertPhase, slug, pi, p.ID, p.Title, p.Emoji, p.Description)

			for ti, t := range p.Topics {
				mistakesJSON, err := json.Marshal(nonNil(t.CommonMistakes))
				if err != nil {
					return fmt.Errorf("failed to marshal common mistakes: %w", err)
				}
				questionsJSON, err := json.Marshal(nonNil(t.InterviewQuestions))
				if err != nil {
					return fmt.Errorf("failed to marshal interview questions: %w", err)
				}

				batch.Queue(insertTopic,
					slug, pi, ti, t.ID, t.Title, t.Explanation, t.CodeExample, t.Exercise,
					mistakesJSON, questionsJSON,
				)
			}
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"phase_topics", "roadmap_phases", "catalog_entries"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit content: %w", err)
	}

	return nil
}

// Load builds a registry from the stored content
func (r *PostgresRepository) Load(ctx context.Context) (*registry.Registry, error) {
	catalog, err := r.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, ErrNoContent
	}

	phases, err := r.loadPhases(ctx)
	if err != nil {
		return nil, err
	}

	topics, err := r.loadTopics(ctx)
	if err != nil {
		return nil, err
	}

	grouped, err := groupContent(phases, topics)
	if err != nil {
		return nil, err
	}

	return registry.New(catalog, grouped), nil
}

func (r *PostgresRepository) loadCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	query := `
		SELECT slug, title, emoji, color, description, tags, coming_soon
		FROM catalog_entries
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	defer rows.Close()

	var catalog []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.Slug, &e.Title, &e.Emoji, &e.Color, &e.Description, &e.Tags, &e.ComingSoon); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		if len(e.Tags) == 0 {
			e.Tags = nil
		}
		catalog = append(catalog, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog: %w", err)
	}
	return catalog, nil
}

// phaseRow is a stored phase without its topics
type phaseRow struct {
	slug     string
	position int
	phase    models.Phase
}

// topicRow is a stored topic with the position of its phase
type topicRow struct {
	slug          string
	phasePosition int
	topic         models.Topic
}

func (r *PostgresRepository) loadPhases(ctx context.Context) ([]phaseRow, error) {
	query := `
		SELECT roadmap_slug, position, phase_id, title, emoji, description
		FROM roadmap_phases
		ORDER BY roadmap_slug, position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load phases: %w", err)
	}
	defer rows.Close()

	var phases []phaseRow
	for rows.Next() {
		var p phaseRow
		if err := rows.Scan(&p.slug, &p.position, &p.phase.ID, &p.phase.Title, &p.phase.Emoji, &p.phase.Description); err != nil {
			return nil, fmt.Errorf("failed to scan phase: %w", err)
		}
		phases = append(phases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phases: %w", err)
	}
	return phases, nil
}

func (r *PostgresRepository) loadTopics(ctx context.Context) ([]topicRow, error) {
	query := `
		SELECT roadmap_slug, phase_position, topic_id, title, explanation, code_example, exercise, common_mistakes, interview_questions
		FROM phase_topics
		ORDER BY roadmap_slug, phase_position, position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	defer rows.Close()

	var topics []topicRow
	for rows.Next() {
		var t topicRow
		var mistakesJSON, questionsJSON []byte

		err := rows.Scan(
			&t.slug,
			&t.phasePosition,
			&t.topic.ID,
			&t.topic.Title,
			&t.topic.Explanation,
			&t.topic.CodeExample,
			&t.topic.Exercise,
			&mistakesJSON,
			&questionsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}

		if err := json.Unmarshal(mistakesJSON, &t.topic.CommonMistakes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal common mistakes: %w", err)
		}
		if err := json.Unmarshal(questionsJSON, &t.topic.InterviewQuestions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interview questions: %w", err)
		}
		if len(t.topic.CommonMistakes) == 0 {
			t.topic.CommonMistakes = nil
		}
		if len(t.topic.InterviewQuestions) == 0 {
			t.topic.InterviewQuestions = nil
		}

		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}
	return topics, nil
}

// groupContent attaches ordered topic rows to their phases and groups the
// phases by roadmap slug
func groupContent(phases []phaseRow, topics []topicRow) (map[string][]models.Phase, error) {
	type phaseKey struct {
		slug     string
		position int
	}

	grouped := make(map[string][]models.Phase)
	index := make(map[phaseKey]int, len(phases))
	for _, p := range phases {
		index[phaseKey{p.slug, p.position}] = len(grouped[p.slug])
		grouped[p.slug] = append(grouped[p.slug], p.phase)
	}

	for _, t := range topics {
		i, ok := index[phaseKey{t.slug, t.phasePosition}]
		if !ok {
			return nil, fmt.Errorf("topic %s/%s references missing phase position %d", t.slug, t.topic.ID, t.phasePosition)
		}
		list := grouped[t.slug]
		list[i].Topics = append(list[i].Topics, t.topic)
	}

	return grouped, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
