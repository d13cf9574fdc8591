package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/cloo-solutions/templeqa/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const chunkTable = "document_chunks"

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 100

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ChunkRepository stores the document corpus and its embeddings in
// Postgres. Rows are keyed by position so search hits map straight back to
// the chunk list.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

// Search returns the k nearest positions by cosine distance.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, k int) ([]domain.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(embedding)

	query, args, err := psql.
		Select("position").
		Column(sq.Expr("1.0 / (1.0 + (embedding <=> ?)) AS score", vec)).
		From(chunkTable).
		OrderByClause("embedding <=> ?", vec).
		OrderBy("position").
		Limit(uint64(k)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []domain.Hit
	for rows.Next() {
		var hit domain.Hit
		var score float64
		if err := rows.Scan(&hit.Position, &score); err != nil {
			return nil, err
		}
		hit.Score = float32(score)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// AllChunks returns every chunk in position order.
func (r *ChunkRepository) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	query, args, err := psql.
		Select("position", "id", "source", "text").
		From(chunkTable).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chunk query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.Position, &c.ID, &c.Source, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Count returns the number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(chunkTable).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReplaceAll swaps the stored corpus for chunks and vectors in a single
// transaction. The two slices must line up by position.
func (r *ChunkRepository) ReplaceAll(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrIndexMismatch.Message,
			fmt.Errorf("%d chunks, %d vectors", len(chunks), len(vectors)))
	}
	if err := domain.ValidateChunks(chunks); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := replaceAll(ctx, tx, chunks, vectors); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func replaceAll(ctx context.Context, tx pgx.Tx, chunks []domain.Chunk, vectors [][]float32) error {
	if _, err := tx.Exec(ctx, "DELETE FROM "+chunkTable); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	for start := 0; start < len(chunks); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		insert := psql.Insert(chunkTable).Columns("position", "id", "source", "text", "embedding")
		for i := start; i < end; i++ {
			c := chunks[i]
			insert = insert.Values(c.Position, c.ID, c.Source, c.Text, pgvector.NewVector(vectors[i]))
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert chunks %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}
