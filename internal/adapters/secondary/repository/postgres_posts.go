package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

// DTO interne pour mapper le JSONB des commentaires sans polluer le Domain
// avec des tags JSON. La structure est récursive, comme l'entité.
type commentDTO struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	AuthorID  string       `json:"author_id"`
	Replies   []commentDTO `json:"replies"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type PostgresPostRepo struct {
	db *pgxpool.Pool
}

func NewPostgresPostRepo(db *pgxpool.Pool) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

const postColumns = `id, title, content, image_url, tags, likes, comments, author_id, created_at, updated_at`

func (r *PostgresPostRepo) Save(ctx context.Context, post *domain.Post) error {
	q := `
		INSERT INTO posts (id, title, content, image_url, tags, likes, comments, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	commentsJSON, err := marshalComments(post.Comments)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, q,
		post.ID, post.Title, post.Content, post.ImageURL,
		post.Tags, post.Likes, commentsJSON,
		post.AuthorID, post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *PostgresPostRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return r.scanPost(r.db.QueryRow(ctx, q, postID))
}

// FindByTags : `tags && $1` est l'opérateur d'intersection des arrays Postgres.
// Filtre vide = pas de clause (tous les posts).
func (r *PostgresPostRepo) FindByTags(ctx context.Context, tags []string) ([]*domain.Post, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(tags) == 0 {
		rows, err = r.db.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE tags && $1 ORDER BY created_at DESC`, tags)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectRows(rows)
}

// Update ne touche que les champs simples (titre, contenu, image, tags).
// Les collections partagées (likes, comments) ont leurs propres primitives
// atomiques plus bas — on ne les réécrit JAMAIS en bloc ici.
func (r *PostgresPostRepo) Update(ctx context.Context, post *domain.Post) error {
	q := `
		UPDATE posts
		SET title = $1, content = $2, image_url = $3, tags = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, q, post.Title, post.Content, post.ImageURL, post.Tags, post.UpdatedAt, post.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostgresPostRepo) Delete(ctx context.Context, postID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostgresPostRepo) DeleteByAuthor(ctx context.Context, authorID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM posts WHERE author_id = $1`, authorID)
	return err
}

// --- PRIMITIVES ATOMIQUES ---
// Chaque mutation est UNE instruction UPDATE conditionnelle : la garde et la
// modification s'exécutent dans le même ordre de verrouillage de ligne.
// Deux likes concurrents de comptes différents passent tous les deux ;
// deux likes du même compte -> un seul passe, l'autre part en conflit.

func (r *PostgresPostRepo) AddLike(ctx context.Context, postID, userID string) (*domain.Post, error) {
	q := `
		UPDATE posts
		SET likes = array_append(likes, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(likes))
		RETURNING ` + postColumns

	post, err := r.scanPost(r.db.QueryRow(ctx, q, postID, userID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			// Zéro ligne touchée : soit le post n'existe pas, soit le like y était déjà.
			return nil, r.disambiguate(ctx, postID, domain.ErrAlreadyLiked)
		}
		return nil, err
	}
	return post, nil
}

func (r *PostgresPostRepo) RemoveLike(ctx context.Context, postID, userID string) (*domain.Post, error) {
	q := `
		UPDATE posts
		SET likes = array_remove(likes, $2), updated_at = $3
		WHERE id = $1 AND $2 = ANY(likes)
		RETURNING ` + postColumns

	post, err := r.scanPost(r.db.QueryRow(ctx, q, postID, userID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, r.disambiguate(ctx, postID, domain.ErrNotLiked)
		}
		return nil, err
	}
	return post, nil
}

// AppendComment : concaténation JSONB atomique. Deux commentateurs simultanés
// sont tous deux conservés (pas de read-modify-write côté Go).
func (r *PostgresPostRepo) AppendComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Post, error) {
	if comment.Depth() > domain.MaxCommentDepth {
		return nil, domain.ErrCommentTooDeep
	}

	commentJSON, err := json.Marshal(toCommentDTO(*comment))
	if err != nil {
		return nil, fmt.Errorf("marshal comment: %w", err)
	}

	q := `
		UPDATE posts
		SET comments = comments || $2::jsonb, updated_at = $3
		WHERE id = $1
		RETURNING ` + postColumns

	// || sur un objet l'ajoute en fin d'array : on wrappe dans un array d'un élément.
	return r.scanPost(r.db.QueryRow(ctx, q, postID, "["+string(commentJSON)+"]", time.Now().UTC()))
}

// RemoveComment : ré-agrégation filtrée côté serveur, toujours en une instruction.
func (r *PostgresPostRepo) RemoveComment(ctx context.Context, postID, commentID string) (*domain.Post, error) {
	q := `
		UPDATE posts
		SET comments = (
			SELECT COALESCE(jsonb_agg(c), '[]'::jsonb)
			FROM jsonb_array_elements(posts.comments) AS c
			WHERE c->>'id' <> $2
		), updated_at = $3
		WHERE id = $1
		RETURNING ` + postColumns

	return r.scanPost(r.db.QueryRow(ctx, q, postID, commentID, time.Now().UTC()))
}

// --- Helpers pour éviter la duplication de code ---

func (r *PostgresPostRepo) scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	var commentsJSON []byte

	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.ImageURL,
		&p.Tags, &p.Likes, &commentsJSON,
		&p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("db: scan post: %w", err)
	}

	p.Comments = unmarshalComments(commentsJSON)
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func (r *PostgresPostRepo) collectRows(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		p, err := r.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// disambiguate lève l'ambiguïté "zéro ligne" : post absent -> NotFound,
// post présent -> l'erreur de conflit passée en argument.
func (r *PostgresPostRepo) disambiguate(ctx context.Context, postID string, conflict error) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrPostNotFound
	}
	return conflict
}

// --- Mapping JSONB <-> Domaine ---

func toCommentDTO(c domain.Comment) commentDTO {
	replies := make([]commentDTO, len(c.Replies))
	for i, r := range c.Replies {
		replies[i] = toCommentDTO(r)
	}
	return commentDTO{
		ID:        c.ID,
		Content:   c.Content,
		AuthorID:  c.AuthorID,
		Replies:   replies,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromCommentDTO(d commentDTO) domain.Comment {
	replies := make([]domain.Comment, len(d.Replies))
	for i, r := range d.Replies {
		replies[i] = fromCommentDTO(r)
	}
	return domain.Comment{
		ID:        d.ID,
		Content:   d.Content,
		AuthorID:  d.AuthorID,
		Replies:   replies,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func marshalComments(comments []domain.Comment) ([]byte, error) {
	dtos := make([]commentDTO, len(comments))
	for i, c := range comments {
		dtos[i] = toCommentDTO(c)
	}
	return json.Marshal(dtos)
}

func unmarshalComments(data []byte) []domain.Comment {
	var dtos []commentDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return []domain.Comment{} // Fallback safe
	}

	comments := make([]domain.Comment, len(dtos))
	for i, d := range dtos {
		comments[i] = fromCommentDTO(d)
	}
	return comments
}
