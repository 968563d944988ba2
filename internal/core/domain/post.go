package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxCommentDepth borne la récursion des réponses.
// Le modèle abstrait est illimité, mais en pratique on refuse d'ingérer
// un arbre plus profond que ça (protection contre les payloads malicieux).
const MaxCommentDepth = 16

// Comment est une structure récursive : chaque réponse a exactement la même
// forme que le commentaire racine (Replies est une liste de Comment).
type Comment struct {
	ID        string
	Content   string
	AuthorID  string
	Replies   []Comment
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post est la racine d'agrégat : likes et commentaires ne se modifient
// QU'À travers lui (et via les primitives atomiques du repository).
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string
	Tags      []string // Dédupliqués, ordre non significatif
	Likes     []string // IDs des comptes ayant liké (set : pas de doublons)
	Comments  []Comment
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- FACTORIES ---

func NewPost(authorID, title, content, imageURL string, tags []string) (*Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" || len(tags) == 0 {
		return nil, ErrMissingFields
	}

	now := time.Now().UTC()
	return &Post{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Content:   content,
		ImageURL:  strings.TrimSpace(imageURL),
		Tags:      NormalizeTags(tags),
		Likes:     []string{},
		Comments:  []Comment{},
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NewComment(authorID, content string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMissingFields
	}
	now := time.Now().UTC()
	return &Comment{
		ID:        uuid.NewString(),
		Content:   content,
		AuthorID:  authorID,
		Replies:   []Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// --- COMPORTEMENTS ---

// HasLike indique si le compte a déjà liké ce post (le like est idempotent).
func (p *Post) HasLike(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment cherche un commentaire par ID au premier niveau uniquement.
// Les réponses imbriquées se suppriment via leur commentaire parent.
func (p *Post) FindComment(commentID string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// Depth retourne la profondeur de l'arbre de réponses (1 = pas de réponse).
func (c *Comment) Depth() int {
	max := 0
	for i := range c.Replies {
		if d := c.Replies[i].Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// --- NORMALISATION ---

// NormalizeTags trim + déduplique en conservant l'ordre d'arrivée.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
