package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

// --- PERSISTANCE (DB) ---

// UserRepository est un Port Secondaire (Driven).
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByLogin cherche par email normalisé OU username normalisé.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// PostRepository expose des MUTATIONS ATOMIQUES pour les collections partagées
// (likes, commentaires). Le service ne fait JAMAIS de read-modify-write sur
// ces collections : c'est le store qui garantit l'absence de lost updates.
type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, postID string) (*domain.Post, error)
	// FindByTags retourne les posts dont le set de tags intersecte le filtre.
	// Filtre vide = tous les posts.
	FindByTags(ctx context.Context, tags []string) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, postID string) error
	// DeleteByAuthor supprime tous les posts d'un compte (cascade, best-effort).
	DeleteByAuthor(ctx context.Context, authorID string) error

	// Primitives atomiques (une seule instruction côté store) :
	AddLike(ctx context.Context, postID, userID string) (*domain.Post, error)
	RemoveLike(ctx context.Context, postID, userID string) (*domain.Post, error)
	AppendComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Post, error)
	RemoveComment(ctx context.Context, postID, commentID string) (*domain.Post, error)
}

// --- CACHE (TAG INDEX) ---

// TagIndex est le set partagé de tous les tags jamais observés.
// Merge DOIT être une union atomique côté store (SADD multi-membres),
// jamais un "lire le set, unionner chez l'appelant, réécrire le tout".
type TagIndex interface {
	Merge(ctx context.Context, tags []string) error
	// All retourne le set courant ; clé absente = set vide, pas une erreur.
	All(ctx context.Context) ([]string, error)
}

// --- MESSAGERIE (BROKER) ---

// EventPublisher notifie les collaborateurs externes (best-effort :
// un broker indisponible ne doit jamais faire échouer l'opération métier).
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, userID, email string) error
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostDeleted(ctx context.Context, postID string) error
}

// --- SÉCURITÉ (CRYPTO) ---

// PasswordHasher abstrait l'algorithme de hachage (Argon2, Bcrypt)
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenKind distingue les deux secrets de signature.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenClaims est le payload minimal embarqué dans chaque token.
type TokenClaims struct {
	UserID string
	Email  string
}

// TokenProvider abstrait la génération/vérification de JWT.
// Les deux tokens d'une paire sont signés avec des secrets DISTINCTS.
type TokenProvider interface {
	IssuePair(userID, email string) (access string, refresh string, err error)
	Verify(token string, kind TokenKind) (*TokenClaims, error)
	AccessExpiry() time.Duration // pour le champ ExpiresIn de AuthResponse
}
