package ports

import (
	"context"
	"time"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

// --- INPUTS (Command Pattern) ---
// Utiliser des structs permet d'ajouter des champs optionnels plus tard sans casser la signature.

type RegisterCmd struct {
	Name     string
	Email    string
	Username string
	Password string
	ImageURL string
}

type LoginCmd struct {
	// Login accepte indifféremment l'email ou le username (insensible à la casse).
	Login    string
	Password string
}

type UpdateProfileCmd struct {
	UserID string
	// Pointeurs pour distinguer "pas de changement" (nil) de "mettre à vide".
	Name     *string
	Email    *string
	Username *string
	Password *string
	ImageURL *string
}

type CreatePostCmd struct {
	AuthorID string
	Title    string
	Content  string
	ImageURL string
	Tags     []string
}

type UpdatePostCmd struct {
	PostID   string
	ActorID  string // Identité authentifiée, fournie par le middleware, jamais par le client
	Title    *string
	Content  *string
	ImageURL *string
	Tags     []string // nil = pas de changement
}

// --- OUTPUTS ---

type AuthResponse struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// --- PORTS PRIMAIRES (Driving) ---
// C'est l'API que l'Hexagone expose au monde extérieur (HTTP, CLI, tests).

type IdentityService interface {
	// Authentification
	Register(ctx context.Context, cmd RegisterCmd) (*AuthResponse, error)
	Login(ctx context.Context, cmd LoginCmd) (*AuthResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error)

	// Résolution d'identité (utilisé par le middleware auth).
	// Retourne TOUJOURS un user sans champs sensibles.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)

	// Gestion de compte
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCmd) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type ContentService interface {
	CreatePost(ctx context.Context, cmd CreatePostCmd) (*domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	ListPosts(ctx context.Context, filterTags []string) ([]*domain.Post, error)
	UpdatePost(ctx context.Context, cmd UpdatePostCmd) (*domain.Post, error)
	DeletePost(ctx context.Context, postID, actorID string) error

	// Interactions sociales (toutes atomiques côté store)
	LikePost(ctx context.Context, postID, actorID string) (*domain.Post, error)
	UnlikePost(ctx context.Context, postID, actorID string) (*domain.Post, error)
	CommentOnPost(ctx context.Context, postID, actorID, content string) (*domain.Post, error)
	DeleteComment(ctx context.Context, postID, commentID, actorID string) (*domain.Post, error)

	// Index des tags (découverte)
	ListTags(ctx context.Context) ([]string, error)
}
