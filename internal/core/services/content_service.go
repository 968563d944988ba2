package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

// ContentService implémente ports.ContentService.
// Règle d'or : toute mutation d'une collection partagée (likes, commentaires,
// index de tags) passe par une primitive atomique du store. Le service ne fait
// jamais "lire le document, modifier en mémoire, réécrire" sur ces collections —
// ce pattern perd des écritures sous requêtes concurrentes.
type ContentService struct {
	repo      ports.PostRepository
	tags      ports.TagIndex
	publisher ports.EventPublisher
}

func NewContentService(repo ports.PostRepository, tags ports.TagIndex, pub ports.EventPublisher) *ContentService {
	return &ContentService{repo: repo, tags: tags, publisher: pub}
}

// --- CYCLE DE VIE DU POST ---

func (s *ContentService) CreatePost(ctx context.Context, cmd ports.CreatePostCmd) (*domain.Post, error) {
	// 1. Domaine : validation + construction
	post, err := domain.NewPost(cmd.AuthorID, cmd.Title, cmd.Content, cmd.ImageURL, cmd.Tags)
	if err != nil {
		return nil, err
	}

	// 2. Sauvegarde DB (Source of Truth)
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, s.wrapStoreErr("create post", err)
	}

	// 3. Index des tags : union atomique, best-effort.
	// Un cache indisponible ne doit JAMAIS bloquer la création du post.
	s.mergeTags(ctx, post.Tags)

	// 4. Événement (best-effort, même politique)
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.Warn("post.created event dropped", "post_id", post.ID, "error", err)
	}

	return post, nil
}

func (s *ContentService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	return s.repo.FindByID(ctx, postID)
}

func (s *ContentService) ListPosts(ctx context.Context, filterTags []string) ([]*domain.Post, error) {
	return s.repo.FindByTags(ctx, domain.NormalizeTags(filterTags))
}

func (s *ContentService) UpdatePost(ctx context.Context, cmd ports.UpdatePostCmd) (*domain.Post, error) {
	// 1. Récupérer l'existant
	post, err := s.repo.FindByID(ctx, cmd.PostID)
	if err != nil {
		return nil, err
	}

	// 2. Vérification de propriété (seul l'auteur peut modifier)
	if post.AuthorID != cmd.ActorID {
		return nil, domain.ErrNotOwner
	}

	// 3. Mise à jour des champs fournis uniquement
	if cmd.Title != nil {
		post.Title = *cmd.Title
	}
	if cmd.Content != nil {
		post.Content = *cmd.Content
	}
	if cmd.ImageURL != nil {
		post.ImageURL = *cmd.ImageURL
	}
	if cmd.Tags != nil {
		post.Tags = domain.NormalizeTags(cmd.Tags)
		s.mergeTags(ctx, post.Tags)
	}
	post.UpdatedAt = time.Now().UTC()

	// 4. Sauvegarde
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, s.wrapStoreErr("update post", err)
	}

	return post, nil
}

func (s *ContentService) DeletePost(ctx context.Context, postID, actorID string) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return domain.ErrNotOwner
	}

	// Les commentaires vivent DANS le document post : ils partent avec lui.
	if err := s.repo.Delete(ctx, postID); err != nil {
		return s.wrapStoreErr("delete post", err)
	}

	if err := s.publisher.PublishPostDeleted(ctx, postID); err != nil {
		slog.Warn("post.deleted event dropped", "post_id", postID, "error", err)
	}
	return nil
}

// --- INTERACTIONS SOCIALES ---

// LikePost ajoute l'acteur au set de likes.
// L'ajout lui-même est UNE insertion atomique côté store — le pré-check
// HasLike ne sert qu'à produire un ErrAlreadyLiked propre ; la garantie
// d'unicité sous concurrence vient de la primitive AddLike.
func (s *ContentService) LikePost(ctx context.Context, postID, actorID string) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.HasLike(actorID) {
		return nil, domain.ErrAlreadyLiked
	}

	return s.repo.AddLike(ctx, postID, actorID)
}

func (s *ContentService) UnlikePost(ctx context.Context, postID, actorID string) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.HasLike(actorID) {
		return nil, domain.ErrNotLiked
	}

	return s.repo.RemoveLike(ctx, postID, actorID)
}

func (s *ContentService) CommentOnPost(ctx context.Context, postID, actorID, content string) (*domain.Post, error) {
	comment, err := domain.NewComment(actorID, content)
	if err != nil {
		return nil, err
	}

	// Existence d'abord, pour distinguer "post absent" d'un échec d'append.
	if _, err := s.repo.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	// Append atomique : deux commentateurs simultanés sont tous deux conservés.
	return s.repo.AppendComment(ctx, postID, comment)
}

// DeleteComment autorise l'auteur du commentaire OU le propriétaire du post.
// (La condition historique exigeait les deux à la fois, ce qui interdisait à
// un auteur de supprimer son commentaire chez autrui — corrigé en OR.)
func (s *ContentService) DeleteComment(ctx context.Context, postID, commentID, actorID string) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment, found := post.FindComment(commentID)
	if !found {
		return nil, domain.ErrCommentNotFound
	}

	if comment.AuthorID != actorID && post.AuthorID != actorID {
		return nil, domain.ErrNotOwner
	}

	return s.repo.RemoveComment(ctx, postID, commentID)
}

// --- TAGS ---

func (s *ContentService) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.tags.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: tag index: %v", domain.ErrInternal, err)
	}
	return tags, nil
}

// mergeTags pousse les tags dans l'index partagé en UNE union atomique.
// Échec = log + on continue (l'index est un superset reconstruit au fil de l'eau,
// pas la source de vérité).
func (s *ContentService) mergeTags(ctx context.Context, tags []string) {
	if len(tags) == 0 {
		return
	}
	if err := s.tags.Merge(ctx, tags); err != nil {
		slog.Warn("tag index merge failed", "tags", tags, "error", err)
	}
}

func (s *ContentService) wrapStoreErr(op string, err error) error {
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrInternal, op, err)
}
