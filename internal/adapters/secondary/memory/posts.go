package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]*domain.Post)}
}

func (s *PostStore) Save(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *PostStore) FindByID(_ context.Context, postID string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (s *PostStore) FindByTags(_ context.Context, tags []string) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := make(map[string]bool, len(tags))
	for _, t := range tags {
		filter[t] = true
	}

	var out []*domain.Post
	for _, p := range s.posts {
		if len(filter) > 0 && !intersects(p.Tags, filter) {
			continue
		}
		out = append(out, clonePost(p))
	}
	// Tri le plus récent d'abord, comme le repo SQL
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *PostStore) Update(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return domain.ErrPostNotFound
	}
	// Seuls les champs simples : likes/comments gardent leur état courant
	// (même contrat que l'UPDATE SQL partiel).
	existing.Title = post.Title
	existing.Content = post.Content
	existing.ImageURL = post.ImageURL
	existing.Tags = append([]string(nil), post.Tags...)
	existing.UpdatedAt = post.UpdatedAt
	return nil
}

func (s *PostStore) Delete(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return domain.ErrPostNotFound
	}
	delete(s.posts, postID)
	return nil
}

func (s *PostStore) DeleteByAuthor(_ context.Context, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.posts {
		if p.AuthorID == authorID {
			delete(s.posts, id)
		}
	}
	return nil
}

// --- PRIMITIVES ATOMIQUES ---
// Garde + mutation sous LE MÊME verrou : c'est l'équivalent mémoire des
// UPDATE conditionnels du repo Postgres.

func (s *PostStore) AddLike(_ context.Context, postID, userID string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if p.HasLike(userID) {
		return nil, domain.ErrAlreadyLiked
	}

	p.Likes = append(p.Likes, userID)
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

func (s *PostStore) RemoveLike(_ context.Context, postID, userID string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if !p.HasLike(userID) {
		return nil, domain.ErrNotLiked
	}

	likes := make([]string, 0, len(p.Likes)-1)
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p.Likes = likes
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

func (s *PostStore) AppendComment(_ context.Context, postID string, comment *domain.Comment) (*domain.Post, error) {
	if comment.Depth() > domain.MaxCommentDepth {
		return nil, domain.ErrCommentTooDeep
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	p.Comments = append(p.Comments, *comment)
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

func (s *PostStore) RemoveComment(_ context.Context, postID, commentID string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	comments := make([]domain.Comment, 0, len(p.Comments))
	for _, c := range p.Comments {
		if c.ID != commentID {
			comments = append(comments, c)
		}
	}
	p.Comments = comments
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

// --- HELPERS ---

func clonePost(p *domain.Post) *domain.Post {
	clone := *p
	clone.Tags = append([]string(nil), p.Tags...)
	clone.Likes = append([]string(nil), p.Likes...)
	clone.Comments = cloneComments(p.Comments)
	return &clone
}

func cloneComments(comments []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, len(comments))
	for i, c := range comments {
		out[i] = c
		out[i].Replies = cloneComments(c.Replies)
	}
	return out
}

func intersects(tags []string, filter map[string]bool) bool {
	for _, t := range tags {
		if filter[t] {
			return true
		}
	}
	return false
}
