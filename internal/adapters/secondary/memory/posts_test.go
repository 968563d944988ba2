package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

func seedPost(t *testing.T, store *PostStore, tags ...string) *domain.Post {
	t.Helper()
	post, err := domain.NewPost("author-1", "title", "content", "", tags)
	if err != nil {
		t.Fatalf("new post: %v", err)
	}
	if err := store.Save(context.Background(), post); err != nil {
		t.Fatalf("save: %v", err)
	}
	return post
}

func TestFindByIDReturnsCopy(t *testing.T) {
	store := NewPostStore()
	post := seedPost(t, store, "go")

	got, err := store.FindByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	// Mutation du résultat : le store ne doit pas la voir.
	got.Likes = append(got.Likes, "evil")
	got.Tags[0] = "mutated"

	fresh, _ := store.FindByID(context.Background(), post.ID)
	if len(fresh.Likes) != 0 || fresh.Tags[0] != "go" {
		t.Error("store state leaked through a returned pointer")
	}
}

func TestAddLikeGuards(t *testing.T) {
	store := NewPostStore()
	post := seedPost(t, store, "go")
	ctx := context.Background()

	if _, err := store.AddLike(ctx, "missing", "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing post: want not found, got %v", err)
	}

	if _, err := store.AddLike(ctx, post.ID, "u1"); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if _, err := store.AddLike(ctx, post.ID, "u1"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("double like: want conflict, got %v", err)
	}

	if _, err := store.RemoveLike(ctx, post.ID, "u2"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("remove absent like: want conflict, got %v", err)
	}
	if _, err := store.RemoveLike(ctx, post.ID, "u1"); err != nil {
		t.Fatalf("remove like: %v", err)
	}
}

// Mélange concurrent de likes et commentaires : garde + mutation sous le même
// verrou, donc aucun état perdu.
func TestConcurrentMutations(t *testing.T) {
	store := NewPostStore()
	post := seedPost(t, store, "go")
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := store.AddLike(ctx, post.ID, fmt.Sprintf("u%d", i)); err != nil {
				t.Errorf("like %d: %v", i, err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			c, err := domain.NewComment(fmt.Sprintf("u%d", i), "hello")
			if err != nil {
				t.Errorf("comment %d: %v", i, err)
				return
			}
			if _, err := store.AppendComment(ctx, post.ID, c); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.FindByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Likes) != n {
		t.Errorf("likes: want %d, got %d", n, len(got.Likes))
	}
	if len(got.Comments) != n {
		t.Errorf("comments: want %d, got %d", n, len(got.Comments))
	}
}

func TestUpdateDoesNotTouchLikesOrComments(t *testing.T) {
	store := NewPostStore()
	post := seedPost(t, store, "go")
	ctx := context.Background()

	if _, err := store.AddLike(ctx, post.ID, "fan"); err != nil {
		t.Fatalf("like: %v", err)
	}

	post.Title = "edited"
	post.Likes = nil // le repo ne doit PAS répercuter ça
	if err := store.Update(ctx, post); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.FindByID(ctx, post.ID)
	if got.Title != "edited" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if !got.HasLike("fan") {
		t.Error("update clobbered the likes")
	}
}

func TestAppendCommentRefusesDeepTrees(t *testing.T) {
	store := NewPostStore()
	post := seedPost(t, store, "go")

	// Chaîne de réponses plus profonde que la limite d'ingestion.
	deep := domain.Comment{ID: "0", Content: "c", AuthorID: "u"}
	for i := 0; i < domain.MaxCommentDepth; i++ {
		deep = domain.Comment{ID: fmt.Sprintf("%d", i+1), Content: "c", AuthorID: "u", Replies: []domain.Comment{deep}}
	}

	if _, err := store.AppendComment(context.Background(), post.ID, &deep); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("deep tree accepted: %v", err)
	}
}

func TestRemoveCommentFiltersById(t *testing.T) {
	store := NewPostStore()
	post := seedPost(t, store, "go")
	ctx := context.Background()

	c1, _ := domain.NewComment("u1", "first")
	c2, _ := domain.NewComment("u2", "second")
	store.AppendComment(ctx, post.ID, c1)
	store.AppendComment(ctx, post.ID, c2)

	got, err := store.RemoveComment(ctx, post.ID, c1.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.Comments) != 1 || got.Comments[0].ID != c2.ID {
		t.Errorf("wrong comment removed: %+v", got.Comments)
	}
}

func TestDeleteByAuthor(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()

	mine := seedPost(t, store, "go")
	other, _ := domain.NewPost("author-2", "t", "c", "", []string{"go"})
	store.Save(ctx, other)

	if err := store.DeleteByAuthor(ctx, "author-1"); err != nil {
		t.Fatalf("delete by author: %v", err)
	}
	if _, err := store.FindByID(ctx, mine.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("own post survived")
	}
	if _, err := store.FindByID(ctx, other.ID); err != nil {
		t.Errorf("foreign post deleted: %v", err)
	}
}

func TestFindByTags(t *testing.T) {
	store := NewPostStore()
	ctx := context.Background()

	seedPost(t, store, "go")
	seedPost(t, store, "rust")
	seedPost(t, store, "go", "rust")

	got, err := store.FindByTags(ctx, []string{"rust"})
	if err != nil {
		t.Fatalf("find by tags: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("want 2 posts tagged rust, got %d", len(got))
	}

	all, _ := store.FindByTags(ctx, nil)
	if len(all) != 3 {
		t.Errorf("want 3 posts without filter, got %d", len(all))
	}
}
