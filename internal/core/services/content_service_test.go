package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jupiterclapton/inkwell/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/inkwell/internal/adapters/secondary/memory"
	"github.com/jupiterclapton/inkwell/internal/adapters/secondary/security"
	"github.com/jupiterclapton/inkwell/internal/adapters/secondary/tagindex"
	"github.com/jupiterclapton/inkwell/internal/core/domain"
	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

func newContentFixture(t *testing.T) (*ContentService, *memory.PostStore, *tagindex.MemoryTagIndex) {
	t.Helper()
	posts := memory.NewPostStore()
	tags := tagindex.NewMemoryTagIndex()
	svc := NewContentService(posts, tags, eventbroker.NewNoopPublisher())
	return svc, posts, tags
}

func createPost(t *testing.T, svc *ContentService, authorID string, tags ...string) *domain.Post {
	t.Helper()
	post, err := svc.CreatePost(context.Background(), ports.CreatePostCmd{
		AuthorID: authorID,
		Title:    "Un titre",
		Content:  "Du contenu.",
		Tags:     tags,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _ := newContentFixture(t)

	cases := []struct {
		name string
		cmd  ports.CreatePostCmd
	}{
		{"missing title", ports.CreatePostCmd{AuthorID: "u1", Content: "c", Tags: []string{"go"}}},
		{"missing content", ports.CreatePostCmd{AuthorID: "u1", Title: "t", Tags: []string{"go"}}},
		{"missing tags", ports.CreatePostCmd{AuthorID: "u1", Title: "t", Content: "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreatePost(context.Background(), tc.cmd); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}

func TestCreatePostFeedsTagIndex(t *testing.T) {
	svc, _, tags := newContentFixture(t)
	createPost(t, svc, "u1", "go", "postgres", "go") // doublon volontaire

	got, err := tags.All(context.Background())
	if err != nil {
		t.Fatalf("tag index: %v", err)
	}
	want := []string{"go", "postgres"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tag index mismatch (-want +got):\n%s", diff)
	}
}

func TestListPostsByTags(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	goPost := createPost(t, svc, "u1", "go")
	createPost(t, svc, "u1", "rust")
	both := createPost(t, svc, "u2", "go", "rust")

	got, err := svc.ListPosts(context.Background(), []string{"go"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ids := map[string]bool{}
	for _, p := range got {
		ids[p.ID] = true
	}
	if len(got) != 2 || !ids[goPost.ID] || !ids[both.ID] {
		t.Errorf("tag filter returned wrong set: %v", ids)
	}

	// Sans filtre : tout le monde
	all, err := svc.ListPosts(context.Background(), nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("want 3 posts, got %d", len(all))
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	post := createPost(t, svc, "owner", "go")

	title := "Hacked"
	_, err := svc.UpdatePost(context.Background(), ports.UpdatePostCmd{
		PostID: post.ID, ActorID: "intruder", Title: &title,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner update: want forbidden, got %v", err)
	}

	updated, err := svc.UpdatePost(context.Background(), ports.UpdatePostCmd{
		PostID: post.ID, ActorID: "owner", Title: &title,
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Hacked" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.Content != post.Content {
		t.Error("untouched field changed")
	}
}

func TestDeletePostOwnership(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	post := createPost(t, svc, "owner", "go")

	if err := svc.DeletePost(context.Background(), post.ID, "intruder"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner delete: want forbidden, got %v", err)
	}
	if err := svc.DeletePost(context.Background(), post.ID, "owner"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.GetPost(context.Background(), post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted post still readable: %v", err)
	}
}

func TestLikeUnlikeLifecycle(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	post := createPost(t, svc, "owner", "go")

	liked, err := svc.LikePost(context.Background(), post.ID, "fan")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked.HasLike("fan") {
		t.Error("like not recorded")
	}

	// Double like : conflit, pas un doublon silencieux
	if _, err := svc.LikePost(context.Background(), post.ID, "fan"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("double like: want conflict, got %v", err)
	}

	unliked, err := svc.UnlikePost(context.Background(), post.ID, "fan")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.HasLike("fan") {
		t.Error("like not removed")
	}

	if _, err := svc.UnlikePost(context.Background(), post.ID, "fan"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("unlike without like: want conflict, got %v", err)
	}

	if _, err := svc.LikePost(context.Background(), "missing-id", "fan"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("like on missing post: want not found, got %v", err)
	}
}

// N utilisateurs distincts likent en parallèle : aucun like perdu, aucun doublon.
func TestConcurrentLikes(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	post := createPost(t, svc, "owner", "go")

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.LikePost(context.Background(), post.ID, fmt.Sprintf("user-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent like failed: %v", err)
	}

	got, err := svc.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Likes) != n {
		t.Errorf("want %d likes, got %d", n, len(got.Likes))
	}
	seen := map[string]bool{}
	for _, id := range got.Likes {
		if seen[id] {
			t.Errorf("duplicate like for %s", id)
		}
		seen[id] = true
	}
}

// Fusions concurrentes dans l'index de tags : union des deux, rien d'écrasé.
func TestConcurrentTagMerge(t *testing.T) {
	idx := tagindex.NewMemoryTagIndex()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		idx.Merge(context.Background(), []string{"a"})
	}()
	go func() {
		defer wg.Done()
		idx.Merge(context.Background(), []string{"b"})
	}()
	wg.Wait()

	got, err := idx.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("merge lost a tag (-want +got):\n%s", diff)
	}
}

func TestCommentLifecycle(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	post := createPost(t, svc, "owner", "go")

	withComment, err := svc.CommentOnPost(context.Background(), post.ID, "reader", "Bien vu !")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(withComment.Comments) != 1 {
		t.Fatalf("want 1 comment, got %d", len(withComment.Comments))
	}
	comment := withComment.Comments[0]
	if comment.AuthorID != "reader" || comment.Content != "Bien vu !" {
		t.Errorf("comment fields wrong: %+v", comment)
	}

	if _, err := svc.CommentOnPost(context.Background(), post.ID, "reader", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty comment: want validation error, got %v", err)
	}
}

// Suppression de commentaire : l'auteur du commentaire OU le propriétaire du
// billet peuvent supprimer ; tout autre acteur est refusé.
func TestDeleteCommentAuthorization(t *testing.T) {
	ctx := context.Background()

	type actor struct {
		name    string
		id      string
		allowed bool
	}
	actors := []actor{
		{"comment author", "reader", true},
		{"post owner", "owner", true},
		{"stranger", "stranger", false},
	}

	for _, a := range actors {
		t.Run(a.name, func(t *testing.T) {
			svc, _, _ := newContentFixture(t)
			post := createPost(t, svc, "owner", "go")
			withComment, err := svc.CommentOnPost(ctx, post.ID, "reader", "hello")
			if err != nil {
				t.Fatalf("comment: %v", err)
			}
			commentID := withComment.Comments[0].ID

			result, err := svc.DeleteComment(ctx, post.ID, commentID, a.id)
			if a.allowed {
				if err != nil {
					t.Fatalf("delete by %s: %v", a.name, err)
				}
				if len(result.Comments) != 0 {
					t.Errorf("comment survived deletion by %s", a.name)
				}
			} else if !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("delete by %s: want forbidden, got %v", a.name, err)
			}
		})
	}
}

func TestDeleteCommentNotFound(t *testing.T) {
	svc, _, _ := newContentFixture(t)
	post := createPost(t, svc, "owner", "go")

	if _, err := svc.DeleteComment(context.Background(), post.ID, "ghost", "owner"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing comment: want not found, got %v", err)
	}
}

// Scénario complet traversant les deux services, du register au delete.
func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()

	users := memory.NewUserStore()
	posts := memory.NewPostStore()
	tags := tagindex.NewMemoryTagIndex()
	tokens, err := security.NewJWTProvider([]byte("e2e-access"), []byte("e2e-refresh"))
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	identity := NewIdentityService(users, posts, security.NewArgon2Hasher(testHashParams), tokens, eventbroker.NewNoopPublisher())
	content := NewContentService(posts, tags, eventbroker.NewNoopPublisher())

	// 1. Alice s'inscrit puis se reconnecte avec son username en majuscules
	alice, err := identity.Register(ctx, ports.RegisterCmd{
		Name: "Alice", Email: "alice@example.com", Username: "alice", Password: "pw-alice-1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := identity.Login(ctx, ports.LoginCmd{Login: "ALICE", Password: "pw-alice-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// 2. Elle publie un billet ; l'index de tags doit suivre
	post, err := content.CreatePost(ctx, ports.CreatePostCmd{
		AuthorID: session.User.ID,
		Title:    "Go et Rust",
		Content:  "Comparatif.",
		Tags:     []string{"go", "rust"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	allTags, _ := tags.All(ctx)
	if diff := cmp.Diff([]string{"go", "rust"}, allTags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	// 3. Bob like le billet
	bob, err := identity.Register(ctx, ports.RegisterCmd{
		Name: "Bob", Email: "bob@example.com", Username: "bob", Password: "pw-bob-22",
	})
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	liked, err := content.LikePost(ctx, post.ID, bob.User.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked.HasLike(bob.User.ID) {
		t.Error("bob's like missing")
	}

	// 4. Alice supprime son billet ; il devient introuvable
	if err := content.DeletePost(ctx, post.ID, alice.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := content.GetPost(ctx, post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted post still readable: %v", err)
	}
}
