package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

const timeFormat = time.RFC3339

type BlogHandler struct {
	content ports.ContentService
}

func NewBlogHandler(content ports.ContentService) *BlogHandler {
	return &BlogHandler{content: content}
}

// --- DTOs ---

type createPostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
}

type updatePostRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Image   *string  `json:"image"`
	Tags    []string `json:"tags"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentDTO struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	AuthorID  string       `json:"authorId"`
	Replies   []commentDTO `json:"replies"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

type postDTO struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Image     string       `json:"image"`
	Tags      []string     `json:"tags"`
	Likes     []string     `json:"likes"`
	Comments  []commentDTO `json:"comments"`
	AuthorID  string       `json:"authorId"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

// --- HANDLERS ---

func (h *BlogHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.content.ListTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags}, "Tags fetched successfully")
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrMissingFields)
		return
	}

	actor := ActorFromContext(r.Context())
	post, err := h.content.CreatePost(r.Context(), ports.CreatePostCmd{
		AuthorID: actor.ID,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.Image,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostDTO(post), "Blog created successfully")
}

// List accepte ?tags=go&tags=rust : posts dont les tags intersectent le filtre.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.ListPosts(r.Context(), r.URL.Query()["tags"])
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]postDTO, len(posts))
	for i, p := range posts {
		dtos[i] = toPostDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos, "Blogs fetched successfully")
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post), "Blog fetched successfully")
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrMissingFields)
		return
	}

	actor := ActorFromContext(r.Context())
	post, err := h.content.UpdatePost(r.Context(), ports.UpdatePostCmd{
		PostID:   r.PathValue("id"),
		ActorID:  actor.ID,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.Image,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostDTO(post), "Blog updated successfully")
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if err := h.content.DeletePost(r.Context(), r.PathValue("id"), actor.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Blog deleted successfully")
}

func (h *BlogHandler) Like(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	post, err := h.content.LikePost(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post), "Blog liked successfully")
}

func (h *BlogHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	post, err := h.content.UnlikePost(r.Context(), r.PathValue("id"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post), "Blog unliked successfully")
}

func (h *BlogHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrMissingFields)
		return
	}

	actor := ActorFromContext(r.Context())
	post, err := h.content.CommentOnPost(r.Context(), r.PathValue("id"), actor.ID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post), "Comment added successfully")
}

func (h *BlogHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	post, err := h.content.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentId"), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post), "Comment deleted successfully")
}

// --- MAPPERS ---

func toPostDTO(p *domain.Post) postDTO {
	comments := make([]commentDTO, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = toCommentDTO(c)
	}
	return postDTO{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.ImageURL,
		Tags:      p.Tags,
		Likes:     p.Likes,
		Comments:  comments,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt.Format(timeFormat),
		UpdatedAt: p.UpdatedAt.Format(timeFormat),
	}
}

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
		CreatedAt: c.CreatedAt.Format(timeFormat),
		UpdatedAt: c.UpdatedAt.Format(timeFormat),
	}
}
