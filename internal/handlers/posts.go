package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/socialapp-backend/internal/services"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PostsHandler struct {
	engine *services.Engine
	log    *zap.Logger
}

func NewPostsHandler(engine *services.Engine, log *zap.Logger) *PostsHandler {
	return &PostsHandler{engine: engine, log: log}
}

type contentRequest struct {
	Content string `json:"content"`
}

type createPostRequest struct {
	Text string `json:"text"`
}

// Create handles POST /api/posts/create with a multipart text field and an
// optional image file. A JSON body with only text is accepted too.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		text  string
		image *storage.File
	)
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		text = r.FormValue("text")
		var err error
		if image, err = formImage(r, "image"); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	} else {
		var req createPostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		text = req.Text
	}

	post, err := h.engine.CreatePost(r.Context(), caller(r).ID, text, image)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, post)
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	feed, err := h.engine.ListPosts(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, feed)
}

// ToggleFollow handles GET /api/posts/toggleFollow/{id}
func (h *PostsHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	target, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.engine.ToggleFollow(r.Context(), caller(r).ID, target)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *PostsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.onPost(w, r, "id", h.engine.ToggleLike)
}

func (h *PostsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.onPost(w, r, "id", h.engine.DeletePost)
}

func (h *PostsHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	h.withContent(w, r, "id", h.engine.CreateComment)
}

func (h *PostsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	h.withContent(w, r, "postId", h.engine.UpdatePost)
}

func (h *PostsHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.withContent(w, r, "postId", func(ctx context.Context, user, post primitive.ObjectID, content string) ([]services.PostView, error) {
		return h.engine.UpdateComment(ctx, user, post, commentID, content)
	})
}

func (h *PostsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.onPost(w, r, "postId", func(ctx context.Context, user, post primitive.ObjectID) ([]services.PostView, error) {
		return h.engine.DeleteComment(ctx, user, post, commentID)
	})
}

// onPost runs op on the post named by the path parameter and answers with
// the feed it returns.
func (h *PostsHandler) onPost(w http.ResponseWriter, r *http.Request, param string, op func(ctx context.Context, user, post primitive.ObjectID) ([]services.PostView, error)) {
	postID, err := pathID(r, param)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	feed, err := op(r.Context(), caller(r).ID, postID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, feed)
}

func (h *PostsHandler) withContent(w http.ResponseWriter, r *http.Request, param string, op func(ctx context.Context, user, post primitive.ObjectID, content string) ([]services.PostView, error)) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.onPost(w, r, param, func(ctx context.Context, user, post primitive.ObjectID) ([]services.PostView, error) {
		return op(ctx, user, post, req.Content)
	})
}
