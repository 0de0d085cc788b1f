package routes

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/socialapp-backend/internal/handlers"
	"github.com/AnshRaj112/socialapp-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

type Deps struct {
	Auth  *handlers.AuthHandler
	Posts *handlers.PostsHandler
	Gate  middleware.TokenResolver
	Ping  func(ctx context.Context) error
}

func SetupRoutes(r chi.Router, d Deps) {
	r.Get("/", handlers.Welcome)
	r.Get("/health", handlers.Health(d.Ping))

	requireAuth := middleware.RequireAuth(d.Gate)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", d.Auth.Signup)
		r.Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)
		r.Post("/verifyOTP/{email}", d.Auth.VerifyOTP)
		r.Get("/resendOTP/{email}", d.Auth.ResendOTP)
		// Older clients use the misspelled path.
		r.Get("/resSendOTP/{email}", d.Auth.ResendOTP)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/checkAuth", d.Auth.CheckAuth)
			r.Get("/getUser", d.Auth.GetUser)
			r.Put("/updateProfile", d.Auth.UpdateProfile)
			r.Get("/getProfile/{id}", d.Auth.GetProfile)
			r.Get("/followers/{id}", d.Auth.Followers)
			r.Get("/following/{id}", d.Auth.Following)
			r.Delete("/deleteProfile", d.Auth.DeleteProfile)
			r.Get("/suggestedUsers", d.Auth.SuggestedUsers)
			r.Post("/search", d.Auth.Search)
		})
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/create", d.Posts.Create)
		r.Get("/getAllPosts", d.Posts.List)
		r.Get("/toggleFollow/{id}", d.Posts.ToggleFollow)
		r.Get("/toggleLike/{id}", d.Posts.ToggleLike)
		r.Post("/createComment/{id}", d.Posts.CreateComment)
		r.Delete("/deleteComment/{postId}/{commentId}", d.Posts.DeleteComment)
		r.Put("/updateComment/{postId}/{commentId}", d.Posts.UpdateComment)
		r.Delete("/deletePost/{id}", d.Posts.DeletePost)
		r.Put("/updatePost/{postId}", d.Posts.UpdatePost)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":"error","message":"Route not found"}`))
	})
}
