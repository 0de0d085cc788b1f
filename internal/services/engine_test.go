package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), err.Error())
	if msg != "" {
		require.Equal(t, msg, apperr.PublicMessage(err))
	}
}

func TestToggleFollowTwiceRestoresEdges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	bob := env.user(t, "bob", "Bob B")

	v, err := env.engine.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{alice.ID}, v.Following)

	a := env.reload(t, alice.ID)
	require.Equal(t, models.IDSet{bob.ID}, a.Followers)
	require.Len(t, a.Notifications, 1)
	require.Equal(t, models.NotificationFollow, a.Notifications[0].Content)
	require.Equal(t, bob.ID, a.Notifications[0].From)

	v, err = env.engine.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Empty(t, v.Following)

	a = env.reload(t, alice.ID)
	require.Empty(t, a.Followers)
	require.Empty(t, env.reload(t, bob.ID).Following)
	require.Len(t, a.Notifications, 1, "unfollow does not notify")
}

func TestToggleFollowRejects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")

	_, err := env.engine.ToggleFollow(ctx, alice.ID, alice.ID)
	requireKind(t, err, apperr.KindValidation, "You cannot follow yourself")

	_, err = env.engine.ToggleFollow(ctx, alice.ID, primitive.NewObjectID())
	requireKind(t, err, apperr.KindNotFound, "User not found")
	require.Empty(t, env.reload(t, alice.ID).Following)
}

func TestToggleLikeIsInvolutive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	bob := env.user(t, "bob", "Bob B")
	p := env.post(t, alice.ID, "hello")

	feed, err := env.engine.ToggleLike(ctx, bob.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{bob.ID}, findPost(t, feed, p.ID).Likes)
	require.Len(t, env.reload(t, alice.ID).Notifications, 1)

	feed, err = env.engine.ToggleLike(ctx, bob.ID, p.ID)
	require.NoError(t, err)
	require.Empty(t, findPost(t, feed, p.ID).Likes)

	_, err = env.engine.ToggleLike(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, env.reload(t, alice.ID).Notifications, 1, "liking your own post does not notify")

	_, err = env.engine.ToggleLike(ctx, bob.ID, primitive.NewObjectID())
	requireKind(t, err, apperr.KindNotFound, "Post not found")
}

func TestCreateThenDeleteCommentRestoresList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	bob := env.user(t, "bob", "Bob B")
	p := env.post(t, alice.ID, "hello")

	_, err := env.engine.CreateComment(ctx, alice.ID, p.ID, "first")
	require.NoError(t, err)
	_, err = env.engine.CreateComment(ctx, alice.ID, p.ID, "second")
	require.NoError(t, err)
	before := env.loadPost(t, p.ID).Comments

	feed, err := env.engine.CreateComment(ctx, bob.ID, p.ID, "  from bob ")
	require.NoError(t, err)
	comments := findPost(t, feed, p.ID).Comments
	require.Len(t, comments, 3)
	added := comments[2]
	require.Equal(t, "from bob", added.Content)
	require.NotNil(t, added.User)
	require.Equal(t, "bob", added.User.Username)

	notes := env.reload(t, alice.ID).Notifications
	require.Len(t, notes, 1, "own comments do not notify")
	require.Equal(t, models.NotificationComment, notes[0].Content)

	_, err = env.engine.DeleteComment(ctx, bob.ID, p.ID, added.ID)
	require.NoError(t, err)
	require.Equal(t, before, env.loadPost(t, p.ID).Comments)

	_, err = env.engine.DeleteComment(ctx, bob.ID, p.ID, added.ID)
	requireKind(t, err, apperr.KindNotFound, "Comment not found")

	_, err = env.engine.CreateComment(ctx, bob.ID, p.ID, "   ")
	requireKind(t, err, apperr.KindValidation, "")
}

func TestCommentOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(t *testing.T, opts EngineOptions) (*testEnv, *models.User, *models.User, *models.User, primitive.ObjectID, primitive.ObjectID) {
		env := newTestEnv(t, opts)
		owner := env.user(t, "owner", "Post Owner")
		author := env.user(t, "author", "Comment Author")
		other := env.user(t, "other", "Someone Else")
		p := env.post(t, owner.ID, "hello")
		feed, err := env.engine.CreateComment(ctx, author.ID, p.ID, "original")
		require.NoError(t, err)
		return env, owner, author, other, p.ID, findPost(t, feed, p.ID).Comments[0].ID
	}

	t.Run("strict update by stranger", func(t *testing.T) {
		env, _, _, other, postID, commentID := setup(t, strict())
		_, err := env.engine.UpdateComment(ctx, other.ID, postID, commentID, "hijack")
		requireKind(t, err, apperr.KindForbidden, "")
		require.Equal(t, "original", env.loadPost(t, postID).Comments[0].Content)
	})

	t.Run("strict update by author", func(t *testing.T) {
		env, _, author, _, postID, commentID := setup(t, strict())
		feed, err := env.engine.UpdateComment(ctx, author.ID, postID, commentID, "edited")
		require.NoError(t, err)
		require.Equal(t, "edited", findPost(t, feed, postID).Comments[0].Content)
	})

	t.Run("strict delete by post owner", func(t *testing.T) {
		env, owner, _, _, postID, commentID := setup(t, strict())
		_, err := env.engine.DeleteComment(ctx, owner.ID, postID, commentID)
		require.NoError(t, err)
		require.Empty(t, env.loadPost(t, postID).Comments)
	})

	t.Run("strict delete by stranger", func(t *testing.T) {
		env, _, _, other, postID, commentID := setup(t, strict())
		_, err := env.engine.DeleteComment(ctx, other.ID, postID, commentID)
		requireKind(t, err, apperr.KindForbidden, "")
	})

	t.Run("lenient update by stranger", func(t *testing.T) {
		env, _, _, other, postID, commentID := setup(t, EngineOptions{})
		_, err := env.engine.UpdateComment(ctx, other.ID, postID, commentID, "anyone")
		require.NoError(t, err)
		require.Equal(t, "anyone", env.loadPost(t, postID).Comments[0].Content)
	})

	t.Run("missing post", func(t *testing.T) {
		env, _, author, _, _, commentID := setup(t, strict())
		_, err := env.engine.UpdateComment(ctx, author.ID, primitive.NewObjectID(), commentID, "x")
		requireKind(t, err, apperr.KindNotFound, "Post not found")
	})
}

func TestCreatePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("needs text or image", func(t *testing.T) {
		env := newTestEnv(t, strict())
		alice := env.user(t, "alice", "Alice A")
		_, err := env.engine.CreatePost(ctx, alice.ID, "  ", nil)
		requireKind(t, err, apperr.KindValidation, "")
	})

	t.Run("image only", func(t *testing.T) {
		env := newTestEnv(t, strict())
		alice := env.user(t, "alice", "Alice A")
		p, err := env.engine.CreatePost(ctx, alice.ID, "", &storage.File{Data: pngBytes})
		require.NoError(t, err)
		require.NotEmpty(t, p.PostImage.PublicID)
		require.True(t, env.assets.Has(p.PostImage.PublicID))
		require.Equal(t, "alice", p.User.Username)
	})

	t.Run("upload failure creates nothing", func(t *testing.T) {
		env := newTestEnv(t, strict())
		alice := env.user(t, "alice", "Alice A")
		env.assets.SetFailUploads(true)
		_, err := env.engine.CreatePost(ctx, alice.ID, "caption", &storage.File{Data: pngBytes})
		requireKind(t, err, apperr.KindExternalStorage, "")
		feed, err := env.engine.ListPosts(ctx)
		require.NoError(t, err)
		require.Empty(t, feed)
	})

	t.Run("rejects non images", func(t *testing.T) {
		env := newTestEnv(t, strict())
		alice := env.user(t, "alice", "Alice A")
		_, err := env.engine.CreatePost(ctx, alice.ID, "x", &storage.File{Data: []byte("plain text")})
		requireKind(t, err, apperr.KindValidation, "Only image files are allowed")
	})

	t.Run("no image gets the placeholder", func(t *testing.T) {
		env := newTestEnv(t, strict())
		alice := env.user(t, "alice", "Alice A")
		p := env.post(t, alice.ID, "text only")
		require.True(t, p.PostImage.IsDefault())
		require.Equal(t, models.DefaultCoverImageURL, p.PostImage.URL)
	})
}

func TestUpdatePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	bob := env.user(t, "bob", "Bob B")
	p := env.post(t, alice.ID, "hello")

	_, err := env.engine.UpdatePost(ctx, bob.ID, p.ID, "mine now")
	requireKind(t, err, apperr.KindForbidden, "")

	_, err = env.engine.UpdatePost(ctx, alice.ID, p.ID, "")
	requireKind(t, err, apperr.KindValidation, "")

	feed, err := env.engine.UpdatePost(ctx, alice.ID, p.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", findPost(t, feed, p.ID).Content)
}

func TestDeletePostReleasesImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	p, err := env.engine.CreatePost(ctx, alice.ID, "pic", &storage.File{Data: pngBytes})
	require.NoError(t, err)
	keep := env.post(t, alice.ID, "stays")

	env.assets.SetFailDeletes(true)
	_, err = env.engine.DeletePost(ctx, alice.ID, p.ID)
	requireKind(t, err, apperr.KindExternalStorage, "")
	env.loadPost(t, p.ID)

	env.assets.SetFailDeletes(false)
	feed, err := env.engine.DeletePost(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Equal(t, keep.ID, feed[0].ID)
	require.Equal(t, []string{p.PostImage.PublicID}, env.assets.Deleted())

	_, err = env.engine.DeletePost(ctx, alice.ID, p.ID)
	requireKind(t, err, apperr.KindNotFound, "Post not found")
}

func TestFeedNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	first := env.post(t, alice.ID, "first")
	second := env.post(t, alice.ID, "second")

	feed, err := env.engine.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, second.ID, feed[0].ID)
	require.Equal(t, first.ID, feed[1].ID)
	require.Equal(t, "Alice A", feed[0].User.Fullname)
}

// references reports every place id still appears in the store.
func references(t *testing.T, env *testEnv, id primitive.ObjectID) []string {
	t.Helper()
	ctx := context.Background()
	var found []string

	posts, err := env.store.Posts().List(ctx)
	require.NoError(t, err)
	for _, p := range posts {
		if p.User == id {
			found = append(found, "post owner "+p.ID.Hex())
		}
		if p.Likes.Contains(id) {
			found = append(found, "like on "+p.ID.Hex())
		}
		for _, c := range p.Comments {
			if c.User == id {
				found = append(found, "comment on "+p.ID.Hex())
			}
		}
	}

	users, err := env.store.Users().ListSuggestions(ctx, nil, 0)
	require.NoError(t, err)
	for _, u := range users {
		if u.ID == id {
			found = append(found, "user record")
		}
		if u.Followers.Contains(id) || u.Following.Contains(id) {
			found = append(found, "edge on "+u.Username)
		}
		for _, n := range u.Notifications {
			if n.From == id {
				found = append(found, "notification on "+u.Username)
			}
		}
	}
	return found
}

func TestDeleteAccountLeavesNoReferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	bob := env.user(t, "bob", "Bob B")
	carol := env.user(t, "carol", "Carol C")

	bobPost := env.post(t, bob.ID, "bob's")
	alicePost, err := env.engine.CreatePost(ctx, alice.ID, "alice's", &storage.File{Data: pngBytes})
	require.NoError(t, err)

	// give alice an uploaded profile image so its release is observable
	u := env.reload(t, alice.ID)
	img, err := env.assets.Upload(ctx, storage.File{Data: pngBytes})
	require.NoError(t, err)
	u.ProfileImage = img
	require.NoError(t, env.store.Users().UpdateProfile(ctx, u))

	for _, step := range []func() error{
		func() error { _, err := env.engine.ToggleFollow(ctx, alice.ID, bob.ID); return err },
		func() error { _, err := env.engine.ToggleFollow(ctx, carol.ID, alice.ID); return err },
		func() error { _, err := env.engine.ToggleLike(ctx, alice.ID, bobPost.ID); return err },
		func() error { _, err := env.engine.CreateComment(ctx, alice.ID, bobPost.ID, "hi bob"); return err },
		func() error { _, err := env.engine.CreateComment(ctx, bob.ID, bobPost.ID, "thanks"); return err },
		func() error { _, err := env.engine.CreateComment(ctx, carol.ID, alicePost.ID, "nice"); return err },
	} {
		require.NoError(t, step())
	}
	require.NotEmpty(t, references(t, env, alice.ID))

	require.NoError(t, env.engine.DeleteAccount(ctx, alice.ID))

	require.Empty(t, references(t, env, alice.ID))
	_, err = env.store.Users().GetByID(ctx, alice.ID)
	require.Error(t, err)

	p := env.loadPost(t, bobPost.ID)
	require.Len(t, p.Comments, 1)
	require.Equal(t, "thanks", p.Comments[0].Content)

	_, err = env.store.Posts().GetByID(ctx, alicePost.ID)
	require.Error(t, err)
	require.ElementsMatch(t, []string{img.PublicID, alicePost.PostImage.PublicID}, env.assets.Deleted())

	err = env.engine.DeleteAccount(ctx, alice.ID)
	requireKind(t, err, apperr.KindNotFound, "User not found")
}

func TestDeleteAccountSurvivesAssetFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	_, err := env.engine.CreatePost(ctx, alice.ID, "pic", &storage.File{Data: pngBytes})
	require.NoError(t, err)

	env.assets.SetFailDeletes(true)
	require.NoError(t, env.engine.DeleteAccount(ctx, alice.ID))
	require.Empty(t, references(t, env, alice.ID))
}

func TestSuggestedUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	me := env.user(t, "me", "Me Myself")
	followed := env.user(t, "followed", "Already Followed")
	var candidates []primitive.ObjectID
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		candidates = append(candidates, env.user(t, name, "User "+name).ID)
	}
	unverified := models.NewUser("ghost", "Not Verified", "ghost@x.com", "h", me.CreatedAt)
	require.NoError(t, env.store.Users().Create(ctx, unverified))

	_, err := env.engine.ToggleFollow(ctx, me.ID, followed.ID)
	require.NoError(t, err)

	got, err := env.engine.SuggestedUsers(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, v := range got {
		require.Equal(t, candidates[i], v.ID)
	}

	again, err := env.engine.SuggestedUsers(ctx, me.ID)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestSearchUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	env.user(t, "carol", "Carol Smith")
	env.user(t, "dave", "DAVE SMITHERS")
	env.user(t, "erin", "Erin Jones")

	got, err := env.engine.SearchUsers(ctx, "smith")
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = env.engine.SearchUsers(ctx, ".*")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = env.engine.SearchUsers(ctx, "  ")
	requireKind(t, err, apperr.KindValidation, "")
}

func TestProfileAndEdges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, strict())
	alice := env.user(t, "alice", "Alice A")
	bob := env.user(t, "bob", "Bob B")
	carol := env.user(t, "carol", "Carol C")
	env.post(t, alice.ID, "hello")

	for _, f := range []primitive.ObjectID{carol.ID, bob.ID} {
		_, err := env.engine.ToggleFollow(ctx, f, alice.ID)
		require.NoError(t, err)
	}

	profile, err := env.engine.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, profile.Posts, 1)
	require.Len(t, profile.Notifications, 2)
	require.Equal(t, "carol", profile.Notifications[0].From.Username)

	followers, err := env.engine.Followers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	require.Equal(t, carol.ID, followers[0].ID, "edge order is kept")

	following, err := env.engine.Following(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	require.Equal(t, alice.ID, following[0].ID)

	_, err = env.engine.GetProfile(ctx, primitive.NewObjectID())
	requireKind(t, err, apperr.KindNotFound, "User not found")
}
