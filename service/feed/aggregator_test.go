package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
)

func TestCountsForPostsPerPost(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	now := time.Now()
	p1 := createPost(t, db, alice.ID, now)
	p2 := createPost(t, db, alice.ID, now)
	p3 := createPost(t, db, bob.ID, now)

	if _, err := agg.Like(alice.ID, p1.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := agg.Like(bob.ID, p1.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := agg.AddComment(bob.ID, p1.ID, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := agg.Like(alice.ID, p3.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	counts, err := agg.CountsForPosts([]uint{p1.ID, p2.ID, p3.ID})
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("expected 3 results, got %d", len(counts))
	}

	want := []EngagementCounts{
		{PostID: p1.ID, LikeCount: 2, CommentCount: 1},
		{PostID: p2.ID, LikeCount: 0, CommentCount: 0},
		{PostID: p3.ID, LikeCount: 1, CommentCount: 0},
	}
	for i, c := range counts {
		if c != want[i] {
			t.Fatalf("result %d: expected %+v, got %+v", i, want[i], c)
		}
	}
}

func TestCountsForPostsEmptyInput(t *testing.T) {
	agg := NewAggregator(newTestDB(t))

	counts, err := agg.CountsForPosts(nil)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("expected empty result, got %v", counts)
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice.ID, time.Now())

	status, err := agg.Like(alice.ID, post.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if status != StatusLiked {
		t.Fatalf("expected %q, got %q", StatusLiked, status)
	}

	status, err = agg.Like(alice.ID, post.ID)
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if status != StatusAlreadyLiked {
		t.Fatalf("expected %q, got %q", StatusAlreadyLiked, status)
	}

	var rows int64
	db.Model(&models.Like{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("expected 1 like row, got %d", rows)
	}

	counts, err := agg.CountsForPosts([]uint{post.ID})
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[0].LikeCount != 1 {
		t.Fatalf("expected like count 1, got %d", counts[0].LikeCount)
	}
}

func TestLikeMissingPost(t *testing.T) {
	agg := NewAggregator(newTestDB(t))

	_, err := agg.Like(1, 999)
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnlikeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice.ID, time.Now())

	status, err := agg.Unlike(alice.ID, post.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if status != StatusNotLiked {
		t.Fatalf("expected %q, got %q", StatusNotLiked, status)
	}

	if _, err := agg.Like(alice.ID, post.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	status, err = agg.Unlike(alice.ID, post.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if status != StatusUnliked {
		t.Fatalf("expected %q, got %q", StatusUnliked, status)
	}
}

func TestAddCommentValidation(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice.ID, time.Now())

	if _, err := agg.AddComment(alice.ID, post.ID, "   "); !utils.IsValidationError(err) {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}

	if _, err := agg.AddComment(alice.ID, 999, "hello"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing post, got %v", err)
	}

	comment, err := agg.AddComment(alice.ID, post.ID, "hello")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.ID == 0 {
		t.Fatal("expected generated comment id")
	}
	if comment.CreatedAt.IsZero() {
		t.Fatal("expected comment timestamp")
	}
}

func TestListCommentsChronological(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice.ID, time.Now())

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		comment := models.Comment{
			UserID:    alice.ID,
			PostID:    post.ID,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&comment).Error; err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}

	comments, err := agg.ListComments(post.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	want := []string{"first", "second", "third"}
	for i, c := range comments {
		if c.Content != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], c.Content)
		}
	}
}

func TestConcurrentLikesStoreOneRow(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice.ID, time.Now())

	statuses := make(chan string, 2)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			status, err := agg.Like(alice.ID, post.ID)
			statuses <- status
			errs <- err
		}()
	}

	liked := 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent like: %v", err)
		}
		if <-statuses == StatusLiked {
			liked++
		}
	}
	if liked != 1 {
		t.Fatalf("expected exactly one call to report %q, got %d", StatusLiked, liked)
	}

	var rows int64
	db.Model(&models.Like{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("expected 1 like row, got %d", rows)
	}

	counts, err := agg.CountsForPosts([]uint{post.ID})
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[0].LikeCount != 1 {
		t.Fatalf("expected like count 1, got %d", counts[0].LikeCount)
	}
}
