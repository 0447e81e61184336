package feed

import (
	"errors"
	"time"

	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"github.com/snapgram/snapgram-server/service/social"
	"gorm.io/gorm"
)

const (
    defaultPageSize = 20
    maxPageSize     = 100
)

// PostView is a post enriched with its engagement counts.
type PostView struct {
    ID           uint      `json:"id"`
    AuthorID     uint      `json:"author_id"`
    ImageURL     string    `json:"image_url"`
    Caption      string    `json:"caption,omitempty"`
    CreatedAt    time.Time `json:"created_at"`
    LikeCount    int64     `json:"like_count"`
    CommentCount int64     `json:"comment_count"`
}

// Builder assembles reverse-chronological timelines. Ordering is
// created_at descending with id as the tiebreak, which keeps pagination
// deterministic when timestamps collide.
type Builder struct {
    db    *gorm.DB
    graph *social.Manager
    agg   *Aggregator
}

func NewBuilder(db *gorm.DB, graph *social.Manager, agg *Aggregator) *Builder {
    return &Builder{db: db, graph: graph, agg: agg}
}

// BuildFeed returns the viewer's personalized feed: posts authored by the
// viewer and everyone the viewer follows. A page past the end yields an
// empty slice, not an error.
func (b *Builder) BuildFeed(viewerID uint, page, limit int) ([]PostView, error) {
    page, limit = clampPaging(page, limit)

    followingIDs, err := b.graph.FollowingIDs(viewerID)
    if err != nil {
        return nil, err
    }
    authorIDs := append([]uint{viewerID}, followingIDs...)

    var posts []models.Post
    err = b.db.Where("author_id IN ?", authorIDs).
        Order("created_at DESC, id DESC").
        Offset((page - 1) * limit).
        Limit(limit).
        Find(&posts).Error
    if err != nil {
        return nil, err
    }

    return b.enrich(posts)
}

// ListPosts returns the global, unauthenticated feed over all posts.
func (b *Builder) ListPosts(page, limit int) ([]PostView, error) {
    page, limit = clampPaging(page, limit)

    var posts []models.Post
    err := b.db.Order("created_at DESC, id DESC").
        Offset((page - 1) * limit).
        Limit(limit).
        Find(&posts).Error
    if err != nil {
        return nil, err
    }

    return b.enrich(posts)
}

// GetPost returns a single enriched post.
func (b *Builder) GetPost(postID uint) (*PostView, error) {
    var post models.Post
    if err := b.db.First(&post, postID).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, utils.ErrNotFound
        }
        return nil, err
    }

    views, err := b.enrich([]models.Post{post})
    if err != nil {
        return nil, err
    }
    return &views[0], nil
}

func (b *Builder) enrich(posts []models.Post) ([]PostView, error) {
    postIDs := make([]uint, len(posts))
    for i, p := range posts {
        postIDs[i] = p.ID
    }

    counts, err := b.agg.CountsForPosts(postIDs)
    if err != nil {
        return nil, err
    }

    views := make([]PostView, len(posts))
    for i, p := range posts {
        views[i] = PostView{
            ID:           p.ID,
            AuthorID:     p.AuthorID,
            ImageURL:     p.ImageURL,
            Caption:      p.Caption,
            CreatedAt:    p.CreatedAt,
            LikeCount:    counts[i].LikeCount,
            CommentCount: counts[i].CommentCount,
        }
    }
    return views, nil
}

// clampPaging bounds page and limit so negative or oversized query values
// can never produce invalid offsets.
func clampPaging(page, limit int) (int, int) {
    if page < 1 {
        page = 1
    }
    if limit <= 0 {
        limit = defaultPageSize
    }
    if limit > maxPageSize {
        limit = maxPageSize
    }
    return page, limit
}
