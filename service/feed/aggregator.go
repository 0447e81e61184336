package feed

import (
	"errors"
	"strings"

	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Like status strings returned to callers.
const (
    StatusLiked        = "liked"
    StatusAlreadyLiked = "already liked"
    StatusUnliked      = "unliked"
    StatusNotLiked     = "not liked"
)

// EngagementCounts holds the per-post like/comment totals.
type EngagementCounts struct {
    PostID       uint  `json:"post_id"`
    LikeCount    int64 `json:"like_count"`
    CommentCount int64 `json:"comment_count"`
}

// Aggregator computes engagement counts and owns like/comment writes.
type Aggregator struct {
    db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
    return &Aggregator{db: db}
}

// CountsForPosts returns like and comment counts for each post id, in the
// same order as the input. Posts with no engagement get zero counts. Both
// totals come from one batched GROUP BY query per table.
func (a *Aggregator) CountsForPosts(postIDs []uint) ([]EngagementCounts, error) {
    counts := make([]EngagementCounts, 0, len(postIDs))
    if len(postIDs) == 0 {
        return counts, nil
    }

    type row struct {
        PostID uint
        Total  int64
    }

    var likeRows []row
    err := a.db.Model(&models.Like{}).
        Select("post_id, COUNT(*) AS total").
        Where("post_id IN ?", postIDs).
        Group("post_id").
        Scan(&likeRows).Error
    if err != nil {
        return nil, err
    }

    var commentRows []row
    err = a.db.Model(&models.Comment{}).
        Select("post_id, COUNT(*) AS total").
        Where("post_id IN ?", postIDs).
        Group("post_id").
        Scan(&commentRows).Error
    if err != nil {
        return nil, err
    }

    likes := make(map[uint]int64, len(likeRows))
    for _, r := range likeRows {
        likes[r.PostID] = r.Total
    }
    comments := make(map[uint]int64, len(commentRows))
    for _, r := range commentRows {
        comments[r.PostID] = r.Total
    }

    for _, id := range postIDs {
        counts = append(counts, EngagementCounts{
            PostID:       id,
            LikeCount:    likes[id],
            CommentCount: comments[id],
        })
    }
    return counts, nil
}

// Like records that userID liked postID. Liking an absent post fails with
// ErrNotFound; liking twice is a no-op. The insert goes through the
// (user_id, post_id) unique index, so concurrent duplicates collapse to a
// single row.
func (a *Aggregator) Like(userID, postID uint) (string, error) {
    if err := a.postExists(postID); err != nil {
        return "", err
    }

    like := models.Like{
        UserID: userID,
        PostID: postID,
    }

    result := a.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
    if result.Error != nil {
        return "", result.Error
    }
    if result.RowsAffected == 0 {
        return StatusAlreadyLiked, nil
    }
    return StatusLiked, nil
}

// Unlike removes userID's like on postID if present.
func (a *Aggregator) Unlike(userID, postID uint) (string, error) {
    result := a.db.Where("user_id = ? AND post_id = ?", userID, postID).
        Delete(&models.Like{})
    if result.Error != nil {
        return "", result.Error
    }
    if result.RowsAffected == 0 {
        return StatusNotLiked, nil
    }
    return StatusUnliked, nil
}

// AddComment appends a comment to a post. Empty content is rejected and a
// missing post fails with ErrNotFound.
func (a *Aggregator) AddComment(userID, postID uint, content string) (*models.Comment, error) {
    if strings.TrimSpace(content) == "" {
        return nil, utils.NewValidationError("comment content is required")
    }
    if err := a.postExists(postID); err != nil {
        return nil, err
    }

    comment := models.Comment{
        UserID:  userID,
        PostID:  postID,
        Content: content,
    }
    if err := a.db.Create(&comment).Error; err != nil {
        return nil, err
    }
    return &comment, nil
}

// ListComments returns a post's comments oldest first, id order breaking
// timestamp ties.
func (a *Aggregator) ListComments(postID uint) ([]models.Comment, error) {
    comments := make([]models.Comment, 0)
    err := a.db.Where("post_id = ?", postID).
        Order("created_at ASC, id ASC").
        Find(&comments).Error
    if err != nil {
        return nil, err
    }
    return comments, nil
}

func (a *Aggregator) postExists(postID uint) error {
    var post models.Post
    if err := a.db.Select("id").First(&post, postID).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return utils.ErrNotFound
        }
        return err
    }
    return nil
}
