package social

import (
	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Follow status strings returned to callers.
const (
    StatusFollowed         = "followed"
    StatusAlreadyFollowing = "already following"
    StatusUnfollowed       = "unfollowed"
    StatusNotFollowing     = "not following"
)

// Manager owns follow/unfollow state transitions on the follow graph.
type Manager struct {
    db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
    return &Manager{db: db}
}

// Follow inserts a follower -> target edge. Self-follow is rejected;
// following an already-followed user is a no-op. The insert relies on the
// (follower_id, following_id) unique index instead of a check-then-insert,
// so concurrent requests cannot create duplicate edges.
func (m *Manager) Follow(followerID, targetID uint) (string, error) {
    if followerID == targetID {
        return "", utils.NewValidationError("cannot follow yourself")
    }

    follow := models.Follow{
        FollowerID:  followerID,
        FollowingID: targetID,
    }

    result := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow)
    if result.Error != nil {
        return "", result.Error
    }
    if result.RowsAffected == 0 {
        return StatusAlreadyFollowing, nil
    }
    return StatusFollowed, nil
}

// Unfollow deletes the follower -> target edge if present.
func (m *Manager) Unfollow(followerID, targetID uint) (string, error) {
    result := m.db.Where("follower_id = ? AND following_id = ?", followerID, targetID).
        Delete(&models.Follow{})
    if result.Error != nil {
        return "", result.Error
    }
    if result.RowsAffected == 0 {
        return StatusNotFollowing, nil
    }
    return StatusUnfollowed, nil
}

// FollowingIDs returns the ids of every user the given user follows.
func (m *Manager) FollowingIDs(userID uint) ([]uint, error) {
    var ids []uint
    err := m.db.Model(&models.Follow{}).
        Where("follower_id = ?", userID).
        Order("following_id").
        Pluck("following_id", &ids).Error
    if err != nil {
        return nil, err
    }
    return ids, nil
}

// Counts returns how many users follow userID and how many userID follows.
func (m *Manager) Counts(userID uint) (followers int64, following int64, err error) {
    if err = m.db.Model(&models.Follow{}).
        Where("following_id = ?", userID).
        Count(&followers).Error; err != nil {
        return 0, 0, err
    }
    if err = m.db.Model(&models.Follow{}).
        Where("follower_id = ?", userID).
        Count(&following).Error; err != nil {
        return 0, 0, err
    }
    return followers, following, nil
}
