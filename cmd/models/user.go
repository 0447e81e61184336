package models

import "time"


type User struct {
    ID           uint      `gorm:"primaryKey" json:"id"`
    Username     string    `gorm:"column:username;size:255;not null;uniqueIndex" json:"username"`
    Email        string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
    PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
    CreatedAt    time.Time `json:"created_at"`

    Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}


// Follow is a directed edge in the follow graph: follower -> following.
// The composite unique index is what makes follow/unfollow idempotent
// under concurrent requests.
type Follow struct {
    ID          uint      `gorm:"primaryKey" json:"id"`
    FollowerID  uint      `gorm:"column:follower_id;not null;index;uniqueIndex:idx_follower_following" json:"follower_id"`
    FollowingID uint      `gorm:"column:following_id;not null;index;uniqueIndex:idx_follower_following" json:"following_id"`
    CreatedAt   time.Time `json:"created_at"`
}
