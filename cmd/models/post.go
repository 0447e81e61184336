package models

import "time"


type Post struct {
    ID        uint      `gorm:"primaryKey" json:"id"`
    AuthorID  uint      `gorm:"column:author_id;not null;index" json:"author_id"`
    ImageURL  string    `gorm:"column:image_url;not null" json:"image_url"`
    Caption   string    `gorm:"column:caption;type:text" json:"caption,omitempty"`
    CreatedAt time.Time `gorm:"index" json:"created_at"`

    Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
    Likes    []Like    `gorm:"foreignKey:PostID" json:"likes,omitempty"`
    Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}


// Like rows are unique per (user_id, post_id); the constraint closes the
// race window between the existence check and the insert.
type Like struct {
    ID        uint      `gorm:"primaryKey" json:"id"`
    UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_post" json:"user_id"`
    PostID    uint      `gorm:"column:post_id;not null;index;uniqueIndex:idx_user_post" json:"post_id"`
    CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
    ID        uint      `gorm:"primaryKey" json:"id"`
    UserID    uint      `gorm:"column:user_id;not null" json:"user_id"`
    PostID    uint      `gorm:"column:post_id;not null;index" json:"post_id"`
    Content   string    `gorm:"column:content;type:text;not null" json:"content"`
    CreatedAt time.Time `json:"created_at"`
}
