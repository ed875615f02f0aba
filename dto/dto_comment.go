package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/model"
)

type CommentTextReq struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// CommentView is a comment with its author resolved for display.
type CommentView struct {
	ID        bson.ObjectID   `json:"_id"`
	User      model.UserInfo  `json:"user"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	EditedAt  *time.Time      `json:"editedAt,omitempty"`
	Likes     int             `json:"likes"`
	LikedBy   []bson.ObjectID `json:"likedBy"`
	Replies   []ReplyView     `json:"replies"`
}

type ReplyView struct {
	ID        bson.ObjectID   `json:"_id"`
	User      model.UserInfo  `json:"user"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	EditedAt  *time.Time      `json:"editedAt,omitempty"`
	Likes     int             `json:"likes"`
	LikedBy   []bson.ObjectID `json:"likedBy"`
}

// LikeResult reports the state after a post like toggle.
type LikeResult struct {
	Likes       int  `json:"likes"`
	LikedByUser bool `json:"likedByUser"`
}
