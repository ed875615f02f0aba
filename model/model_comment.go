package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Comment is embedded in its upload. It is never addressed outside the
// owning document. EditedAt stays nil until the first edit; the client
// uses it as the "edited" marker.
type Comment struct {
	ID        bson.ObjectID   `json:"_id"       bson:"_id"`
	User      bson.ObjectID   `json:"user"      bson:"user"`
	Text      string          `json:"text"      bson:"text"`
	CreatedAt time.Time       `json:"createdAt" bson:"created_at"`
	EditedAt  *time.Time      `json:"editedAt,omitempty" bson:"edited_at,omitempty"`
	Likes     int             `json:"likes"     bson:"likes"`
	LikedBy   []bson.ObjectID `json:"likedBy"   bson:"liked_by"`
	Replies   []Reply         `json:"replies"   bson:"replies"`
}

// Reply nests one level under a comment, no deeper.
type Reply struct {
	ID        bson.ObjectID   `json:"_id"       bson:"_id"`
	User      bson.ObjectID   `json:"user"      bson:"user"`
	Text      string          `json:"text"      bson:"text"`
	CreatedAt time.Time       `json:"createdAt" bson:"created_at"`
	EditedAt  *time.Time      `json:"editedAt,omitempty" bson:"edited_at,omitempty"`
	Likes     int             `json:"likes"     bson:"likes"`
	LikedBy   []bson.ObjectID `json:"likedBy"   bson:"liked_by"`
}

func NewComment(user bson.ObjectID, text string, now time.Time) Comment {
	return Comment{
		ID:        bson.NewObjectID(),
		User:      user,
		Text:      text,
		CreatedAt: now,
		LikedBy:   []bson.ObjectID{},
		Replies:   []Reply{},
	}
}

func NewReply(user bson.ObjectID, text string, now time.Time) Reply {
	return Reply{
		ID:        bson.NewObjectID(),
		User:      user,
		Text:      text,
		CreatedAt: now,
		LikedBy:   []bson.ObjectID{},
	}
}

func (c *Comment) ToggleLike(user bson.ObjectID) bool {
	var liked bool
	c.LikedBy, liked = toggleMember(c.LikedBy, user)
	c.Likes = len(c.LikedBy)
	return liked
}

// Reply returns the embedded reply with the given id, or nil.
func (c *Comment) Reply(id bson.ObjectID) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			return &c.Replies[i]
		}
	}
	return nil
}

func (c *Comment) RemoveReply(id bson.ObjectID) bool {
	for i := range c.Replies {
		if c.Replies[i].ID == id {
			c.Replies = append(c.Replies[:i:i], c.Replies[i+1:]...)
			return true
		}
	}
	return false
}
