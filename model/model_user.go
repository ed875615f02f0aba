package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID       bson.ObjectID `json:"_id"    bson:"_id,omitempty"`
	Name     string        `json:"name"   bson:"name"`
	Email    string        `json:"email"  bson:"email"`
	Password string        `json:"-"      bson:"password"`
	Avatar   string        `json:"avatar,omitempty" bson:"avatar,omitempty"`
	JoinedAt time.Time     `json:"joinedAt" bson:"joined_at"`
}

// UserInfo is the display projection handed to clients. Never carries
// credentials.
type UserInfo struct {
	ID     bson.ObjectID `json:"_id"    bson:"_id"`
	Name   string        `json:"name"   bson:"name"`
	Avatar string        `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// UnknownUser stands in for authors that no longer resolve, so a deleted
// account never breaks rendering a thread.
func UnknownUser(id bson.ObjectID) UserInfo {
	return UserInfo{ID: id, Name: "Unknown"}
}
