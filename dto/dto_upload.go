package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/model"
)

// CreateUploadReq carries the multipart form fields; files arrive
// separately through the form parser.
type CreateUploadReq struct {
	Type        string `json:"type"        form:"type"`
	Title       string `json:"title"       form:"title"`
	Description string `json:"description" form:"description"`
	Message     string `json:"message"     form:"message"`
	LiveLink    string `json:"liveLink"    form:"liveLink"`
	GithubLink  string `json:"githubLink"  form:"githubLink"`
	Subject     string `json:"subject"     form:"subject"`
	Branch      string `json:"branch"      form:"branch"`
	Semester    int    `json:"semester"    form:"semester"`
	Year        int    `json:"year"        form:"year"`
}

// UpdateUploadReq holds the owner-editable descriptive fields. Nil means
// "leave unchanged".
type UpdateUploadReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Message     *string `json:"message"`
	LiveLink    *string `json:"liveLink"`
	GithubLink  *string `json:"githubLink"`
}

// UploadView is an upload with uploader and comment authors resolved.
type UploadView struct {
	ID           bson.ObjectID   `json:"_id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Message      string          `json:"message,omitempty"`
	Files        []model.FileRef `json:"files"`
	Likes        int             `json:"likes"`
	LikedBy      []bson.ObjectID `json:"likedBy"`
	LikedByUser  bool            `json:"likedByUser"`
	Comments     []CommentView   `json:"comments"`
	UploadedBy   model.UserInfo  `json:"uploadedBy"`
	LiveLink     string          `json:"liveLink,omitempty"`
	GithubLink   string          `json:"githubLink,omitempty"`
	Subject      string          `json:"subject,omitempty"`
	Branch       string          `json:"branch,omitempty"`
	Semester     int             `json:"semester,omitempty"`
	Year         int             `json:"year,omitempty"`
	Contributors []bson.ObjectID `json:"contributors"`
	UploadedAt   time.Time       `json:"uploadedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
}
