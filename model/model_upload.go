package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Upload types. Type is fixed at creation and decides which
// optional fields are meaningful.
const (
	TypeProject = "project"
	TypeNotes   = "notes"
	TypePYP     = "pyp"
	TypeInfo    = "info"
)

func ValidUploadType(t string) bool {
	switch t {
	case TypeProject, TypeNotes, TypePYP, TypeInfo:
		return true
	}
	return false
}

// Upload is the root document: one record per post, with comments and
// replies embedded so a single save covers every nested mutation.
type Upload struct {
	ID          bson.ObjectID `json:"_id"         bson:"_id,omitempty"`
	Type        string        `json:"type"        bson:"type"`
	Title       string        `json:"title"       bson:"title,omitempty"`
	Description string        `json:"description" bson:"description,omitempty"`

	// info posts only
	Message string `json:"message,omitempty" bson:"message,omitempty"`

	Files []FileRef `json:"files" bson:"files,omitempty"`

	Likes   int             `json:"likes"   bson:"likes"`
	LikedBy []bson.ObjectID `json:"likedBy" bson:"liked_by"`

	Comments []Comment `json:"comments" bson:"comments"`

	UploadedBy bson.ObjectID `json:"uploadedBy" bson:"uploaded_by"`

	LiveLink   string `json:"liveLink,omitempty"   bson:"live_link,omitempty"`
	GithubLink string `json:"githubLink,omitempty" bson:"github_link,omitempty"`
	Subject    string `json:"subject,omitempty"    bson:"subject,omitempty"`
	Branch     string `json:"branch,omitempty"     bson:"branch,omitempty"`
	Semester   int    `json:"semester,omitempty"   bson:"semester,omitempty"`
	Year       int    `json:"year,omitempty"       bson:"year,omitempty"`

	// duplicate helpers
	FileHash     string          `json:"fileHash,omitempty" bson:"file_hash,omitempty"`
	Contributors []bson.ObjectID `json:"contributors"       bson:"contributors"`

	UploadedAt time.Time `json:"uploadedAt" bson:"uploaded_at"`
	CreatedAt  time.Time `json:"createdAt"  bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  bson:"updated_at"`
}

// FileRef points at a file held by the external file store.
type FileRef struct {
	OriginalName string `json:"originalName" bson:"original_name"`
	MimeType     string `json:"mimeType"     bson:"mime_type"`
	URL          string `json:"url"          bson:"url"`
	PublicID     string `json:"publicId"     bson:"public_id"`
	Format       string `json:"format,omitempty" bson:"format,omitempty"`
	Bytes        int64  `json:"bytes"        bson:"bytes"`
}

// toggleMember flips membership of user in a likedBy set. It returns the
// new set and whether the user is a member afterwards. The set never holds
// the same id twice.
func toggleMember(set []bson.ObjectID, user bson.ObjectID) ([]bson.ObjectID, bool) {
	for i, id := range set {
		if id == user {
			return append(set[:i:i], set[i+1:]...), false
		}
	}
	return append(set, user), true
}

// ToggleLike flips whether user likes the post. Likes is recomputed from
// the set so the counter can never drift from it.
func (u *Upload) ToggleLike(user bson.ObjectID) bool {
	var liked bool
	u.LikedBy, liked = toggleMember(u.LikedBy, user)
	u.Likes = len(u.LikedBy)
	return liked
}

func (u *Upload) LikedByUser(user bson.ObjectID) bool {
	for _, id := range u.LikedBy {
		if id == user {
			return true
		}
	}
	return false
}

// Comment returns the embedded comment with the given id, or nil.
func (u *Upload) Comment(id bson.ObjectID) *Comment {
	for i := range u.Comments {
		if u.Comments[i].ID == id {
			return &u.Comments[i]
		}
	}
	return nil
}

// RemoveComment drops the comment with the given id. Its replies live
// inside it, so the cascade is a single removal.
func (u *Upload) RemoveComment(id bson.ObjectID) bool {
	for i := range u.Comments {
		if u.Comments[i].ID == id {
			u.Comments = append(u.Comments[:i:i], u.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// AddContributor records user on the upload if not already credited.
// Reports whether the set changed.
func (u *Upload) AddContributor(user bson.ObjectID) bool {
	for _, id := range u.Contributors {
		if id == user {
			return false
		}
	}
	u.Contributors = append(u.Contributors, user)
	return true
}
