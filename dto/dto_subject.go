package dto

import "go.mongodb.org/mongo-driver/v2/bson"

// SubjectItem is one downloadable entry inside a subject group.
type SubjectItem struct {
	UploadID     bson.ObjectID `json:"uploadId"     bson:"upload_id"`
	Type         string        `json:"type"         bson:"type"`
	Year         int           `json:"year,omitempty" bson:"year,omitempty"`
	OriginalName string        `json:"originalName" bson:"original_name"`
	URL          string        `json:"url"          bson:"url"`
}

// SubjectGroup collects the notes and past papers filed under one subject
// for a branch/semester pair.
type SubjectGroup struct {
	Subject string        `json:"subject" bson:"subject"`
	Notes   []SubjectItem `json:"notes"   bson:"notes"`
	PYP     []SubjectItem `json:"pyp"     bson:"pyp"`
}
