package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/dto"
	"compilex/internal/filestore"
	"compilex/internal/repository"
	"compilex/internal/utils"
	"compilex/model"
)

// UploadedFile is one file taken out of the multipart form.
type UploadedFile struct {
	Name     string
	MimeType string
	Data     []byte
}

type UploadService struct {
	Uploads repository.UploadStore
	Users   repository.UserStore
	Files   filestore.FileStore
}

func NewUploadService(uploads repository.UploadStore, users repository.UserStore, files filestore.FileStore) *UploadService {
	return &UploadService{Uploads: uploads, Users: users, Files: files}
}

var ErrInvalidType = errors.New("invalid upload type")

// Create inserts a new upload. pyp posts deduplicate on the
// (subject, branch, semester, year) tuple, notes on the content hash; a
// duplicate merges the actor into the existing post's contributors and
// comes back as a ConflictError, not an insert. The check-then-act
// window is backed by unique indexes: a racing insert that trips the
// index falls into the same merge path.
func (s *UploadService) Create(ctx context.Context, actorID bson.ObjectID, req dto.CreateUploadReq, files []UploadedFile) (*dto.UploadView, error) {
	if !model.ValidUploadType(req.Type) {
		return nil, ErrInvalidType
	}

	now := time.Now().UTC()
	u := &model.Upload{
		Type:         req.Type,
		Title:        req.Title,
		Description:  req.Description,
		LikedBy:      []bson.ObjectID{},
		Comments:     []model.Comment{},
		UploadedBy:   actorID,
		Contributors: []bson.ObjectID{actorID},
		UploadedAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.Title == "" {
		u.Title = req.Subject
	}

	switch req.Type {
	case model.TypeProject:
		u.LiveLink = req.LiveLink
		u.GithubLink = req.GithubLink
	case model.TypeNotes:
		u.Subject = utils.NormalizeSubject(req.Subject)
		u.Branch = req.Branch
		u.Semester = req.Semester
	case model.TypePYP:
		u.Subject = utils.NormalizeSubject(req.Subject)
		u.Branch = req.Branch
		u.Semester = req.Semester
		u.Year = req.Year
	case model.TypeInfo:
		u.Message = req.Message
	}

	if req.Type == model.TypePYP {
		existing, err := s.Uploads.FindPYP(ctx, u.Subject, u.Branch, u.Semester, u.Year)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, s.mergeContributor(ctx, existing, actorID,
				"PYP already exists! You've been added as a contributor.")
		}
	}

	for _, f := range files {
		hash := utils.FileHash(f.Data)
		if req.Type == model.TypeNotes {
			existing, err := s.Uploads.FindByFileHash(ctx, hash)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			if existing != nil {
				s.destroyFiles(ctx, u.Files)
				return nil, s.mergeContributor(ctx, existing, actorID,
					"Duplicate notes detected! You've been added as a contributor.")
			}
		}

		ref, err := s.Files.Upload(ctx, f.Data, f.Name, f.MimeType)
		if err != nil {
			s.destroyFiles(ctx, u.Files)
			return nil, err
		}
		u.Files = append(u.Files, ref)
		u.FileHash = hash
	}

	if err := s.Uploads.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost the race against a concurrent identical submission
			s.destroyFiles(ctx, u.Files)
			return nil, s.mergeRaced(ctx, u, actorID)
		}
		return nil, err
	}

	view := s.view(ctx, u, actorID)
	return &view, nil
}

func (s *UploadService) mergeContributor(ctx context.Context, existing *model.Upload, actorID bson.ObjectID, msg string) error {
	if existing.AddContributor(actorID) {
		if err := s.Uploads.Replace(ctx, existing); err != nil {
			return err
		}
	}
	return &ConflictError{Message: msg, Existing: existing.ID}
}

// mergeRaced re-finds the document that beat us to the unique index and
// merges the actor into it.
func (s *UploadService) mergeRaced(ctx context.Context, u *model.Upload, actorID bson.ObjectID) error {
	var existing *model.Upload
	var err error
	if u.Type == model.TypePYP {
		existing, err = s.Uploads.FindPYP(ctx, u.Subject, u.Branch, u.Semester, u.Year)
	} else {
		existing, err = s.Uploads.FindByFileHash(ctx, u.FileHash)
	}
	if errors.Is(err, repository.ErrNotFound) {
		// the winner vanished before we could merge into it
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	msg := "PYP already exists! You've been added as a contributor."
	if u.Type == model.TypeNotes {
		msg = "Duplicate notes detected! You've been added as a contributor."
	}
	return s.mergeContributor(ctx, existing, actorID, msg)
}

func (s *UploadService) destroyFiles(ctx context.Context, refs []model.FileRef) {
	for _, ref := range refs {
		if err := s.Files.Destroy(ctx, ref); err != nil {
			log.Printf("failed to destroy stored file %s: %v", ref.PublicID, err)
		}
	}
}

func (s *UploadService) Get(ctx context.Context, id, actorID bson.ObjectID) (*dto.UploadView, error) {
	u, err := s.Uploads.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	view := s.view(ctx, u, actorID)
	return &view, nil
}

// Feed returns uploads of one type, newest first, fully resolved.
func (s *UploadService) Feed(ctx context.Context, postType string, actorID bson.ObjectID) ([]dto.UploadView, error) {
	uploads, err := s.Uploads.Find(ctx, repository.UploadFilter{Type: postType})
	if err != nil {
		return nil, err
	}
	views := make([]dto.UploadView, 0, len(uploads))
	for i := range uploads {
		views = append(views, s.view(ctx, &uploads[i], actorID))
	}
	return views, nil
}

func (s *UploadService) ListAll(ctx context.Context, actorID bson.ObjectID) ([]dto.UploadView, error) {
	uploads, err := s.Uploads.Find(ctx, repository.UploadFilter{})
	if err != nil {
		return nil, err
	}
	views := make([]dto.UploadView, 0, len(uploads))
	for i := range uploads {
		views = append(views, s.view(ctx, &uploads[i], actorID))
	}
	return views, nil
}

func (s *UploadService) ListByUser(ctx context.Context, userID bson.ObjectID) ([]model.Upload, error) {
	return s.Uploads.Find(ctx, repository.UploadFilter{UploadedBy: userID})
}

// Update patches descriptive fields. Owner only; type is immutable.
func (s *UploadService) Update(ctx context.Context, id, actorID bson.ObjectID, patch dto.UpdateUploadReq) (*dto.UploadView, error) {
	u, err := s.Uploads.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.UploadedBy != actorID {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		u.Title = *patch.Title
	}
	if patch.Description != nil {
		u.Description = *patch.Description
	}
	if patch.Message != nil {
		u.Message = *patch.Message
	}
	if patch.LiveLink != nil {
		u.LiveLink = *patch.LiveLink
	}
	if patch.GithubLink != nil {
		u.GithubLink = *patch.GithubLink
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.Uploads.Replace(ctx, u); err != nil {
		return nil, err
	}
	view := s.view(ctx, u, actorID)
	return &view, nil
}

// Delete removes the upload and releases its externally stored files.
// File destroys are best-effort: a stale reference in the file store
// beats a post that cannot be deleted.
func (s *UploadService) Delete(ctx context.Context, id, actorID bson.ObjectID) error {
	u, err := s.Uploads.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if u.UploadedBy != actorID {
		return ErrForbidden
	}

	s.destroyFiles(ctx, u.Files)
	return s.Uploads.Delete(ctx, id)
}

// PrimaryFile picks the file the download endpoint redirects to.
func (s *UploadService) PrimaryFile(ctx context.Context, id bson.ObjectID) (model.FileRef, error) {
	u, err := s.Uploads.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.FileRef{}, ErrNotFound
	}
	if err != nil {
		return model.FileRef{}, err
	}
	if len(u.Files) == 0 || u.Files[0].URL == "" {
		return model.FileRef{}, ErrNotFound
	}
	return u.Files[0], nil
}

// Subjects lists distinct subjects for autocomplete, optionally filtered
// by a case-insensitive substring.
func (s *UploadService) Subjects(ctx context.Context, branch string, semester int, q string) ([]string, error) {
	subjects, err := s.Uploads.DistinctSubjects(ctx, branch, semester)
	if err != nil {
		return nil, err
	}
	if q == "" {
		return subjects, nil
	}
	q = strings.ToLower(q)
	out := []string{}
	for _, subj := range subjects {
		if strings.Contains(strings.ToLower(subj), q) {
			out = append(out, subj)
		}
	}
	return out, nil
}

func (s *UploadService) SubjectGroups(ctx context.Context, branch string, semester int) ([]dto.SubjectGroup, error) {
	return s.Uploads.SubjectGroups(ctx, branch, semester)
}

// view resolves the uploader and comment authors. Resolution failures
// degrade to the Unknown placeholder rather than dropping the post.
func (s *UploadService) view(ctx context.Context, u *model.Upload, actorID bson.ObjectID) dto.UploadView {
	uploader := model.UnknownUser(u.UploadedBy)
	if usr, err := s.Users.FindByID(ctx, u.UploadedBy); err == nil {
		uploader = usr.Info()
	}

	comments, err := resolveCommentViews(ctx, s.Users, u)
	if err != nil {
		comments = []dto.CommentView{}
	}

	return dto.UploadView{
		ID:           u.ID,
		Type:         u.Type,
		Title:        u.Title,
		Description:  u.Description,
		Message:      u.Message,
		Files:        u.Files,
		Likes:        u.Likes,
		LikedBy:      u.LikedBy,
		LikedByUser:  u.LikedByUser(actorID),
		Comments:     comments,
		UploadedBy:   uploader,
		LiveLink:     u.LiveLink,
		GithubLink:   u.GithubLink,
		Subject:      u.Subject,
		Branch:       u.Branch,
		Semester:     u.Semester,
		Year:         u.Year,
		Contributors: u.Contributors,
		UploadedAt:   u.UploadedAt,
		CreatedAt:    u.CreatedAt,
	}
}
