package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/dto"
	"compilex/model"
)

// MemoryUploadStore keeps uploads in a map. It backs tests and the
// STORAGE=memory dev mode. Reads hand out deep copies so a caller's
// mutations only become visible through Replace, matching the
// load-mutate-save discipline of the Mongo store.
type MemoryUploadStore struct {
	mu      sync.RWMutex
	uploads map[bson.ObjectID]model.Upload
}

func NewMemoryUploadStore() *MemoryUploadStore {
	return &MemoryUploadStore{uploads: make(map[bson.ObjectID]model.Upload)}
}

func cloneUpload(u model.Upload) model.Upload {
	out := u
	out.Files = append([]model.FileRef{}, u.Files...)
	out.LikedBy = append([]bson.ObjectID{}, u.LikedBy...)
	out.Contributors = append([]bson.ObjectID{}, u.Contributors...)
	out.Comments = make([]model.Comment, len(u.Comments))
	for i, c := range u.Comments {
		cc := c
		cc.LikedBy = append([]bson.ObjectID{}, c.LikedBy...)
		cc.Replies = make([]model.Reply, len(c.Replies))
		for j, rep := range c.Replies {
			rr := rep
			rr.LikedBy = append([]bson.ObjectID{}, rep.LikedBy...)
			cc.Replies[j] = rr
		}
		out.Comments[i] = cc
	}
	return out
}

func (s *MemoryUploadStore) Insert(ctx context.Context, u *model.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == bson.NilObjectID {
		u.ID = bson.NewObjectID()
	}
	s.uploads[u.ID] = cloneUpload(*u)
	return nil
}

func (s *MemoryUploadStore) FindByID(ctx context.Context, id bson.ObjectID) (*model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.uploads[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUpload(u)
	return &out, nil
}

func (s *MemoryUploadStore) Replace(ctx context.Context, u *model.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[u.ID]; !ok {
		return ErrNotFound
	}
	s.uploads[u.ID] = cloneUpload(*u)
	return nil
}

func (s *MemoryUploadStore) Delete(ctx context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[id]; !ok {
		return ErrNotFound
	}
	delete(s.uploads, id)
	return nil
}

func (s *MemoryUploadStore) Find(ctx context.Context, f UploadFilter) ([]model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Upload{}
	for _, u := range s.uploads {
		if f.Type != "" && u.Type != f.Type {
			continue
		}
		if f.UploadedBy != bson.NilObjectID && u.UploadedBy != f.UploadedBy {
			continue
		}
		out = append(out, cloneUpload(u))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryUploadStore) FindPYP(ctx context.Context, subject, branch string, semester, year int) (*model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.uploads {
		if u.Type == model.TypePYP && u.Subject == subject && u.Branch == branch &&
			u.Semester == semester && u.Year == year {
			out := cloneUpload(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUploadStore) FindByFileHash(ctx context.Context, hash string) (*model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.uploads {
		if u.Type == model.TypeNotes && u.FileHash != "" && u.FileHash == hash {
			out := cloneUpload(u)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUploadStore) DistinctSubjects(ctx context.Context, branch string, semester int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	subjects := []string{}
	for _, u := range s.uploads {
		if u.Branch != branch || u.Semester != semester || u.Subject == "" {
			continue
		}
		if !seen[u.Subject] {
			seen[u.Subject] = true
			subjects = append(subjects, u.Subject)
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}

func (s *MemoryUploadStore) SubjectGroups(ctx context.Context, branch string, semester int) ([]dto.SubjectGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySubject := map[string]*dto.SubjectGroup{}
	for _, u := range s.uploads {
		if u.Branch != branch || u.Semester != semester {
			continue
		}
		if u.Type != model.TypeNotes && u.Type != model.TypePYP {
			continue
		}
		g, ok := bySubject[u.Subject]
		if !ok {
			g = &dto.SubjectGroup{Subject: u.Subject, Notes: []dto.SubjectItem{}, PYP: []dto.SubjectItem{}}
			bySubject[u.Subject] = g
		}
		for _, f := range u.Files {
			item := dto.SubjectItem{
				UploadID:     u.ID,
				Type:         u.Type,
				Year:         u.Year,
				OriginalName: f.OriginalName,
				URL:          f.URL,
			}
			if u.Type == model.TypeNotes {
				g.Notes = append(g.Notes, item)
			} else {
				g.PYP = append(g.PYP, item)
			}
		}
	}

	groups := []dto.SubjectGroup{}
	for _, g := range bySubject {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.Compare(groups[i].Subject, groups[j].Subject) < 0
	})
	return groups, nil
}

// MemoryUserStore is the in-memory counterpart of UserRepository.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[bson.ObjectID]model.User)}
}

func (s *MemoryUserStore) Insert(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID == bson.NilObjectID {
		u.ID = bson.NewObjectID()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindManyByID(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[bson.ObjectID]model.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// Remove deletes a user outright; tests use it to exercise the
// unknown-author fallback.
func (s *MemoryUserStore) Remove(id bson.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}
