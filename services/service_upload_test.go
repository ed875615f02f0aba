package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/dto"
	"compilex/internal/filestore"
	"compilex/internal/repository"
	"compilex/internal/utils"
	"compilex/model"
)

type uploadFixture struct {
	svc     *UploadService
	uploads *repository.MemoryUploadStore
	users   *repository.MemoryUserStore
	files   *filestore.MemoryStore
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	uploads := repository.NewMemoryUploadStore()
	users := repository.NewMemoryUserStore()
	files := filestore.NewMemoryStore()
	return &uploadFixture{
		svc:     NewUploadService(uploads, users, files),
		uploads: uploads,
		users:   users,
		files:   files,
	}
}

func (f *uploadFixture) seedUser(t *testing.T, name string) bson.ObjectID {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", JoinedAt: time.Now().UTC()}
	require.NoError(t, f.users.Insert(context.Background(), u))
	return u.ID
}

func pypReq() dto.CreateUploadReq {
	return dto.CreateUploadReq{
		Type:     model.TypePYP,
		Subject:  "Data Structures",
		Branch:   "CSE",
		Semester: 3,
		Year:     2024,
	}
}

func TestCreate_InvalidType(t *testing.T) {
	f := newUploadFixture(t)
	actor := f.seedUser(t, "Alice")

	_, err := f.svc.Create(context.Background(), actor, dto.CreateUploadReq{Type: "meme"}, nil)
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCreate_NormalizesSubject(t *testing.T) {
	f := newUploadFixture(t)
	actor := f.seedUser(t, "Alice")

	view, err := f.svc.Create(context.Background(), actor, pypReq(), nil)
	require.NoError(t, err)
	assert.Equal(t, "data structures", view.Subject)
	assert.Equal(t, []bson.ObjectID{actor}, view.Contributors)
}

func TestCreate_PYPDuplicateMergesContributor(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	first := f.seedUser(t, "Alice")
	second := f.seedUser(t, "Bob")

	view, err := f.svc.Create(ctx, first, pypReq(), nil)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, second, pypReq(), nil)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, view.ID, conflict.Existing)
	assert.Contains(t, conflict.Message, "added as a contributor")

	existing, err := f.uploads.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []bson.ObjectID{first, second}, existing.Contributors)

	// resubmitting never double-credits
	_, err = f.svc.Create(ctx, second, pypReq(), nil)
	require.ErrorAs(t, err, &conflict)
	existing, err = f.uploads.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Len(t, existing.Contributors, 2)

	// still only one pyp document
	all, err := f.uploads.Find(ctx, repository.UploadFilter{Type: model.TypePYP})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_NotesDuplicateByHash(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	first := f.seedUser(t, "Alice")
	second := f.seedUser(t, "Bob")

	notes := dto.CreateUploadReq{Type: model.TypeNotes, Subject: "maths", Branch: "CSE", Semester: 1}
	content := testFiles{{"calc.pdf", "application/pdf", []byte("integral tables")}}

	view, err := f.svc.Create(ctx, first, notes, content.toUploads())
	require.NoError(t, err)
	require.Len(t, view.Files, 1)

	_, err = f.svc.Create(ctx, second, notes, content.toUploads())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	existing, err := f.uploads.FindByID(ctx, view.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []bson.ObjectID{first, second}, existing.Contributors)

	// different bytes are not a duplicate
	other := testFiles{{"calc2.pdf", "application/pdf", []byte("derivative tables")}}
	_, err = f.svc.Create(ctx, second, notes, other.toUploads())
	require.NoError(t, err)
}

type testFile struct {
	name string
	mime string
	data []byte
}

type testFiles []testFile

func (files testFiles) toUploads() []UploadedFile {
	out := make([]UploadedFile, 0, len(files))
	for _, f := range files {
		out = append(out, UploadedFile{Name: f.name, MimeType: f.mime, Data: f.data})
	}
	return out
}

func TestDelete_OwnerOnlyAndReleasesFiles(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "Alice")
	stranger := f.seedUser(t, "Bob")

	req := dto.CreateUploadReq{Type: model.TypeProject, Title: "compiler"}
	content := testFiles{{"report.pdf", "application/pdf", []byte("final report")}}
	view, err := f.svc.Create(ctx, owner, req, content.toUploads())
	require.NoError(t, err)
	require.Len(t, view.Files, 1)

	err = f.svc.Delete(ctx, view.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, view.ID, owner))
	assert.Equal(t, []string{view.Files[0].PublicID}, f.files.Destroyed())

	_, err = f.svc.Get(ctx, view.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, "Alice")
	stranger := f.seedUser(t, "Bob")

	view, err := f.svc.Create(ctx, owner, dto.CreateUploadReq{Type: model.TypeInfo, Message: "old"}, nil)
	require.NoError(t, err)

	msg := "new"
	_, err = f.svc.Update(ctx, view.ID, stranger, dto.UpdateUploadReq{Message: &msg})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.Update(ctx, view.ID, owner, dto.UpdateUploadReq{Message: &msg})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Message)
	assert.Equal(t, model.TypeInfo, updated.Type)
}

func TestFeed_FiltersTypeNewestFirst(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "Alice")

	older, err := f.svc.Create(ctx, actor, dto.CreateUploadReq{Type: model.TypeInfo, Message: "older"}, nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	newer, err := f.svc.Create(ctx, actor, dto.CreateUploadReq{Type: model.TypeInfo, Message: "newer"}, nil)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, actor, dto.CreateUploadReq{Type: model.TypeProject, Title: "p"}, nil)
	require.NoError(t, err)

	feed, err := f.svc.Feed(ctx, model.TypeInfo, actor)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.ID, feed[0].ID)
	assert.Equal(t, older.ID, feed[1].ID)
	assert.Equal(t, "Alice", feed[0].UploadedBy.Name)
}

func TestSubjects_Autocomplete(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "Alice")

	for _, subject := range []string{"Operating Systems", "Data Structures", "Databases"} {
		req := dto.CreateUploadReq{Type: model.TypeNotes, Subject: subject, Branch: "CSE", Semester: 3}
		content := testFiles{{subject + ".pdf", "application/pdf", []byte(subject)}}
		_, err := f.svc.Create(ctx, actor, req, content.toUploads())
		require.NoError(t, err)
	}

	subjects, err := f.svc.Subjects(ctx, "CSE", 3, "")
	require.NoError(t, err)
	assert.Len(t, subjects, 3)

	subjects, err = f.svc.Subjects(ctx, "CSE", 3, "data")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"data structures", "databases"}, subjects)
}

func TestSubjectGroups_SplitsNotesAndPYP(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "Alice")

	notes := dto.CreateUploadReq{Type: model.TypeNotes, Subject: "maths", Branch: "CSE", Semester: 1}
	notesFiles := testFiles{{"notes.pdf", "application/pdf", []byte("notes")}}
	_, err := f.svc.Create(ctx, actor, notes, notesFiles.toUploads())
	require.NoError(t, err)

	pyp := dto.CreateUploadReq{Type: model.TypePYP, Subject: "maths", Branch: "CSE", Semester: 1, Year: 2023}
	pypFiles := testFiles{{"2023.pdf", "application/pdf", []byte("paper")}}
	_, err = f.svc.Create(ctx, actor, pyp, pypFiles.toUploads())
	require.NoError(t, err)

	groups, err := f.svc.SubjectGroups(ctx, "CSE", 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "maths", groups[0].Subject)
	require.Len(t, groups[0].Notes, 1)
	require.Len(t, groups[0].PYP, 1)
	assert.Equal(t, "notes.pdf", groups[0].Notes[0].OriginalName)
	assert.Equal(t, 2023, groups[0].PYP[0].Year)
}

func TestPrimaryFile(t *testing.T) {
	f := newUploadFixture(t)
	ctx := context.Background()
	actor := f.seedUser(t, "Alice")

	bare, err := f.svc.Create(ctx, actor, dto.CreateUploadReq{Type: model.TypeInfo, Message: "no files"}, nil)
	require.NoError(t, err)
	_, err = f.svc.PrimaryFile(ctx, bare.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	content := testFiles{{"slides.pdf", "application/pdf", []byte("slides")}}
	withFile, err := f.svc.Create(ctx, actor, dto.CreateUploadReq{Type: model.TypeProject, Title: "t"}, content.toUploads())
	require.NoError(t, err)

	file, err := f.svc.PrimaryFile(ctx, withFile.ID)
	require.NoError(t, err)
	assert.Equal(t, "slides.pdf", file.OriginalName)
	assert.NotEmpty(t, file.URL)
}

// racedUploadStore simulates losing a create race: the dedup lookup
// misses while a concurrent identical submission lands, so the insert
// trips the unique index and the merge has to re-find the winner.
type racedUploadStore struct {
	*repository.MemoryUploadStore
	pypMisses  int
	hashMisses int
	dupInserts int
}

func (s *racedUploadStore) FindPYP(ctx context.Context, subject, branch string, semester, year int) (*model.Upload, error) {
	if s.pypMisses > 0 {
		s.pypMisses--
		return nil, repository.ErrNotFound
	}
	return s.MemoryUploadStore.FindPYP(ctx, subject, branch, semester, year)
}

func (s *racedUploadStore) FindByFileHash(ctx context.Context, hash string) (*model.Upload, error) {
	if s.hashMisses > 0 {
		s.hashMisses--
		return nil, repository.ErrNotFound
	}
	return s.MemoryUploadStore.FindByFileHash(ctx, hash)
}

func (s *racedUploadStore) Insert(ctx context.Context, u *model.Upload) error {
	if s.dupInserts > 0 {
		s.dupInserts--
		return repository.ErrDuplicate
	}
	return s.MemoryUploadStore.Insert(ctx, u)
}

type racedFixture struct {
	svc    *UploadService
	store  *racedUploadStore
	users  *repository.MemoryUserStore
	files  *filestore.MemoryStore
	winner bson.ObjectID
	loser  bson.ObjectID
}

func newRacedFixture(t *testing.T, store *racedUploadStore) *racedFixture {
	t.Helper()
	users := repository.NewMemoryUserStore()
	files := filestore.NewMemoryStore()
	f := &racedFixture{
		svc:   NewUploadService(store, users, files),
		store: store,
		users: users,
		files: files,
	}
	ctx := context.Background()
	w := &model.User{Name: "Alice", Email: "alice@example.com", JoinedAt: time.Now().UTC()}
	require.NoError(t, users.Insert(ctx, w))
	l := &model.User{Name: "Bob", Email: "bob@example.com", JoinedAt: time.Now().UTC()}
	require.NoError(t, users.Insert(ctx, l))
	f.winner, f.loser = w.ID, l.ID
	return f
}

func (f *racedFixture) seedWinner(t *testing.T, u model.Upload) bson.ObjectID {
	t.Helper()
	now := time.Now().UTC()
	u.LikedBy = []bson.ObjectID{}
	u.Comments = []model.Comment{}
	u.UploadedBy = f.winner
	u.Contributors = []bson.ObjectID{f.winner}
	u.UploadedAt, u.CreatedAt, u.UpdatedAt = now, now, now
	require.NoError(t, f.store.MemoryUploadStore.Insert(context.Background(), &u))
	return u.ID
}

func TestCreate_PYPInsertRaceMergesIntoWinner(t *testing.T) {
	store := &racedUploadStore{
		MemoryUploadStore: repository.NewMemoryUploadStore(),
		pypMisses:         1,
		dupInserts:        1,
	}
	f := newRacedFixture(t, store)
	ctx := context.Background()

	wonID := f.seedWinner(t, model.Upload{
		Type: model.TypePYP, Subject: "data structures", Branch: "CSE", Semester: 3, Year: 2024,
	})

	_, err := f.svc.Create(ctx, f.loser, pypReq(), nil)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, wonID, conflict.Existing)
	assert.Contains(t, conflict.Message, "PYP already exists")

	existing, err := f.store.MemoryUploadStore.FindByID(ctx, wonID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []bson.ObjectID{f.winner, f.loser}, existing.Contributors)
	assert.Zero(t, store.dupInserts)
}

func TestCreate_NotesInsertRaceMergesIntoWinner(t *testing.T) {
	store := &racedUploadStore{
		MemoryUploadStore: repository.NewMemoryUploadStore(),
		hashMisses:        1,
		dupInserts:        1,
	}
	f := newRacedFixture(t, store)
	ctx := context.Background()

	content := testFiles{{"calc.pdf", "application/pdf", []byte("integral tables")}}
	wonID := f.seedWinner(t, model.Upload{
		Type: model.TypeNotes, Subject: "maths", Branch: "CSE", Semester: 1,
		FileHash: utils.FileHash(content[0].data),
	})

	req := dto.CreateUploadReq{Type: model.TypeNotes, Subject: "maths", Branch: "CSE", Semester: 1}
	_, err := f.svc.Create(ctx, f.loser, req, content.toUploads())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, wonID, conflict.Existing)
	assert.Contains(t, conflict.Message, "Duplicate notes detected")

	existing, err := f.store.MemoryUploadStore.FindByID(ctx, wonID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []bson.ObjectID{f.winner, f.loser}, existing.Contributors)

	// the loser's already-stored copy is released again
	require.Len(t, f.files.Destroyed(), 1)
}

func TestCreate_RaceWinnerGoneIsNotFound(t *testing.T) {
	store := &racedUploadStore{
		MemoryUploadStore: repository.NewMemoryUploadStore(),
		pypMisses:         2,
		dupInserts:        1,
	}
	f := newRacedFixture(t, store)

	_, err := f.svc.Create(context.Background(), f.loser, pypReq(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
