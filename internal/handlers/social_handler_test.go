package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/internal/filestore"
	"compilex/internal/handlers"
	"compilex/internal/repository"
	"compilex/internal/routes"
	"compilex/model"
	"compilex/services"
)

type testApp struct {
	app     *fiber.App
	uploads *repository.MemoryUploadStore
	users   *repository.MemoryUserStore
}

// newTestApp wires the real routes over memory stores, with the JWT
// middleware swapped for an X-User-ID header shim.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	uploads := repository.NewMemoryUploadStore()
	users := repository.NewMemoryUserStore()
	files := filestore.NewMemoryStore()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if uid := c.Get("X-User-ID"); uid != "" {
			c.Locals("user_id", uid)
		}
		return c.Next()
	})

	routes.Register(app, routes.Deps{
		Users:   &handlers.UserHandler{Service: services.NewAuthService(users, "test-secret")},
		Uploads: &handlers.UploadHandler{Service: services.NewUploadService(uploads, users, files)},
		Social:  &handlers.SocialHandler{Service: services.NewSocialService(uploads, users)},
	})

	return &testApp{app: app, uploads: uploads, users: users}
}

func (ta *testApp) seedUser(t *testing.T, name string) bson.ObjectID {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", JoinedAt: time.Now().UTC()}
	require.NoError(t, ta.users.Insert(context.Background(), u))
	return u.ID
}

func (ta *testApp) seedPost(t *testing.T, owner bson.ObjectID) bson.ObjectID {
	t.Helper()
	now := time.Now().UTC()
	u := &model.Upload{
		Type:         model.TypeInfo,
		Message:      "hello campus",
		LikedBy:      []bson.ObjectID{},
		Comments:     []model.Comment{},
		UploadedBy:   owner,
		Contributors: []bson.ObjectID{owner},
		UploadedAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, ta.uploads.Insert(context.Background(), u))
	return u.ID
}

func (ta *testApp) do(t *testing.T, method, path string, actor bson.ObjectID, body string) (int, map[string]any) {
	t.Helper()
	var req = httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != bson.NilObjectID {
		req.Header.Set("X-User-ID", actor.Hex())
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func TestToggleLikeEndpoint(t *testing.T) {
	ta := newTestApp(t)
	owner := ta.seedUser(t, "Alice")
	actor := ta.seedUser(t, "Bob")
	postID := ta.seedPost(t, owner)

	status, body := ta.do(t, "POST", "/api/uploads/"+postID.Hex()+"/like", actor, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["likes"])
	assert.Equal(t, true, body["likedByUser"])

	status, body = ta.do(t, "POST", "/api/uploads/"+postID.Hex()+"/like", actor, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["likes"])
	assert.Equal(t, false, body["likedByUser"])
}

func TestToggleLikeEndpoint_RequiresAuth(t *testing.T) {
	ta := newTestApp(t)
	owner := ta.seedUser(t, "Alice")
	postID := ta.seedPost(t, owner)

	status, _ := ta.do(t, "POST", "/api/uploads/"+postID.Hex()+"/like", bson.NilObjectID, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAddCommentEndpoint(t *testing.T) {
	ta := newTestApp(t)
	owner := ta.seedUser(t, "Alice")
	actor := ta.seedUser(t, "Bob")
	postID := ta.seedPost(t, owner)

	status, body := ta.do(t, "POST", "/api/uploads/"+postID.Hex()+"/comment", actor, `{"text":"nice notes"}`)
	require.Equal(t, fiber.StatusOK, status)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	first := comments[0].(map[string]any)
	assert.Equal(t, "nice notes", first["text"])
	assert.Equal(t, "Bob", first["user"].(map[string]any)["name"])

	status, body = ta.do(t, "POST", "/api/uploads/"+postID.Hex()+"/comment", actor, `{"text":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestEditCommentEndpoint_ForbiddenForPostOwner(t *testing.T) {
	ta := newTestApp(t)
	owner := ta.seedUser(t, "Alice")
	author := ta.seedUser(t, "Bob")
	postID := ta.seedPost(t, owner)

	status, body := ta.do(t, "POST", "/api/uploads/"+postID.Hex()+"/comment", author, `{"text":"mine"}`)
	require.Equal(t, fiber.StatusOK, status)
	commentID := body["comments"].([]any)[0].(map[string]any)["_id"].(string)

	path := "/api/uploads/" + postID.Hex() + "/comment/" + commentID
	status, _ = ta.do(t, "PUT", path, owner, `{"text":"hijack"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = ta.do(t, "PUT", path, author, `{"text":"edited"}`)
	require.Equal(t, fiber.StatusOK, status)
	edited := body["comments"].([]any)[0].(map[string]any)
	assert.Equal(t, "edited", edited["text"])
	assert.NotNil(t, edited["editedAt"])

	// post owner can delete what they cannot edit
	status, body = ta.do(t, "DELETE", path, owner, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["comments"])
}

func TestCommentEndpoint_UnknownPost(t *testing.T) {
	ta := newTestApp(t)
	actor := ta.seedUser(t, "Bob")

	status, _ := ta.do(t, "POST", "/api/uploads/"+bson.NewObjectID().Hex()+"/comment", actor, `{"text":"hi"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = ta.do(t, "POST", "/api/uploads/not-an-id/comment", actor, `{"text":"hi"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
