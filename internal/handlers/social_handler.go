package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/dto"
	"compilex/internal/authctx"
	"compilex/services"
)

// SocialHandler exposes the like/comment/reply operations of a post.
type SocialHandler struct {
	Service *services.SocialService
}

func actorID(c *fiber.Ctx) (bson.ObjectID, error) {
	uid, ok := authctx.UserIDFrom(c)
	if !ok {
		return bson.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return uid, nil
}

func paramID(c *fiber.Ctx, name string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return bson.NilObjectID, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func socialError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEmptyText):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
}

func commentsResponse(c *fiber.Ctx, comments []dto.CommentView, err error) error {
	if err != nil {
		return socialError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "comments": comments})
}

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Tags         social
// @Produce      json
// @Param        id path string true "post id"
// @Success      200 {object} dto.LikeResult
// @Router       /uploads/{id}/like [post]
func (h *SocialHandler) ToggleLike(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.Service.ToggleLike(c.Context(), postID, uid)
	if err != nil {
		return socialError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "likes": res.Likes, "likedByUser": res.LikedByUser})
}

// AddComment godoc
// @Summary      Comment on a post
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        id path string true "post id"
// @Param        body body dto.CommentTextReq true "comment text"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment [post]
func (h *SocialHandler) AddComment(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body dto.CommentTextReq
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	comments, err := h.Service.AddComment(c.Context(), postID, uid, body.Text)
	return commentsResponse(c, comments, err)
}

// ToggleCommentLike godoc
// @Summary      Like or unlike a comment
// @Tags         social
// @Produce      json
// @Param        id path string true "post id"
// @Param        commentId path string true "comment id"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment/{commentId}/like [post]
func (h *SocialHandler) ToggleCommentLike(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}

	comments, err := h.Service.ToggleCommentLike(c.Context(), postID, commentID, uid)
	return commentsResponse(c, comments, err)
}

// AddReply godoc
// @Summary      Reply to a comment
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        id path string true "post id"
// @Param        commentId path string true "comment id"
// @Param        body body dto.CommentTextReq true "reply text"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment/{commentId}/reply [post]
func (h *SocialHandler) AddReply(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	var body dto.CommentTextReq
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	comments, err := h.Service.AddReply(c.Context(), postID, commentID, uid, body.Text)
	return commentsResponse(c, comments, err)
}

// EditComment godoc
// @Summary      Edit own comment
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        id path string true "post id"
// @Param        commentId path string true "comment id"
// @Param        body body dto.CommentTextReq true "new text"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment/{commentId} [put]
func (h *SocialHandler) EditComment(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	var body dto.CommentTextReq
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	comments, err := h.Service.EditComment(c.Context(), postID, commentID, uid, body.Text)
	return commentsResponse(c, comments, err)
}

// DeleteComment godoc
// @Summary      Delete a comment (author or post owner)
// @Tags         social
// @Produce      json
// @Param        id path string true "post id"
// @Param        commentId path string true "comment id"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment/{commentId} [delete]
func (h *SocialHandler) DeleteComment(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}

	comments, err := h.Service.DeleteComment(c.Context(), postID, commentID, uid)
	return commentsResponse(c, comments, err)
}

// EditReply godoc
// @Summary      Edit own reply
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        id path string true "post id"
// @Param        commentId path string true "comment id"
// @Param        replyId path string true "reply id"
// @Param        body body dto.CommentTextReq true "new text"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment/{commentId}/reply/{replyId} [put]
func (h *SocialHandler) EditReply(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	replyID, err := paramID(c, "replyId")
	if err != nil {
		return err
	}
	var body dto.CommentTextReq
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	comments, err := h.Service.EditReply(c.Context(), postID, commentID, replyID, uid, body.Text)
	return commentsResponse(c, comments, err)
}

// DeleteReply godoc
// @Summary      Delete a reply (author or post owner)
// @Tags         social
// @Produce      json
// @Param        id path string true "post id"
// @Param        commentId path string true "comment id"
// @Param        replyId path string true "reply id"
// @Success      200 {object} map[string]interface{}
// @Router       /uploads/{id}/comment/{commentId}/reply/{replyId} [delete]
func (h *SocialHandler) DeleteReply(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	replyID, err := paramID(c, "replyId")
	if err != nil {
		return err
	}

	comments, err := h.Service.DeleteReply(c.Context(), postID, commentID, replyID, uid)
	return commentsResponse(c, comments, err)
}
