package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/dto"
	"compilex/internal/repository"
	"compilex/model"
)

// SocialService owns the like/comment/reply aggregate of an upload.
// Every operation loads the whole document, applies one mutation, saves
// it back, and returns the fully resolved state so the client can simply
// overwrite whatever it rendered optimistically.
type SocialService struct {
	Uploads repository.UploadStore
	Users   repository.UserStore
}

func NewSocialService(uploads repository.UploadStore, users repository.UserStore) *SocialService {
	return &SocialService{Uploads: uploads, Users: users}
}

func (s *SocialService) upload(ctx context.Context, id bson.ObjectID) (*model.Upload, error) {
	u, err := s.Uploads.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ToggleLike flips whether the actor likes the post. Not idempotent:
// every call flips, so callers must not retry blindly.
func (s *SocialService) ToggleLike(ctx context.Context, postID, actorID bson.ObjectID) (dto.LikeResult, error) {
	post, err := s.upload(ctx, postID)
	if err != nil {
		return dto.LikeResult{}, err
	}

	liked := post.ToggleLike(actorID)
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return dto.LikeResult{}, err
	}
	return dto.LikeResult{Likes: post.Likes, LikedByUser: liked}, nil
}

func (s *SocialService) ToggleCommentLike(ctx context.Context, postID, commentID, actorID bson.ObjectID) ([]dto.CommentView, error) {
	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, ErrNotFound
	}

	comment.ToggleLike(actorID)
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

// AddComment appends at the tail; comment order is creation order.
func (s *SocialService) AddComment(ctx context.Context, postID, actorID bson.ObjectID, text string) ([]dto.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}

	post.Comments = append(post.Comments, model.NewComment(actorID, text, time.Now().UTC()))
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

func (s *SocialService) AddReply(ctx context.Context, postID, commentID, actorID bson.ObjectID, text string) ([]dto.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, ErrNotFound
	}

	comment.Replies = append(comment.Replies, model.NewReply(actorID, text, time.Now().UTC()))
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

// EditComment is author-only. Owning the post grants no edit rights,
// unlike delete.
func (s *SocialService) EditComment(ctx context.Context, postID, commentID, actorID bson.ObjectID, text string) ([]dto.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, ErrNotFound
	}
	if comment.User != actorID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	comment.Text = text
	comment.EditedAt = &now
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

func (s *SocialService) EditReply(ctx context.Context, postID, commentID, replyID, actorID bson.ObjectID, text string) ([]dto.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, ErrNotFound
	}
	reply := comment.Reply(replyID)
	if reply == nil {
		return nil, ErrNotFound
	}
	if reply.User != actorID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	reply.Text = text
	reply.EditedAt = &now
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

// DeleteComment: comment author or post owner. The replies live inside
// the comment, so removing it cascades in the same save.
func (s *SocialService) DeleteComment(ctx context.Context, postID, commentID, actorID bson.ObjectID) ([]dto.CommentView, error) {
	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, ErrNotFound
	}
	if comment.User != actorID && post.UploadedBy != actorID {
		return nil, ErrForbidden
	}

	post.RemoveComment(commentID)
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

// DeleteReply: reply author or post owner. The comment's author gets no
// say over replies they did not write.
func (s *SocialService) DeleteReply(ctx context.Context, postID, commentID, replyID, actorID bson.ObjectID) ([]dto.CommentView, error) {
	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := post.Comment(commentID)
	if comment == nil {
		return nil, ErrNotFound
	}
	reply := comment.Reply(replyID)
	if reply == nil {
		return nil, ErrNotFound
	}
	if reply.User != actorID && post.UploadedBy != actorID {
		return nil, ErrForbidden
	}

	comment.RemoveReply(replyID)
	if err := s.Uploads.Replace(ctx, post); err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

// Comments returns the resolved comment list without mutating anything.
func (s *SocialService) Comments(ctx context.Context, postID bson.ObjectID) ([]dto.CommentView, error) {
	post, err := s.upload(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.resolveComments(ctx, post)
}

func (s *SocialService) resolveComments(ctx context.Context, post *model.Upload) ([]dto.CommentView, error) {
	return resolveCommentViews(ctx, s.Users, post)
}

// resolveCommentViews swaps every author id for a display projection.
// Authors that no longer resolve become the Unknown placeholder; a
// deleted account must never fail the whole operation.
func resolveCommentViews(ctx context.Context, store repository.UserStore, post *model.Upload) ([]dto.CommentView, error) {
	ids := []bson.ObjectID{}
	seen := map[bson.ObjectID]bool{}
	collect := func(id bson.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range post.Comments {
		collect(c.User)
		for _, r := range c.Replies {
			collect(r.User)
		}
	}

	users, err := store.FindManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	info := func(id bson.ObjectID) model.UserInfo {
		if u, ok := users[id]; ok {
			return u.Info()
		}
		return model.UnknownUser(id)
	}

	views := make([]dto.CommentView, 0, len(post.Comments))
	for _, c := range post.Comments {
		replies := make([]dto.ReplyView, 0, len(c.Replies))
		for _, r := range c.Replies {
			replies = append(replies, dto.ReplyView{
				ID:        r.ID,
				User:      info(r.User),
				Text:      r.Text,
				CreatedAt: r.CreatedAt,
				EditedAt:  r.EditedAt,
				Likes:     r.Likes,
				LikedBy:   r.LikedBy,
			})
		}
		views = append(views, dto.CommentView{
			ID:        c.ID,
			User:      info(c.User),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
			EditedAt:  c.EditedAt,
			Likes:     c.Likes,
			LikedBy:   c.LikedBy,
			Replies:   replies,
		})
	}
	return views, nil
}
