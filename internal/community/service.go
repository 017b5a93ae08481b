// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package community

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/farmlink/gateway/internal/platform/apperr"
	"github.com/farmlink/gateway/internal/platform/backend"
	"github.com/farmlink/gateway/internal/platform/ctxutil"
)

// upvoteLoginMessage is shown when an anonymous viewer tries to upvote.
const upvoteLoginMessage = "Please log in to upvote."

// Service executes forum writes against the backend.
//
// Reads go through the page fetchers in this package; Service only covers
// the authenticated mutations (create post, create reply, upvote).
type Service struct {
	client *backend.Client
	logger *slog.Logger
}

// NewService constructs a community Service.
func NewService(client *backend.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// CreatePostInput carries a new thread's fields.
type CreatePostInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// CreateReplyInput carries a new reply's body.
type CreateReplyInput struct {
	Content string `json:"content"`
}

// postEnvelope mirrors the backend's {data} wrapper for a single post.
type postEnvelope struct {
	Data Post `json:"data"`
}

type replyEnvelope struct {
	Data Reply `json:"data"`
}

type upvoteEnvelope struct {
	Data struct {
		Upvotes int `json:"upvotes"`
	} `json:"data"`
}

// CreatePost submits a new thread and returns the backend's created record.
//
// The returned Post carries the server-assigned ID and timestamp; callers
// prepend it to their list only after this call succeeds.
func (service *Service) CreatePost(ctx context.Context, input CreatePostInput) (*Post, error) {
	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return nil, apperr.Unauthorized("Please log in to post.")
	}

	var envelope postEnvelope
	if err := service.client.Post(ctx, "/community/posts", bearer, input, &envelope); err != nil {
		return nil, fmt.Errorf("community: create post: %w", err)
	}

	service.logger.Info("community_post_created",
		slog.String("post_id", envelope.Data.ID),
	)

	return &envelope.Data, nil
}

// CreateReply submits a reply under the given post.
func (service *Service) CreateReply(ctx context.Context, postID string, input CreateReplyInput) (*Reply, error) {
	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return nil, apperr.Unauthorized("Please log in to reply.")
	}

	var envelope replyEnvelope
	path := "/community/posts/" + postID + "/replies"
	if err := service.client.Post(ctx, path, bearer, input, &envelope); err != nil {
		return nil, fmt.Errorf("community: create reply: %w", err)
	}

	service.logger.Info("community_reply_created",
		slog.String("post_id", postID),
		slog.String("reply_id", envelope.Data.ID),
	)

	return &envelope.Data, nil
}

// DeletePost removes a post through the backend's moderation endpoint.
//
// Route-level gating already restricted this to admins; the backend
// enforces the same restriction on its side.
func (service *Service) DeletePost(ctx context.Context, postID string) error {
	bearer := ctxutil.GetBearer(ctx)

	if err := service.client.Delete(ctx, "/community/posts/"+postID, bearer); err != nil {
		return fmt.Errorf("community: delete post: %w", err)
	}

	service.logger.Info("community_post_deleted",
		slog.String("post_id", postID),
	)

	return nil
}

// Upvote records one upvote for the given post and returns the new count.
//
// Anonymous viewers are rejected up front with a login prompt; nothing is
// sent to the backend and no list state changes.
func (service *Service) Upvote(ctx context.Context, postID string) (int, error) {
	bearer := ctxutil.GetBearer(ctx)
	if bearer == "" {
		return 0, apperr.Unauthorized(upvoteLoginMessage)
	}

	var envelope upvoteEnvelope
	path := "/community/posts/" + postID + "/upvote"
	if err := service.client.Post(ctx, path, bearer, nil, &envelope); err != nil {
		return 0, fmt.Errorf("community: upvote: %w", err)
	}

	return envelope.Data.Upvotes, nil
}
