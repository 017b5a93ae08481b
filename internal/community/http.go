// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package community

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmlink/gateway/internal/platform/middleware"
	requestutil "github.com/farmlink/gateway/internal/platform/request"
	"github.com/farmlink/gateway/internal/platform/respond"
	"github.com/farmlink/gateway/internal/platform/sec"
	"github.com/farmlink/gateway/internal/platform/validate"
	"github.com/farmlink/gateway/internal/viewstate"
)

// Handler exposes forum mutations over HTTP.
//
// Reads (browsing posts, replies) go through the list endpoints; this
// handler covers the writes and applies the optimistic local prepend to
// the viewer's lists once the backend confirms a create.
type Handler struct {
	service  *Service
	registry *viewstate.Registry
}

// NewHandler constructs the community Handler.
func NewHandler(service *Service, registry *viewstate.Registry) *Handler {
	return &Handler{service: service, registry: registry}
}

// Routes returns the router for /community.
//
// Creates require a decoded session up front. Upvotes are gated inside the
// service instead so the anonymous case can answer with its specific login
// prompt. Moderation is admin-only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireSession)
		authed.Post("/posts", handler.createPost)
		authed.Post("/posts/{postID}/replies", handler.createReply)
	})

	router.Post("/posts/{postID}/upvote", handler.upvote)

	router.With(middleware.RequireRole(sec.RoleAdmin)).
		Delete("/posts/{postID}", handler.deletePost)

	return router
}

// createView pairs a created item with the viewer's updated list state.
type createView struct {
	Item any `json:"item"`
	List any `json:"list"`
}

// createPost creates a thread and prepends it to the viewer's post list.
//
// The prepend happens only after the backend confirmed the create; a
// failed create leaves the list exactly as it was.
func (handler *Handler) createPost(writer http.ResponseWriter, request *http.Request) {
	var input CreatePostInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 200).
		Required(FieldContent, input.Content).
		MaxLen(FieldContent, input.Content, 10000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.CreatePost(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state := handler.prependPost(writer, request, *post)
	respond.Created(writer, createView{Item: post, List: state})
}

// createReply creates a reply and prepends it to that post's reply list.
func (handler *Handler) createReply(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, "postID")

	var input CreateReplyInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldContent, input.Content).
		MaxLen(FieldContent, input.Content, 10000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reply, err := handler.service.CreateReply(request.Context(), postID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state := handler.prependReply(writer, request, postID, *reply)
	respond.Created(writer, createView{Item: reply, List: state})
}

// upvoteView is the upvote response payload.
type upvoteView struct {
	PostID  string `json:"post_id"`
	Upvotes int    `json:"upvotes"`
}

// upvote records an upvote for a post.
//
// Anonymous viewers get a 401 with a login prompt and nothing else
// happens: no backend call, no list mutation.
func (handler *Handler) upvote(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, "postID")

	upvotes, err := handler.service.Upvote(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, upvoteView{PostID: postID, Upvotes: upvotes})
}

// deletePost removes a post on behalf of a moderator.
func (handler *Handler) deletePost(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, "postID")

	if err := handler.service.DeletePost(request.Context(), postID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// prependPost pushes a confirmed post onto the viewer's post list.
func (handler *Handler) prependPost(writer http.ResponseWriter, request *http.Request, post Post) any {
	handle, err := handler.registry.Handle(requestutil.ViewerKey(writer, request), viewstate.ListPosts)
	if err != nil {
		return nil
	}

	controller, ok := viewstate.ControllerFor[Post](handle)
	if !ok {
		return handle.Snapshot()
	}
	return controller.PrependLocal(post)
}

// prependReply pushes a confirmed reply onto the viewer's reply list for
// that post.
func (handler *Handler) prependReply(writer http.ResponseWriter, request *http.Request, postID string, reply Reply) any {
	handle, err := handler.registry.Handle(requestutil.ViewerKey(writer, request), viewstate.ReplyList(postID))
	if err != nil {
		return nil
	}

	controller, ok := viewstate.ControllerFor[Reply](handle)
	if !ok {
		return handle.Snapshot()
	}
	return controller.PrependLocal(reply)
}
