// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package viewstate

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/farmlink/gateway/internal/platform/request"
	"github.com/farmlink/gateway/internal/platform/respond"
	"github.com/farmlink/gateway/internal/platform/validate"
)

// Handler exposes the viewer's lists over HTTP.
//
// Lists are addressed by name in the path; the viewer is identified by the
// device cookie. All list state lives server-side, so these endpoints are
// the web client's only way to drive pagination.
type Handler struct {
	registry *Registry
}

// NewHandler constructs the viewstate Handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Routes returns the router for /lists.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{list}", handler.snapshot)
	router.Post("/{list}/reset", handler.reset)
	router.Post("/{list}/more", handler.loadMore)
	router.Post("/{list}/refresh", handler.refresh)
	router.Post("/{list}/search", handler.search)

	return router
}

// filterInput carries raw, un-normalized filter values from the client.
type filterInput struct {
	Filters map[string]string `json:"filters"`
}

// snapshot returns the list's current state without fetching.
func (handler *Handler) snapshot(writer http.ResponseWriter, request *http.Request) {
	handle, err := handler.registry.Handle(requestutil.ViewerKey(writer, request), requestutil.Param(request, "list"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handle.Snapshot())
}

// reset applies a new filter set and loads page 1.
func (handler *Handler) reset(writer http.ResponseWriter, request *http.Request) {
	name := requestutil.Param(request, "list")

	var input filterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	filters, err := handler.registry.Normalize(name, input.Filters)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handle, err := handler.registry.Handle(requestutil.ViewerKey(writer, request), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handle.Reset(request.Context(), filters))
}

// loadMore appends the next page to the list.
func (handler *Handler) loadMore(writer http.ResponseWriter, request *http.Request) {
	handle, err := handler.registry.Handle(requestutil.ViewerKey(writer, request), requestutil.Param(request, "list"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handle.LoadMore(request.Context()))
}

// refresh re-fetches page 1 under the current filters.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	handle, err := handler.registry.Handle(requestutil.ViewerKey(writer, request), requestutil.Param(request, "list"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handle.Refresh(request.Context()))
}

// search feeds raw filter input into the list's debouncer.
//
// The response is the pre-search snapshot with 202 status: the actual
// fetch happens later, if and when the input settles. The client polls the
// snapshot endpoint (or the next interaction returns fresh state).
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	name := requestutil.Param(request, "list")

	var input filterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Filters == nil {
		respond.Error(writer, request, validate.RequiredError("filters", "Filters are required"))
		return
	}

	viewerKey := requestutil.ViewerKey(writer, request)
	if err := handler.registry.Search(viewerKey, name, input.Filters); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handle, err := handler.registry.Handle(viewerKey, name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusAccepted, respond.SuccessEnvelope{Data: handle.Snapshot()})
}
