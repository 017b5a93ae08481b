// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/farmlink/gateway/internal/platform/request"
	"github.com/farmlink/gateway/internal/platform/respond"
	"github.com/farmlink/gateway/internal/platform/validate"
)

// Handler exposes route evaluation to the web client's router.
type Handler struct{}

// NewHandler constructs the guard Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns the router for /route.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.evaluate)
	return router
}

// evaluate handles GET /route?path=/some/page.
//
// The token, when present, rides in the Authorization header like every
// other call; an absent or unreadable one evaluates as anonymous.
func (handler *Handler) evaluate(writer http.ResponseWriter, request *http.Request) {
	path := request.URL.Query().Get("path")
	if path == "" {
		respond.Error(writer, request, validate.RequiredError("path", "This field is required"))
		return
	}

	decision := Evaluate(path, requestutil.BearerToken(request))
	respond.OK(writer, decision)
}
