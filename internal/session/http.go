// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmlink/gateway/internal/platform/backend"
	requestutil "github.com/farmlink/gateway/internal/platform/request"
	"github.com/farmlink/gateway/internal/platform/respond"
	"github.com/farmlink/gateway/internal/platform/validate"
)

// Handler exposes the session lifecycle over HTTP.
type Handler struct {
	manager  *Manager
	client   *backend.Client
	onLogout func(viewerKey string)
}

// NewHandler constructs the session Handler.
//
// onLogout, when non-nil, runs after a logout settles; the composition
// root uses it to drop the viewer's server-held list state.
func NewHandler(manager *Manager, client *backend.Client, onLogout func(viewerKey string)) *Handler {
	return &Handler{manager: manager, client: client, onLogout: onLogout}
}

// Routes returns the router for /auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/session", handler.session)
	router.Patch("/profile", handler.updateProfile)

	return router
}

// loginInput is the credential payload forwarded to the backend.
type loginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// loginEnvelope mirrors the backend's login response.
type loginEnvelope struct {
	Data struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	} `json:"data"`
}

// sessionView is what the web client sees of a session.
type sessionView struct {
	User            *User  `json:"user"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
	Loading         bool   `json:"loading"`
}

// login proxies credentials to the backend and installs the session.
//
// The gateway never inspects the password; it travels straight through to
// the backend and only the resulting user+token pair is kept.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("login", input.Login).Required("password", input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var envelope loginEnvelope
	if err := handler.client.Post(request.Context(), "/auth/login", "", input, &envelope); err != nil {
		respond.Error(writer, request, err)
		return
	}

	store := handler.manager.Get(request.Context(), requestutil.ViewerKey(writer, request))
	snapshot := store.SetAuth(request.Context(), &envelope.Data.User, envelope.Data.Token)

	respond.OK(writer, sessionView{
		User:            snapshot.User,
		Token:           snapshot.Token,
		IsAuthenticated: snapshot.IsAuthenticated,
	})
}

// logout clears the viewer's session.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	viewerKey := requestutil.ViewerKey(writer, request)
	store := handler.manager.Get(request.Context(), viewerKey)
	store.Logout(request.Context())

	if handler.onLogout != nil {
		handler.onLogout(viewerKey)
	}

	respond.NoContent(writer)
}

// session returns the settled session state, rehydrating if needed.
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	store := handler.manager.Get(request.Context(), requestutil.ViewerKey(writer, request))
	snapshot := store.Snapshot()

	respond.OK(writer, sessionView{
		User:            snapshot.User,
		Token:           snapshot.Token,
		IsAuthenticated: snapshot.IsAuthenticated,
		Loading:         snapshot.Loading,
	})
}

// updateProfile forwards a partial profile update to the backend and, on
// success, merges it into the in-memory session.
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	store := handler.manager.Get(request.Context(), requestutil.ViewerKey(writer, request))
	snapshot := store.Snapshot()
	if !snapshot.IsAuthenticated {
		respond.Error(writer, request, validate.RequiredError("session", "You must be logged in to update your profile"))
		return
	}

	var patch UserPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if patch.AvatarURL != nil && *patch.AvatarURL != "" {
		validator := &validate.Validator{}
		validator.URL("avatar_url", *patch.AvatarURL)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	if err := handler.client.Put(request.Context(), "/auth/me", snapshot.Token, patch, nil); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated := store.UpdateUser(patch)
	respond.OK(writer, sessionView{
		User:            updated.User,
		IsAuthenticated: updated.IsAuthenticated,
	})
}
