// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package community serves the farmer forum: posts, replies, and upvotes.

Browsing is anonymous; contributing requires a session. Created content is
prepended to the viewer's list locally instead of refetching the page, an
explicit optimistic-update policy that only ever applies after the backend
confirmed the create.
*/
package community

import (
	"github.com/farmlink/gateway/internal/platform/backend"
	"github.com/farmlink/gateway/pkg/pagelist"
	"github.com/farmlink/gateway/pkg/query"
	"github.com/farmlink/gateway/pkg/searchterm"
)

// # Domain Entities

// Post is one forum thread starter.
type Post struct {
	ID         string   `json:"id"`
	AuthorID   string   `json:"author_id"`
	AuthorName string   `json:"author_name"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	Upvotes    int      `json:"upvotes"`
	ReplyCount int      `json:"reply_count"`
	CreatedAt  string   `json:"created_at"`
}

// Reply is one answer inside a thread.
type Reply struct {
	ID         string `json:"id"`
	PostID     string `json:"post_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// # Field Identifiers

const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldTags    = "tags"
)

// # Filter Keys

const (
	FilterQuery = "q"
	FilterTag   = "tag"
)

// Fixed page sizes for the forum lists.
const (
	PostPageSize  = 10
	ReplyPageSize = 20
)

// NewPostFetcher binds the backend's /community/posts endpoint into a page fetcher.
func NewPostFetcher(client *backend.Client) pagelist.FetchFunc[Post] {
	return backend.FetchList[Post](client, "/community/posts")
}

// NewReplyFetcher binds one post's reply list into a page fetcher.
func NewReplyFetcher(client *backend.Client, postID string) pagelist.FetchFunc[Reply] {
	return backend.FetchList[Reply](client, "/community/posts/"+postID+"/replies")
}

// NormalizeFilters canonicalizes raw forum filters.
func NormalizeFilters(raw map[string]string) map[string]string {
	filters := map[string]string{}

	if q := searchterm.Normalize(raw[FilterQuery]); q != "" {
		filters[FilterQuery] = q
	}
	if tags := query.CanonicalCSV(raw[FilterTag]); tags != "" {
		filters[FilterTag] = tags
	}

	return filters
}
