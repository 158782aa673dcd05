package httpapi

import "net/http"

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	post, err := a.posts.Create(r.Context(), req.Title, req.Description, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "post created",
		"post":    post,
	})
}

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "posts retrieved",
		"posts":   posts,
	})
}
