package feed

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"github.com/snapgram/snapgram-server/service/auth"
	"github.com/snapgram/snapgram-server/service/social"
	"gorm.io/gorm"
)

type Handler struct {
    db      *gorm.DB
    auth    *auth.Service
    builder *Builder
    agg     *Aggregator
}

func NewHandler(db *gorm.DB, authSvc *auth.Service) *Handler {
    agg := NewAggregator(db)
    graph := social.NewManager(db)
    return &Handler{
        db:      db,
        auth:    authSvc,
        builder: NewBuilder(db, graph, agg),
        agg:     agg,
    }
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
    // Post routes
    router.HandleFunc("/posts", h.auth.Middleware(h.CreatePost)).Methods("POST")
    router.HandleFunc("/posts", h.ListPosts).Methods("GET")
    router.HandleFunc("/posts/{id}", h.auth.Middleware(h.GetPost)).Methods("GET")

    // Like routes
    router.HandleFunc("/posts/{id}/like", h.auth.Middleware(h.LikePost)).Methods("POST")
    router.HandleFunc("/posts/{id}/unlike", h.auth.Middleware(h.UnlikePost)).Methods("POST")

    // Comment routes
    router.HandleFunc("/posts/{id}/comments", h.auth.Middleware(h.AddComment)).Methods("POST")
    router.HandleFunc("/posts/{id}/comments", h.GetComments).Methods("GET")

    // Personalized feed
    router.HandleFunc("/feed", h.auth.Middleware(h.GetFeed)).Methods("GET")
}

// CreatePost creates a new post for the authenticated user.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var postRequest struct {
        ImageURL string `json:"image_url"`
        Caption  string `json:"caption"`
    }
    if err := json.NewDecoder(r.Body).Decode(&postRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }
    if postRequest.ImageURL == "" {
        http.Error(w, "image_url is required", http.StatusBadRequest)
        return
    }

    post := models.Post{
        AuthorID: userID,
        ImageURL: postRequest.ImageURL,
        Caption:  postRequest.Caption,
    }
    if err := h.db.Create(&post).Error; err != nil {
        // Clean up an image we stored ourselves; external URLs stay put.
        if strings.HasPrefix(post.ImageURL, "/api/images/") {
            utils.DeleteImage(post.ImageURL)
        }
        http.Error(w, "Error creating post", http.StatusInternalServerError)
        return
    }

    writeJSON(w, PostView{
        ID:        post.ID,
        AuthorID:  post.AuthorID,
        ImageURL:  post.ImageURL,
        Caption:   post.Caption,
        CreatedAt: post.CreatedAt,
    })
}

// GetPost retrieves a single post with its engagement counts.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
    postID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    view, err := h.builder.GetPost(postID)
    if err != nil {
        writeServiceError(w, err)
        return
    }

    writeJSON(w, view)
}

// ListPosts retrieves the global feed with pagination.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
    page, limit := pagingParams(r)

    views, err := h.builder.ListPosts(page, limit)
    if err != nil {
        http.Error(w, "Error retrieving posts", http.StatusInternalServerError)
        return
    }

    writeJSON(w, views)
}

// GetFeed retrieves the authenticated user's personalized feed.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    page, limit := pagingParams(r)

    views, err := h.builder.BuildFeed(userID, page, limit)
    if err != nil {
        http.Error(w, "Error building feed", http.StatusInternalServerError)
        return
    }

    writeJSON(w, views)
}

// LikePost handles liking a post.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    postID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    status, err := h.agg.Like(userID, postID)
    if err != nil {
        writeServiceError(w, err)
        return
    }

    writeJSON(w, map[string]string{"detail": status})
}

// UnlikePost removes a like from a post.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    postID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    status, err := h.agg.Unlike(userID, postID)
    if err != nil {
        writeServiceError(w, err)
        return
    }

    writeJSON(w, map[string]string{"detail": status})
}

// AddComment adds a comment to a post.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    postID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    var commentRequest struct {
        Content string `json:"content"`
    }
    if err := json.NewDecoder(r.Body).Decode(&commentRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    comment, err := h.agg.AddComment(userID, postID, commentRequest.Content)
    if err != nil {
        writeServiceError(w, err)
        return
    }

    writeJSON(w, comment)
}

// GetComments retrieves a post's comments in chronological order.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
    postID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    comments, err := h.agg.ListComments(postID)
    if err != nil {
        http.Error(w, "Error retrieving comments", http.StatusInternalServerError)
        return
    }

    writeJSON(w, comments)
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
    vars := mux.Vars(r)
    id, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid post ID", http.StatusBadRequest)
        return 0, false
    }
    return uint(id), true
}

func pagingParams(r *http.Request) (page, limit int) {
    page, _ = strconv.Atoi(r.URL.Query().Get("page"))
    limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
    return page, limit
}

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
    switch {
    case utils.IsValidationError(err):
        http.Error(w, err.Error(), http.StatusBadRequest)
    case errors.Is(err, utils.ErrNotFound):
        http.Error(w, "Post not found", http.StatusNotFound)
    default:
        http.Error(w, "Internal server error", http.StatusInternalServerError)
    }
}
