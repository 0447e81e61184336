package user

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"github.com/snapgram/snapgram-server/service/auth"
	"github.com/snapgram/snapgram-server/service/social"
	"gorm.io/gorm"
)

type Handler struct {
    db    *gorm.DB
    auth  *auth.Service
    graph *social.Manager
}

func NewHandler(db *gorm.DB, authSvc *auth.Service) *Handler {
    return &Handler{
        db:    db,
        auth:  authSvc,
        graph: social.NewManager(db),
    }
}

// RegisterRoutes sets up all user-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/auth/register", h.HandleRegister).Methods("POST")
    router.HandleFunc("/auth/login", h.handleLogin).Methods("POST")
    router.HandleFunc("/users/me", h.auth.Middleware(h.GetProfile)).Methods("GET")
    router.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
    router.HandleFunc("/users/{id}/follow", h.auth.Middleware(h.FollowUser)).Methods("POST")
    router.HandleFunc("/users/{id}/unfollow", h.auth.Middleware(h.UnfollowUser)).Methods("POST")
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
    var registerRequest struct {
        Username string `json:"username"`
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
        http.Error(w, "Invalid JSON input", http.StatusBadRequest)
        return
    }
    if registerRequest.Username == "" || registerRequest.Email == "" || registerRequest.Password == "" {
        http.Error(w, "Missing required fields", http.StatusBadRequest)
        return
    }

    passwordHash, err := h.auth.HashPassword(registerRequest.Password)
    if err != nil {
        http.Error(w, "Error hashing password", http.StatusInternalServerError)
        return
    }

    user := models.User{
        Username:     registerRequest.Username,
        Email:        registerRequest.Email,
        PasswordHash: passwordHash,
    }

    // The unique indexes on username and email decide duplicates; no
    // check-then-insert.
    if err := h.db.Create(&user).Error; err != nil {
        if utils.IsDuplicateKey(err) {
            http.Error(w, "username or email already taken", http.StatusBadRequest)
            return
        }
        http.Error(w, "Error registering user", http.StatusInternalServerError)
        return
    }

    token, err := h.auth.IssueToken(user.Username)
    if err != nil {
        http.Error(w, "Error generating access token", http.StatusInternalServerError)
        return
    }

    go func() {
        if err := sendWelcomeEmail(user.Email, user.Username); err != nil {
            log.Printf("Error sending welcome email: %v", err)
        }
    }()

    writeJSON(w, map[string]string{
        "access_token": token,
        "token_type":   "bearer",
    })
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
    var loginRequest struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    var user models.User
    result := h.db.Where("email = ?", loginRequest.Email).First(&user)
    if result.Error != nil {
        http.Error(w, "Invalid credentials", http.StatusUnauthorized)
        return
    }

    if !h.auth.CheckPassword(user.PasswordHash, loginRequest.Password) {
        http.Error(w, "Invalid credentials", http.StatusUnauthorized)
        return
    }

    token, err := h.auth.IssueToken(user.Username)
    if err != nil {
        http.Error(w, "Error generating access token", http.StatusInternalServerError)
        return
    }

    writeJSON(w, map[string]string{
        "access_token": token,
        "token_type":   "bearer",
    })
}

// GetProfile returns the authenticated user with follower/following counts.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var user models.User
    if err := h.db.First(&user, userID).Error; err != nil {
        http.Error(w, "User not found", http.StatusNotFound)
        return
    }

    followers, following, err := h.graph.Counts(user.ID)
    if err != nil {
        http.Error(w, "Error retrieving counts", http.StatusInternalServerError)
        return
    }

    writeJSON(w, map[string]interface{}{
        "id":              user.ID,
        "username":        user.Username,
        "email":           user.Email,
        "follower_count":  followers,
        "following_count": following,
    })
}

// GetUser returns a public profile with follower/following counts.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
    targetID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    var user models.User
    if err := h.db.First(&user, targetID).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            http.Error(w, "User not found", http.StatusNotFound)
            return
        }
        http.Error(w, "Error retrieving user", http.StatusInternalServerError)
        return
    }

    followers, following, err := h.graph.Counts(user.ID)
    if err != nil {
        http.Error(w, "Error retrieving counts", http.StatusInternalServerError)
        return
    }

    writeJSON(w, map[string]interface{}{
        "id":              user.ID,
        "username":        user.Username,
        "created_at":      user.CreatedAt,
        "follower_count":  followers,
        "following_count": following,
    })
}

// FollowUser makes the authenticated user follow the target user.
func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    targetID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    status, err := h.graph.Follow(userID, targetID)
    if err != nil {
        if utils.IsValidationError(err) {
            http.Error(w, err.Error(), http.StatusBadRequest)
            return
        }
        http.Error(w, "Error following user", http.StatusInternalServerError)
        return
    }

    writeJSON(w, map[string]string{"detail": status})
}

// UnfollowUser makes the authenticated user unfollow the target user.
func (h *Handler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    targetID, ok := parseIDParam(w, r)
    if !ok {
        return
    }

    status, err := h.graph.Unfollow(userID, targetID)
    if err != nil {
        http.Error(w, "Error unfollowing user", http.StatusInternalServerError)
        return
    }

    writeJSON(w, map[string]string{"detail": status})
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
    vars := mux.Vars(r)
    id, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid user ID", http.StatusBadRequest)
        return 0, false
    }
    return uint(id), true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(v)
}
