package media

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"github.com/snapgram/snapgram-server/service/auth"
)

// Handler serves post images: authenticated uploads in, public reads out.
type Handler struct {
    auth *auth.Service
}

func NewHandler(authSvc *auth.Service) *Handler {
    return &Handler{auth: authSvc}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/images", h.auth.Middleware(h.UploadImage)).Methods("POST")
    router.HandleFunc("/images/{filename}", h.ServeImage).Methods("GET")
}

// UploadImage stores a multipart image and returns the URL to reference in
// a post's image_url.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
    if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
        http.Error(w, "Error parsing form", http.StatusBadRequest)
        return
    }

    file, header, err := r.FormFile("image")
    if err != nil {
        http.Error(w, "image file is required", http.StatusBadRequest)
        return
    }
    defer file.Close()

    imageURL, err := utils.SaveImage(file, header)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{"image_url": imageURL})
}

// ServeImage streams a stored image back to the client.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    filename := vars["filename"]

    if containsDotDot(filename) {
        http.Error(w, "Invalid path", http.StatusBadRequest)
        return
    }

    imagePath := filepath.Join(utils.ImagePath, filepath.Clean(filename))

    if _, err := os.Stat(imagePath); os.IsNotExist(err) {
        http.Error(w, "Image not found", http.StatusNotFound)
        return
    }

    w.Header().Set("Cache-Control", "public, max-age=3600")
    w.Header().Set("Content-Type", getContentType(imagePath))

    http.ServeFile(w, r, imagePath)
}

func containsDotDot(v string) bool {
    if !filepath.IsAbs(v) {
        v = filepath.Clean(filepath.Join("/", v))
    }
    return filepath.Clean(v) != v
}

func getContentType(filename string) string {
    switch filepath.Ext(filename) {
    case ".jpg", ".jpeg":
        return "image/jpeg"
    case ".png":
        return "image/png"
    case ".gif":
        return "image/gif"
    case ".webp":
        return "image/webp"
    default:
        return "application/octet-stream"
    }
}
