package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 24 * time.Hour

// Service owns password hashing and stateless bearer-token issuance.
// Tokens carry the username as subject; VerifyToken resolves it back to
// the stored user.
type Service struct {
    db     *gorm.DB
    secret []byte
}

func NewService(db *gorm.DB, secret []byte) *Service {
    return &Service{db: db, secret: secret}
}

func (s *Service) HashPassword(password string) (string, error) {
    hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
    if err != nil {
        return "", err
    }
    return string(hash), nil
}

func (s *Service) CheckPassword(hash, password string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a bearer token whose subject is the username.
func (s *Service) IssueToken(username string) (string, error) {
    claims := &jwt.RegisteredClaims{
        Subject:   username,
        ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return token.SignedString(s.secret)
}

// VerifyToken validates a bearer token and resolves its subject to a user.
func (s *Service) VerifyToken(tokenString string) (*models.User, error) {
    claims := &jwt.RegisteredClaims{}
    token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
        if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
        }
        return s.secret, nil
    })
    if err != nil || !token.Valid {
        return nil, utils.ErrUnauthorized
    }

    var user models.User
    if err := s.db.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, utils.ErrUnauthorized
        }
        return nil, err
    }
    return &user, nil
}

// Middleware guards a handler with bearer-token auth and stores the
// resolved user id in the request context.
func (s *Service) Middleware(next http.HandlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        authHeader := r.Header.Get("Authorization")
        if authHeader == "" {
            http.Error(w, "Authorization header required", http.StatusUnauthorized)
            return
        }

        tokenString := strings.TrimPrefix(authHeader, "Bearer ")

        user, err := s.VerifyToken(tokenString)
        if err != nil {
            http.Error(w, "Invalid token", http.StatusUnauthorized)
            return
        }

        next.ServeHTTP(w, r.WithContext(utils.WithUserID(r.Context(), user.ID)))
    }
}
