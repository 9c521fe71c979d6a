package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Config is the single operator account the service accepts.
type Config struct {
	Username string
	Password string
	// PasswordHash takes precedence over Password when set.
	PasswordHash string
	Token        string
	Role         string
}

type User struct {
	Username string `json:"usuario"`
	Role     string `json:"role"`
}

// Authenticator checks fixed credentials and hands out a fixed bearer token.
type Authenticator struct {
	username     []byte
	passwordHash []byte
	token        []byte
	role         string
}

func NewAuthenticator(cfg Config) (*Authenticator, error) {
	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		h, err := HashPassword(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = []byte(h)
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	return &Authenticator{
		username:     []byte(cfg.Username),
		passwordHash: hash,
		token:        []byte(cfg.Token),
		role:         cfg.Role,
	}, nil
}

// Login returns the bearer token and user for a matching username and password.
func (a *Authenticator) Login(username, password string) (string, User, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), a.username) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", User{}, ErrInvalidCredentials
	}
	return string(a.token), User{Username: username, Role: a.role}, nil
}

// Verify checks an Authorization header value of the form "Bearer <token>".
func (a *Authenticator) Verify(header string) (string, bool) {
	token, ok := bearerToken(header)
	if !ok {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(token), a.token) != 1 {
		return "", false
	}
	return a.role, true
}

// RequireToken aborts with 401 unless the request carries the bearer token.
func (a *Authenticator) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := a.Verify(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Set("role", role)
		c.Next()
	}
}

// HashPassword creates a bcrypt hash suitable for AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
