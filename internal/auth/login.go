package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// User is one configured dashboard account.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     Role   `yaml:"role"`
}

// LoginHandler issues JWTs for configured users.
type LoginHandler struct {
	users    map[string]User
	secret   []byte
	tokenTTL time.Duration
}

// NewLoginHandler constructs a login handler from the configured accounts.
func NewLoginHandler(users []User, secret []byte, tokenTTL time.Duration) (*LoginHandler, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	byName := make(map[string]User, len(users))
	for _, user := range users {
		if user.Username == "" || user.Password == "" {
			return nil, errors.New("auth: user missing username or password")
		}
		if _, ok := NormalizeRole(string(user.Role)); !ok {
			return nil, errors.New("auth: user has invalid role")
		}
		byName[user.Username] = user
	}
	return &LoginHandler{users: byName, secret: secret, tokenTTL: tokenTTL}, nil
}

// ServeHTTP handles POST /api/v1/auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, ok := h.users[req.Username]
	if !ok || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := IssueToken(user.Username, user.Role, h.secret, h.tokenTTL)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"role":  user.Role,
	})
}
