package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, exp, err := IssueSessionToken("secret", "sess_abc", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 || time.Until(exp) > time.Minute {
		t.Errorf("unexpected expiry %s", exp)
	}

	id, err := ParseSessionToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "sess_abc" {
		t.Errorf("expected sess_abc, got %s", id)
	}
}

func TestParseSessionTokenRejects(t *testing.T) {
	good, _, _ := IssueSessionToken("secret", "sess_abc", time.Minute)
	expired, _, _ := IssueSessionToken("secret", "sess_abc", -time.Minute)
	noSession, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"session_id": "sess_abc",
		"exp":        time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", good},
		{"expired", "secret", expired},
		{"missing session", "secret", noSession},
		{"wrong algorithm", "secret", wrongAlg},
		{"garbage", "secret", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSessionToken(tt.secret, tt.token); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSessionTokenFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{"query", "/ws?token=abc", "", "abc"},
		{"bearer", "/ws", "Bearer xyz", "xyz"},
		{"query wins", "/ws?token=abc", "Bearer xyz", "abc"},
		{"none", "/ws", "Basic foo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			if got := sessionTokenFrom(c); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSessionTokenExpiryMatchesClaim(t *testing.T) {
	token, exp, err := IssueSessionToken("secret", "sess_abc", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, ok := claims["exp"].(float64)
	if !ok || int64(got) != exp.Unix() {
		t.Errorf("exp claim = %v, want %d", claims["exp"], exp.Unix())
	}
}
