package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	appuser "github.com/xiebiao/libshop/internal/application/user"
	"github.com/xiebiao/libshop/internal/domain/user"
	persistredis "github.com/xiebiao/libshop/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
	"github.com/xiebiao/libshop/pkg/jwt"
)

// fakeUserService 固定账号的内存版用户服务
type fakeUserService struct {
	email    string
	password string
}

func (f *fakeUserService) Register(_ context.Context, email, _, nickname string) (*user.User, error) {
	return &user.User{ID: 1, Email: email, Nickname: nickname}, nil
}

func (f *fakeUserService) Login(_ context.Context, email, password string) (*user.User, error) {
	if email != f.email {
		return nil, apperrors.ErrUserNotFound
	}
	if password != f.password {
		return nil, apperrors.ErrInvalidPassword
	}
	return &user.User{ID: 7, Email: email, Nickname: "测试用户"}, nil
}

func (f *fakeUserService) ValidatePassword(_, _ string) error { return nil }

// newLoginTestHandler 组装登录链路:假用户服务 + 真JWT
// Redis指向不存在的地址:会话保存失败只记日志,不影响登录
func newLoginTestHandler() *UserHandler {
	jwtManager := jwt.NewManager("test-secret", 2*time.Hour, 7*24*time.Hour)
	sessionStore := persistredis.NewSessionStore(goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	}))
	svc := &fakeUserService{email: "user@test.com", password: "Pass1234"}

	registerUseCase := appuser.NewRegisterUseCase(svc)
	loginUseCase := appuser.NewLoginUseCase(svc, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	return NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
}

func postLogin(t *testing.T, h *UserHandler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", h.Login)

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestLogin_ReturnsTokenPair 登录成功返回Token对和用户信息
func TestLogin_ReturnsTokenPair(t *testing.T) {
	h := newLoginTestHandler()

	w := postLogin(t, h, map[string]string{"email": "user@test.com", "password": "Pass1234"})
	if w.Code != http.StatusOK {
		t.Fatalf("期望HTTP 200，实际%d", w.Code)
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			User struct {
				ID       uint   `json:"id"`
				Email    string `json:"email"`
				Nickname string `json:"nickname"`
			} `json:"user"`
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			ExpiresIn    int64  `json:"expires_in"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != 0 {
		t.Fatalf("期望业务码0，实际%d: %s", resp.Code, w.Body.String())
	}
	if resp.Data.AccessToken == "" || resp.Data.RefreshToken == "" {
		t.Error("期望返回Token对")
	}
	if resp.Data.ExpiresIn != int64((2 * time.Hour).Seconds()) {
		t.Errorf("期望有效期7200秒，实际%d", resp.Data.ExpiresIn)
	}
	if resp.Data.User.ID != 7 || resp.Data.User.Email != "user@test.com" {
		t.Errorf("用户信息不完整: %+v", resp.Data.User)
	}
}

// TestLogin_WrongPassword 密码错误返回业务错误码
func TestLogin_WrongPassword(t *testing.T) {
	h := newLoginTestHandler()

	w := postLogin(t, h, map[string]string{"email": "user@test.com", "password": "wrong123"})

	var resp struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code != apperrors.ErrCodeInvalidPassword {
		t.Errorf("期望错误码%d，实际%d", apperrors.ErrCodeInvalidPassword, resp.Code)
	}
}

// TestLogin_InvalidBody 参数不合法直接拒绝
func TestLogin_InvalidBody(t *testing.T) {
	h := newLoginTestHandler()

	w := postLogin(t, h, map[string]string{"email": "不是邮箱", "password": "Pass1234"})

	var resp struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Code == 0 {
		t.Error("非法邮箱格式应返回错误")
	}
}
