package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 将重复的代码（HTTP请求、JSON解析、注册登录流程）封装成可复用的函数

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// RequireServer 检查服务是否在运行,未启动时跳过测试
func RequireServer(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "localhost:8080", 2*time.Second)
	if err != nil {
		t.Skip("服务未启动,跳过集成测试(先运行 go run ./cmd/api)")
	}
	conn.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Description string `json:"description"`
}

// BasketMutationData 购物车变更响应数据
type BasketMutationData struct {
	BookID   uint `json:"book_id"`
	Quantity int  `json:"quantity"`
	Removed  bool `json:"removed"`
}

// BasketLine 购物车行
type BasketLine struct {
	BookID      uint   `json:"book_id"`
	Title       string `json:"title"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   int64  `json:"line_total"`
	Stock       int    `json:"stock"`
	StockEnough bool   `json:"stock_enough"`
	BookRemoved bool   `json:"book_removed"`
}

// BasketData 购物车查询响应数据
type BasketData struct {
	Lines     []BasketLine `json:"lines"`
	Total     int64        `json:"total"`
	TotalYuan string       `json:"total_yuan"`
}

// ConfirmData 确认购买响应数据
type ConfirmData struct {
	Items []struct {
		BookID    uint   `json:"book_id"`
		Title     string `json:"title"`
		Quantity  int    `json:"quantity"`
		UnitPrice int64  `json:"unit_price"`
	} `json:"items"`
	Total       int64  `json:"total"`
	TotalYuan   string `json:"total_yuan"`
	ConfirmedAt string `json:"confirmed_at"`
}

// DoJSON 发送带JSON body的请求并解析统一响应
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, http.MethodPost, url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, http.MethodGet, url, nil, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, http.MethodDelete, url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用时间戳确保邮箱唯一性,避免测试重复运行时冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的测试ISBN
// ISBN-13格式：978 + 10位数字,取时间戳后10位
func GenerateTestISBN() string {
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("978%010d", timestamp%10000000000)
}

// RegisterTestUser 注册测试用户并返回Token
// 封装注册+登录的完整流程
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// PublishTestBook 上架测试图书并返回图书ID
func PublishTestBook(t *testing.T, token string, title string, price int64, stock int) uint {
	isbn := GenerateTestISBN()
	bookReq := map[string]interface{}{
		"title":       title,
		"author":      "测试作者",
		"isbn":        isbn,
		"publisher":   "测试出版社",
		"price":       price,
		"stock":       stock,
		"description": "集成测试用图书",
	}

	bookResp := PostJSON(t, BaseURL+"/books", bookReq, token)
	require.Equal(t, 0, bookResp.Code, "图书上架失败: %s", bookResp.Message)

	var bookData BookData
	err := json.Unmarshal(bookResp.Data, &bookData)
	require.NoError(t, err, "解析图书响应失败")

	return bookData.ID
}

// AddToBasket 向购物车增加数量
func AddToBasket(t *testing.T, token string, bookID uint, delta int) *BasketMutationData {
	resp := PostJSON(t, BaseURL+"/basket/items", map[string]interface{}{
		"book_id": bookID,
		"delta":   delta,
	}, token)
	require.Equal(t, 0, resp.Code, "购物车变更失败: %s", resp.Message)

	var data BasketMutationData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析购物车响应失败")

	return &data
}

// GetBasket 查询购物车
func GetBasket(t *testing.T, token string) *BasketData {
	resp := GetJSON(t, BaseURL+"/basket", token)
	require.Equal(t, 0, resp.Code, "查询购物车失败: %s", resp.Message)

	var data BasketData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析购物车响应失败")

	return &data
}
