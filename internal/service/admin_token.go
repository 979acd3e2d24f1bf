package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAdminTokenInvalid 管理端令牌无效
var ErrAdminTokenInvalid = errors.New("admin token is invalid")

// AdminClaims 管理端 JWT 声明
// 令牌由统一认证服务签发，角色随令牌下发
type AdminClaims struct {
	AdminID  uint     `json:"admin_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
	IsSuper  bool     `json:"is_super,omitempty"`
	jwt.RegisteredClaims
}

// AdminTokenService 管理端令牌签发与校验
type AdminTokenService struct {
	secret []byte
	issuer string
}

// NewAdminTokenService 创建令牌服务
func NewAdminTokenService(secret, issuer string) *AdminTokenService {
	return &AdminTokenService{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
	}
}

// Configured 是否已配置签名密钥
func (s *AdminTokenService) Configured() bool {
	return s != nil && len(s.secret) > 0
}

// Issue 签发令牌，供本地联调与种子脚本使用
func (s *AdminTokenService) Issue(claims AdminClaims, ttl time.Duration) (string, time.Time, error) {
	if !s.Configured() {
		return "", time.Time{}, ErrAdminTokenInvalid
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   claims.Username,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse 解析并校验令牌
func (s *AdminTokenService) Parse(tokenString string) (*AdminClaims, error) {
	if !s.Configured() {
		return nil, ErrAdminTokenInvalid
	}
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		options = append(options, jwt.WithIssuer(s.issuer))
	}
	parser := jwt.NewParser(options...)
	claims := &AdminClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.AdminID == 0 {
		return nil, ErrAdminTokenInvalid
	}
	return claims, nil
}
