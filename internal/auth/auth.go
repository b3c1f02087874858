package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal 是通过认证的当前用户
type Principal struct {
	UserID   uint64
	Username string
	IsStaff  bool
}

// CanModify staff可以绕过所有权检查，其他人只能改自己的行
func (p Principal) CanModify(ownerID uint64) bool {
	return p.IsStaff || p.UserID == ownerID
}

// Claims token的Payload，不能将密码放在其中，Payload不加密
type Claims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Username: c.Username, IsStaff: c.IsStaff}
}

// TokenManager 负责签发和校验HS256令牌
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Generate(p Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   p.UserID,
		Username: p.Username,
		IsStaff:  p.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 确保签名方法是对称加密族
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
