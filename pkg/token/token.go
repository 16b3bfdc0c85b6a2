package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// secretKey 是服务器在启动时生成的32字节密钥。
var secretKey []byte

// ClosePayload 定义了关闭选举请求中需要被签名的数据。
// 它在 /election/status 的响应中签发，在 /election/:id/close 的请求中被校验。
// 客户端倒计时到期后只能关闭签名中指定的那一场选举。
type ClosePayload struct {
	ElectionID uint  `json:"e"`
	IssuedAt   int64 `json:"t"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// GenerateCloseSignature 为一个给定的ClosePayload生成HMAC签名。
// 返回签名的Base64编码字符串。
func GenerateCloseSignature(payload ClosePayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化Token payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateCloseSignature 验证一个给定的payload和签名是否匹配。
func ValidateCloseSignature(payload ClosePayload, signatureB64 string) bool {
	// 重新序列化payload，确保与签名时的数据格式完全一致
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)

	actualSignature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	// 时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
