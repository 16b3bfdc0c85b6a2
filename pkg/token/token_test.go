package token

import (
	"testing"
	"time"
)

func TestCloseSignatureRoundTrip(t *testing.T) {
	GenerateSecretKey()

	payload := ClosePayload{ElectionID: 7, IssuedAt: time.Now().Unix()}
	signature, err := GenerateCloseSignature(payload)
	if err != nil {
		t.Fatalf("GenerateCloseSignature失败: %v", err)
	}

	if !ValidateCloseSignature(payload, signature) {
		t.Error("合法签名应当通过校验")
	}

	// 换一个选举ID，签名必须失效
	tampered := payload
	tampered.ElectionID = 8
	if ValidateCloseSignature(tampered, signature) {
		t.Error("篡改后的payload不应通过校验")
	}

	if ValidateCloseSignature(payload, "not-a-signature") {
		t.Error("伪造的签名不应通过校验")
	}
}

func TestSecretKeyRotationInvalidatesOldSignatures(t *testing.T) {
	GenerateSecretKey()
	payload := ClosePayload{ElectionID: 1, IssuedAt: time.Now().Unix()}
	signature, err := GenerateCloseSignature(payload)
	if err != nil {
		t.Fatalf("GenerateCloseSignature失败: %v", err)
	}

	// 重启（重新生成密钥）后，旧签名全部失效
	GenerateSecretKey()
	if ValidateCloseSignature(payload, signature) {
		t.Error("密钥轮换后旧签名不应通过校验")
	}
}
