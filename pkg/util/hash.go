package util

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// EncodeSHA1 对字节内容进行SHA1编码
// 返回值: SHA1编码后的40位十六进制字符串
func EncodeSHA1(content []byte) string {
	h := sha1.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// FieldChecksum computes the duplicate-detection checksum of a field:
// the first 8 hex digits of the SHA1 digest, as a decimal integer.
// FieldChecksum 计算字段的查重校验和：SHA1 摘要前 8 位十六进制转十进制整数
func FieldChecksum(text string) int64 {
	sum := EncodeSHA1([]byte(text))
	v, _ := strconv.ParseInt(sum[:8], 16, 64)
	return v
}
