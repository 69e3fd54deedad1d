// go-utils/random.go

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// codeAlphabet drops I, L, O and U so codes survive being read aloud or
// retyped from a printed certificate.
const codeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func RandomString(length int) string {
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}

// RandomCode returns `length` characters drawn uniformly from codeAlphabet.
func RandomCode(length int) string {
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = codeAlphabet[num.Int64()]
	}
	return string(b)
}

// VerificationCode builds a shareable certificate code such as
// DOC-7K2M-QX9D-4HTB (60 bits of randomness with the default 3x4 layout).
func VerificationCode(groups, groupLen int) string {
	parts := make([]string, 0, groups+1)
	parts = append(parts, VerificationCodePrefix)
	for i := 0; i < groups; i++ {
		parts = append(parts, RandomCode(groupLen))
	}
	return strings.Join(parts, "-")
}

// NormalizeVerificationCode upper-cases user input and trims whitespace so
// lookups are not defeated by copy/paste artifacts.
func NormalizeVerificationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
