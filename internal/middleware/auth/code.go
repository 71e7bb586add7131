package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CodeLength is the number of digits in a confirmation code.
const CodeLength = 6

var codeMax = big.NewInt(1_000_000)

// GenerateCode returns a uniformly random, zero-padded 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// HashCode binds code to the account email and hashes it with bcrypt, so a
// stored hash stops verifying as soon as the email changes.
func HashCode(code, email string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(codeMaterial(code, email)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks code against a hash produced by HashCode for the same email.
func VerifyCode(hashedCode, code, email string) bool {
	if hashedCode == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(codeMaterial(code, email))) == nil
}

// codeMaterial is pre-hashed so long emails stay under bcrypt's 72-byte input limit.
func codeMaterial(code, email string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code) + ":" + strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}
