package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	confirmationCodePrefix = "TA-"
	confirmationCodeLength = 10
	// Без 0/O и 1/I, чтобы код можно было продиктовать по телефону.
	confirmationCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CodeIssuer выдаёт коды подтверждения и QR-токены.
type CodeIssuer interface {
	NewConfirmationCode() (string, error)
	NewQRToken() string
}

type randomCodeIssuer struct{}

func NewRandomCodeIssuer() CodeIssuer {
	return randomCodeIssuer{}
}

func (randomCodeIssuer) NewConfirmationCode() (string, error) {
	max := big.NewInt(int64(len(confirmationCodeAlphabet)))
	b := make([]byte, confirmationCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = confirmationCodeAlphabet[n.Int64()]
	}
	return confirmationCodePrefix + string(b), nil
}

func (randomCodeIssuer) NewQRToken() string {
	return uuid.NewString()
}
