// Package jwt реализует выпуск и проверку JWT токенов FoodTrack.
//
// В токене хранятся UID пользователя (subject), его роль и отображаемое имя.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateToken(userUID, role, name string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены секретным ключом (HS256) и задаёт им время жизни.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl. Нулевой ttl заменяется на сутки.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
