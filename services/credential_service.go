package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost — фиксированная стоимость хеширования ключей.
// Ключи проверяются на каждый запрос (участники), поэтому cost умеренный.
const BcryptCost = 12

const adminTokenTTL = 2 * time.Hour

// keyWords — словарь для человекочитаемых ключей вида "halcon-meteoro-4821".
// Ключ — одноразово показываемый общий секрет, не криптографический вывод.
var keyWords = []string{
	"aguila", "bosque", "cometa", "delta", "estrella", "faro", "granito",
	"halcon", "islote", "jaguar", "kraken", "lince", "meteoro", "nebulosa",
	"obsidiana", "puma", "quimera", "rubi", "sable", "tornado", "umbral",
	"vortice", "yunque", "zenit", "brasa", "ciclon", "dragon", "eclipse",
	"fenix", "glaciar", "horizonte", "imperio", "laguna", "monarca",
	"nomada", "oceano", "pantera", "relampago", "sombra", "titan",
}

// AdminClaims — проверенные утверждения админ-токена.
type AdminClaims struct {
	TournamentID string
	Role         string
}

// CredentialService генерирует и проверяет ключи доступа и выпускает
// подписанные админ-токены, привязанные к одному турниру.
type CredentialService interface {
	GenerateKey() (string, error)
	HashKey(plain string) (string, error)
	VerifyKey(plain, hash string) bool
	IssueAdminToken(torneoID string) (string, error)
	VerifyAdminToken(tokenString, torneoID string) (*AdminClaims, error)
}

type credentialService struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewCredentialService(jwtSecret string) CredentialService {
	return &credentialService{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *credentialService) GenerateKey() (string, error) {
	pick := func(n int64) (int64, error) {
		v, err := rand.Int(rand.Reader, big.NewInt(n))
		if err != nil {
			return 0, err
		}
		return v.Int64(), nil
	}

	w1, err := pick(int64(len(keyWords)))
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	w2, err := pick(int64(len(keyWords)))
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	num, err := pick(10000)
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	return fmt.Sprintf("%s-%s-%04d", keyWords[w1], keyWords[w2], num), nil
}

func (s *credentialService) HashKey(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hashed), nil
}

func (s *credentialService) VerifyKey(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *credentialService) IssueAdminToken(torneoID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"torneo_id": torneoID,
		"role":      "admin",
		"exp":       now.Add(adminTokenTTL).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAdminToken проверяет подпись, срок действия и привязку к турниру.
// Несовпадение torneo_id в токене с запрошенным ресурсом — отдельная ошибка:
// токен настоящий, но не для этого турнира.
func (s *credentialService) VerifyAdminToken(tokenString, torneoID string) (*AdminClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	role, _ := claims["role"].(string)
	tokenTorneoID, _ := claims["torneo_id"].(string)
	if role != "admin" || tokenTorneoID == "" {
		return nil, ErrTokenInvalid
	}
	if tokenTorneoID != torneoID {
		return nil, ErrTokenWrongTournament
	}

	return &AdminClaims{TournamentID: tokenTorneoID, Role: role}, nil
}
