package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"appointment-booking-api/internal/model"
)

var ErrBadToken = errors.New("invalid token")

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

type Claims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

func MakeToken(email string, role model.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.Email == "" || !c.Role.Valid() {
		return nil, ErrBadToken
	}
	return c, nil
}

// Credentials binds the password and token helpers to one signing secret.
type Credentials struct {
	secret string
	ttl    time.Duration
}

func NewCredentials(secret string, ttl time.Duration) *Credentials {
	return &Credentials{secret: secret, ttl: ttl}
}

func (c *Credentials) Hash(pw string) (string, error) { return HashPassword(pw) }

func (c *Credentials) Verify(hash, pw string) bool { return CheckPassword(hash, pw) }

func (c *Credentials) Issue(email string, role model.Role) (string, error) {
	return MakeToken(email, role, c.secret, c.ttl)
}

func (c *Credentials) Parse(raw string) (model.Identity, error) {
	claims, err := ParseToken(raw, c.secret)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{Email: claims.Email, Role: claims.Role}, nil
}
