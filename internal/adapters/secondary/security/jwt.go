package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

// UserClaims étend les claims standards JWT avec notre payload {userID, email}.
type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTProvider signe les deux tokens d'une session avec des secrets DISTINCTS :
// un token volé d'un type ne peut jamais passer pour l'autre.
// Access court (15 min), refresh long (7 jours) — le refresh sert uniquement
// à renouveler la paire.
type JWTProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
}

func NewJWTProvider(accessSecret, refreshSecret []byte) (*JWTProvider, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("jwt: both secrets are required")
	}

	return &JWTProvider{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessExpiry:  15 * time.Minute,   // Court
		refreshExpiry: 7 * 24 * time.Hour, // Long
		issuer:        "inkwell-identity",
	}, nil
}

// IssuePair crée la paire Access + Refresh.
// Les deux embarquent le même payload {userID, email}, chacun signé avec
// son secret et sa propre expiration.
func (j *JWTProvider) IssuePair(userID, email string) (string, string, error) {
	access, err := j.sign(userID, email, j.accessSecret, j.accessExpiry, string(ports.AccessToken))
	if err != nil {
		return "", "", err
	}

	refresh, err := j.sign(userID, email, j.refreshSecret, j.refreshExpiry, string(ports.RefreshToken))
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (j *JWTProvider) sign(userID, email string, secret []byte, expiry time.Duration, jtiSuffix string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   userID,
			ID:        fmt.Sprintf("%s-%s", userID, jtiSuffix),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify vérifie signature + expiration avec le secret du kind demandé.
// Vérification binaire : tout échec (signature, malformé, expiré, mauvais
// secret) retourne une erreur, pas de mode dégradé.
func (j *JWTProvider) Verify(tokenString string, kind ports.TokenKind) (*ports.TokenClaims, error) {
	secret := j.accessSecret
	if kind == ports.RefreshToken {
		secret = j.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Sécurité critique : vérifier que l'alg est bien HMAC.
		// Empêche les attaques où l'attaquant force l'algo à "none" ou RS256.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err // Token expiré, malformé ou signature invalide
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return &ports.TokenClaims{UserID: claims.UserID, Email: claims.Email}, nil
}

func (j *JWTProvider) AccessExpiry() time.Duration {
	return j.accessExpiry
}
