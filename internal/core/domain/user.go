package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --- ENTITÉ ---

type User struct {
	ID           string
	Name         string
	Username     string // Toujours stocké en MAJUSCULES (unicité insensible à la casse)
	Email        string // Toujours stocké en minuscules
	ImageURL     string
	PasswordHash string // Jamais sérialisé vers l'extérieur
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// --- FACTORY (CONSTRUCTEUR) ---

// NewUser crée une nouvelle instance valide.
// C'est le SEUL moyen de créer un user proprement (ID, normalisation, validation).
// Le hash du mot de passe est calculé AVANT, par le PasswordHasher : le domaine
// ne voit jamais le mot de passe en clair.
func NewUser(name, email, username, passwordHash, imageURL string) (*User, error) {
	// 1. Validation des invariants (Règles métier bloquantes)
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" ||
		strings.TrimSpace(username) == "" || passwordHash == "" {
		return nil, ErrMissingFields
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(username)) < 3 {
		return nil, ErrInvalidUsername
	}

	// 2. Création avec génération d'ID (l'identité est générée ICI, pas en DB)
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Username:     NormalizeUsername(username),
		Email:        NormalizeEmail(email),
		ImageURL:     strings.TrimSpace(imageURL),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// --- NORMALISATION ---
// Les deux clés d'unicité sont normalisées à l'écriture ET à la recherche,
// pour que "Alice" et "ALICE" désignent le même compte.

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.ToUpper(strings.TrimSpace(username))
}

// --- COMPORTEMENTS (MÉTHODES MÉTIER) ---

// UpdatePassword change le hash et met à jour le timestamp
func (u *User) UpdatePassword(newHash string) {
	u.PasswordHash = newHash
	u.touch()
}

// Sanitized retourne une copie sans les champs sensibles.
// C'est la SEULE représentation qui doit sortir du cœur (cf. middleware auth).
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

// --- VALIDATEURS INTERNES ---

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
