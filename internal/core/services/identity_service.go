package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

// IdentityService implémente ports.IdentityService (Primary Port).
// Il contient la logique applicative : credentials, sessions, cycle de vie du compte.
type IdentityService struct {
	repo          ports.UserRepository
	posts         ports.PostRepository
	hasher        ports.PasswordHasher
	tokenProvider ports.TokenProvider
	broker        ports.EventPublisher
}

// NewIdentityService est le constructeur avec injection de dépendances.
// posts sert uniquement à la suppression en cascade (DeleteAccount).
func NewIdentityService(
	repo ports.UserRepository,
	posts ports.PostRepository,
	hasher ports.PasswordHasher,
	token ports.TokenProvider,
	broker ports.EventPublisher,
) *IdentityService {
	return &IdentityService{
		repo:          repo,
		posts:         posts,
		hasher:        hasher,
		tokenProvider: token,
		broker:        broker,
	}
}

// --- AUTHENTIFICATION ---

func (s *IdentityService) Register(ctx context.Context, cmd ports.RegisterCmd) (*ports.AuthResponse, error) {
	// 1. Fail Fast : champs obligatoires (le hash arrive après, inutile de hasher pour rien)
	if cmd.Name == "" || cmd.Email == "" || cmd.Username == "" || cmd.Password == "" {
		return nil, domain.ErrMissingFields
	}

	// 2. Unicité "soft" sur l'email ET le username normalisés.
	// Note: la contrainte UNIQUE de la DB reste la sécurité ultime (race condition).
	if existing, err := s.repo.GetByLogin(ctx, cmd.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if existing, err := s.repo.GetByLogin(ctx, cmd.Username); err == nil && existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	// 3. Sécurité : hachage du mot de passe (jamais stocké en clair)
	hashedPassword, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing failed: %v", domain.ErrInternal, err)
	}

	// 4. Domaine : création de l'agrégat User (validation des invariants dans NewUser)
	user, err := domain.NewUser(cmd.Name, cmd.Email, cmd.Username, hashedPassword, cmd.ImageURL)
	if err != nil {
		return nil, err
	}

	// 5. Persistance
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, s.wrapStoreErr("register", err)
	}

	// 6. Session : génération de la paire de tokens
	access, refresh, err := s.tokenProvider.IssuePair(user.ID, user.Email)
	if err != nil {
		// Cas critique : user créé mais tokens échoués. Le client devra login.
		return nil, fmt.Errorf("%w: token generation failed: %v", domain.ErrInternal, err)
	}

	// 7. Publication asynchrone (best-effort : on ne bloque jamais l'inscription)
	if err := s.broker.PublishUserRegistered(ctx, user.ID, user.Email); err != nil {
		slog.Warn("user.registered event dropped", "user_id", user.ID, "error", err)
	}

	return &ports.AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokenProvider.AccessExpiry(),
	}, nil
}

func (s *IdentityService) Login(ctx context.Context, cmd ports.LoginCmd) (*ports.AuthResponse, error) {
	if cmd.Login == "" || cmd.Password == "" {
		return nil, domain.ErrMissingFields
	}

	// 1. Récupération par email OU username (le repo normalise)
	user, err := s.repo.GetByLogin(ctx, cmd.Login)
	if err != nil {
		// On ne dit pas au client si c'est le login ou le mot de passe qui est faux.
		return nil, domain.ErrInvalidCredentials
	}

	// 2. Vérification du mot de passe (comparaison à temps constant dans le hasher)
	if err := s.hasher.Compare(user.PasswordHash, cmd.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Génération de la paire
	access, refresh, err := s.tokenProvider.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: token generation failed: %v", domain.ErrInternal, err)
	}

	return &ports.AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokenProvider.AccessExpiry(),
	}, nil
}

// RefreshSession échange un refresh token valide contre une nouvelle paire.
// Sessions stateless : pas de blacklist côté serveur dans ce design.
func (s *IdentityService) RefreshSession(ctx context.Context, refreshToken string) (*ports.AuthResponse, error) {
	claims, err := s.tokenProvider.Verify(refreshToken, ports.RefreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	// On recharge le compte : un compte supprimé entre-temps ne doit plus se refresh.
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	access, refresh, err := s.tokenProvider.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: token generation failed: %v", domain.ErrInternal, err)
	}

	return &ports.AuthResponse{
		User:         user.Sanitized(),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokenProvider.AccessExpiry(),
	}, nil
}

// Authenticate est la machine à états du middleware :
// CredentialPresent -> Verified -> Resolved, court-circuit en Unauthenticated.
// Ne mute jamais rien ; retourne toujours un user sans champs sensibles.
func (s *IdentityService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, domain.ErrInvalidToken
	}

	claims, err := s.tokenProvider.Verify(accessToken, ports.AccessToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	// Reload : le token peut être valide alors que le compte n'existe plus.
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return user.Sanitized(), nil
}

// --- GESTION DE COMPTE ---

func (s *IdentityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, cmd ports.UpdateProfileCmd) (*domain.User, error) {
	// 1. Charger l'user
	user, err := s.repo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	// 2. Appliquer UNIQUEMENT les champs fournis (pointeur nil = pas de changement)
	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.Email != nil && domain.NormalizeEmail(*cmd.Email) != user.Email {
		// Changement d'email : re-vérifier l'unicité
		if _, err := s.repo.GetByLogin(ctx, *cmd.Email); err == nil {
			return nil, domain.ErrEmailAlreadyExists
		}
		user.Email = domain.NormalizeEmail(*cmd.Email)
	}
	if cmd.Username != nil && domain.NormalizeUsername(*cmd.Username) != user.Username {
		if _, err := s.repo.GetByLogin(ctx, *cmd.Username); err == nil {
			return nil, domain.ErrUsernameTaken
		}
		user.Username = domain.NormalizeUsername(*cmd.Username)
	}
	if cmd.ImageURL != nil {
		user.ImageURL = *cmd.ImageURL
	}
	if cmd.Password != nil {
		// Toujours re-hasher, jamais stocker le mot de passe brut
		newHash, err := s.hasher.Hash(*cmd.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: hashing failed: %v", domain.ErrInternal, err)
		}
		user.UpdatePassword(newHash)
	}

	// 3. Persister
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.wrapStoreErr("update profile", err)
	}

	return user.Sanitized(), nil
}

// DeleteAccount supprime le compte puis ses posts en cascade.
// La cascade est best-effort : si elle échoue en cours de route on logue,
// des posts orphelins sont acceptables dans ce design (pas de transaction
// multi-entités ici).
func (s *IdentityService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if err := s.posts.DeleteByAuthor(ctx, userID); err != nil {
		slog.Error("cascade delete of owned posts failed", "user_id", userID, "error", err)
	}
	return nil
}

// wrapStoreErr laisse passer les erreurs du domaine (déjà typées par le repo)
// et convertit tout le reste en ErrInternal pour ne pas fuiter de détails techniques.
func (s *IdentityService) wrapStoreErr(op string, err error) error {
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrInternal, op, err)
}
