package http

import (
	"encoding/json"
	"net/http"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

type UserHandler struct {
	identity ports.IdentityService
	// secureCookies : true hors env local (cookies marqués Secure)
	secureCookies bool
}

func NewUserHandler(identity ports.IdentityService, secureCookies bool) *UserHandler {
	return &UserHandler{identity: identity, secureCookies: secureCookies}
}

// --- DTOs (la forme du JSON reste ici, jamais dans le domaine) ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Image    *string `json:"image"`
}

type userDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Image     string `json:"image"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type authResponseDTO struct {
	User         userDTO `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresIn    int64   `json:"expiresIn"` // secondes
}

// --- HANDLERS ---

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrMissingFields)
		return
	}

	resp, err := h.identity.Register(r.Context(), ports.RegisterCmd{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		ImageURL: req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, resp)
	writeJSON(w, http.StatusCreated, toAuthDTO(resp), "User registered successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrMissingFields)
		return
	}

	resp, err := h.identity.Login(r.Context(), ports.LoginCmd{Login: req.Login, Password: req.Password})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, resp)
	writeJSON(w, http.StatusOK, toAuthDTO(resp), "Login successful")
}

// Refresh accepte le token en cookie ou en body {refreshToken}.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		token = body.RefreshToken
	}

	resp, err := h.identity.RefreshSession(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, resp)
	writeJSON(w, http.StatusOK, toAuthDTO(resp), "Session refreshed")
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserDTO(actor), "User fetched successfully")
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrMissingFields)
		return
	}

	actor := ActorFromContext(r.Context())
	user, err := h.identity.UpdateProfile(r.Context(), ports.UpdateProfileCmd{
		UserID:   actor.ID,
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		ImageURL: req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user), "Profile updated successfully")
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r.Context())
	if err := h.identity.DeleteAccount(r.Context(), actor.ID); err != nil {
		writeError(w, err)
		return
	}

	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, nil, "Account deleted successfully")
}

// --- COOKIES ---

// setSessionCookies pose les deux tokens en cookies http-only.
// Secure hors local : les tokens ne transitent jamais en clair en prod.
func (h *UserHandler) setSessionCookies(w http.ResponseWriter, resp *ports.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    resp.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
		})
	}
}

// --- MAPPERS ---

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Image:     u.ImageURL,
		CreatedAt: u.CreatedAt.Format(timeFormat),
		UpdatedAt: u.UpdatedAt.Format(timeFormat),
	}
}

func toAuthDTO(resp *ports.AuthResponse) authResponseDTO {
	return authResponseDTO{
		User:         toUserDTO(resp.User),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    int64(resp.ExpiresIn.Seconds()),
	}
}
