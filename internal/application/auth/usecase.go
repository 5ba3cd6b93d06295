package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

const subjectUser = "user"

// AuthUseCase casos de uso de autenticación: login, logout y usuario actual.
type AuthUseCase struct {
	userRepo repository.UserRepository
	recorder ports.ActivityRecorder
	tokens   *jwt.Signer
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, recorder ports.ActivityRecorder, tokens *jwt.Signer) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, recorder: recorder, tokens: tokens}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email inexistente y password incorrecta devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, _, err := uc.tokens.Issue(jwt.Subject{UserID: user.ID, Name: user.Name, Role: user.Role})
	if err != nil {
		return nil, err
	}
	uc.recorder.Record(ctx, user.Actor(), audit.ActionLogin, subjectUser, user.ID, "Logged in")
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// Logout registra el cierre de sesión. El token es stateless: expira solo.
func (uc *AuthUseCase) Logout(ctx context.Context, actor entity.Actor) {
	uc.recorder.Record(ctx, actor, audit.ActionLogout, subjectUser, actor.UserID, "Logged out")
}

// GetUser devuelve el usuario autenticado.
func (uc *AuthUseCase) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// HashPassword genera el hash bcrypt para altas de usuarios (seed).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
