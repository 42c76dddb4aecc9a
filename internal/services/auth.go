package services

import (
	"context"
	"errors"
	"strings"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Identity 令牌中携带的身份信息
type Identity struct {
	UserID   uint
	Username string
}

type registerInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6"`
}

// 与字段对应的客户端提示
var registerMessages = map[string]string{
	"Username": "Username is required (max 64 characters)",
	"Email":    "Valid email is required",
	"Password": "Password must be at least 6 characters",
}

const invalidLoginMessage = "invalid email or password"

// bcrypt 只接受不超过 72 字节的密码
const maxPasswordBytes = 72

type AuthService struct {
	db       *gorm.DB
	tokens   *utils.TokenIssuer
	validate *validator.Validate
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{
		db:       db,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register 校验输入并保存哈希后的密码
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	in := registerInput{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, apperr.Validation(registerMessages[verrs[0].Field()])
		}
		return nil, apperr.Validation("invalid registration data")
	}
	if len([]byte(in.Password)) > maxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes")
	}

	tx := s.db.WithContext(ctx)

	var existing models.User
	err := tx.Where("username = ? OR email = ?", in.Username, in.Email).Take(&existing).Error
	switch {
	case err == nil:
		if existing.Username == in.Username {
			return nil, apperr.Validation("username is already taken")
		}
		return nil, apperr.Validation("email is already registered")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, storageErr(err, "error registering user")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, storageErr(err, "error registering user")
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
	}
	if err := tx.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("username or email is already taken")
		}
		return nil, storageErr(err, "error registering user")
	}
	return &user, nil
}

// Login 校验凭据并签发一小时有效的令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound(invalidLoginMessage)
		}
		return "", storageErr(err, "error logging in")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", apperr.New(apperr.KindInvalidCredentials, invalidLoginMessage)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", storageErr(err, "error issuing token")
	}
	return token, nil
}

// Authenticate 无状态校验令牌
func (s *AuthService) Authenticate(token string) (*Identity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrTokenEmpty):
			return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
		case errors.Is(err, utils.ErrTokenExpired):
			return nil, apperr.New(apperr.KindUnauthorized, "token has expired")
		default:
			return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
		}
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
