package service

import (
	"crypto/subtle"
	"strings"

	"atendimentos/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// AdminCredentials is the single account allowed to log in. The password
// is only ever held as a bcrypt hash.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type DefaultAuthService struct {
	Admin    AdminCredentials
	Issuer   TokenIssuer
	Validate *validator.Validate
}

func NewAuthService(admin AdminCredentials, issuer TokenIssuer, validate *validator.Validate) *DefaultAuthService {
	return &DefaultAuthService{Admin: admin, Issuer: issuer, Validate: validate}
}

func (s *DefaultAuthService) Login(req *LoginRequest) (*LoginResponse, apierror.ErrorResponse) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.MissingCredentialsError
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.Admin.Username)) == 1
	// compared regardless of the username outcome
	passErr := bcrypt.CompareHashAndPassword([]byte(s.Admin.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		log.Warnf("rejected login for user %q", req.Username)
		return nil, apierror.InvalidCredentialsError
	}

	token, err := s.Issuer.Issue(s.Admin.Username)
	if err != nil {
		log.Errorf("failed to sign token for %s: %v", s.Admin.Username, err)
		return nil, apierror.InternalServerError
	}
	return &LoginResponse{Token: token}, nil
}
