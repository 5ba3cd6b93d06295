// Package jwt emite y verifica los tokens de sesión (HS256).
//
// El token lleva el actor completo: sub = id del usuario, más name y role. Así el
// middleware arma el actor sin ir a la base.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolerancia de reloj entre instancias al validar exp/iat.
const leeway = 5 * time.Second

var (
	// ErrInvalid token mal formado, con firma o emisor incorrectos.
	ErrInvalid = errors.New("jwt: token inválido")
	// ErrExpired token vencido.
	ErrExpired = errors.New("jwt: token expirado")
)

// Subject el actor dueño del token.
type Subject struct {
	UserID string
	Name   string
	Role   string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Role string `json:"role"`
}

// Signer firma y verifica tokens con un secreto y emisor fijos.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner valida la configuración. ttl debe ser positivo.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: duración inválida %s", ttl)
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue firma un token para el sujeto. Devuelve también el vencimiento.
func (s *Signer) Issue(sub Subject) (string, time.Time, error) {
	if sub.UserID == "" {
		return "", time.Time{}, fmt.Errorf("jwt: sujeto sin id")
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Name: sub.Name,
		Role: sub.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: firmar: %w", err)
	}
	return signed, exp, nil
}

// Verify devuelve el sujeto de un token válido. Los errores se reducen a ErrInvalid o ErrExpired.
func (s *Signer) Verify(token string) (Subject, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Subject{}, ErrExpired
	case err != nil:
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	case claims.Subject == "":
		return Subject{}, fmt.Errorf("%w: sin sub", ErrInvalid)
	}
	return Subject{UserID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}
