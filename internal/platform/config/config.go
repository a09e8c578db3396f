package config

import (
	"os"
	"time"
)

// Server captures process-level configuration. The code secret and the
// verification base URL are threaded explicitly into the issuance service;
// nothing reads them from globals.
type Server struct {
	Addr        string
	DatabaseURL string

	// CodeSecret is the shared secret mixed into code derivation. It must
	// never be logged or transmitted.
	CodeSecret string

	// VerifyBaseURL is the public endpoint QR codes point at; the tracking
	// code is appended as a query parameter.
	VerifyBaseURL string

	// JWTSigningKey signs operator tokens for the issuance endpoints.
	JWTSigningKey string

	// AdminTokenHash is the bcrypt hash of the admin token protecting the
	// listing/export endpoints. Empty disables those endpoints.
	AdminTokenHash string

	// SyncURL is the optional external sync collaborator. Empty disables sync.
	SyncURL     string
	SyncAPIKey  string
	SyncTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CERTIFICA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	secret := os.Getenv("CODE_SECRET")
	if secret == "" {
		// Development fallback; production deployments must override this,
		// otherwise anyone can forge codes.
		secret = "dev-secret-change-in-production"
	}

	verifyBase := os.Getenv("VERIFY_BASE_URL")
	if verifyBase == "" {
		verifyBase = "http://localhost:8080/verify"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "dev-signing-key-change-in-production"
	}

	syncTimeout := 10 * time.Second
	if raw := os.Getenv("SYNC_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			syncTimeout = d
		}
	}

	return Server{
		Addr:           addr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CodeSecret:     secret,
		VerifyBaseURL:  verifyBase,
		JWTSigningKey:  jwtSigningKey,
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		SyncURL:        os.Getenv("SYNC_URL"),
		SyncAPIKey:     os.Getenv("SYNC_API_KEY"),
		SyncTimeout:    syncTimeout,
	}
}
