package auth

// Config selects the inbound authenticators. Zero value disables auth.
type Config struct {
	// APIKeys are plain keys or HashedPrefix digests.
	APIKeys []string

	// APIKeyHeader defaults to DefaultAPIKeyHeader.
	APIKeyHeader string

	// JWTSecret enables HS256 bearer tokens.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

// New builds the chain: API keys first, then JWT.
func New(cfg Config) (*Chain, error) {
	var auths []Authenticator
	if len(cfg.APIKeys) > 0 {
		a, err := NewAPIKeyAuthenticator(cfg.APIKeyHeader, cfg.APIKeys)
		if err != nil {
			return nil, err
		}
		auths = append(auths, a)
	}
	if cfg.JWTSecret != "" {
		a, err := NewJWTAuthenticator(JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
		if err != nil {
			return nil, err
		}
		auths = append(auths, a)
	}
	return NewChain(auths...), nil
}
