// Package token obtains Lagoon API tokens over ssh and caches them until
// they expire.
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
)

// Defaults
const (
	DefaultUser           = "lagoon"
	DefaultPort           = 32222
	DefaultCachePath      = "/tmp/lagoon_token"
	DefaultPrivateKeyPath = "/tmp/lagoon_ssh_private_key"
	CommandGrant          = "grant"
	CommandToken          = "token"
)

const cachedMessage = "using existing valid token"

var memCache = gocache.New(gocache.NoExpiration, 10*time.Minute)

// Config describes how to reach the Lagoon ssh service.
type Config struct {
	Host    string
	Port    int
	User    string
	Options []string
	// PrivateKey is the content of a key, written to PrivateKeyPath before use.
	PrivateKey     string
	PrivateKeyPath string
	// Command is grant (JSON token with expiry) or token (raw token).
	Command   string
	CachePath string
	NoCache   bool
	Exchanger Exchanger
}

func (c Config) withDefaults() Config {
	if c.User == "" {
		c.User = DefaultUser
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Command == "" {
		c.Command = CommandGrant
	}
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath
	}
	if c.PrivateKey != "" && c.PrivateKeyPath == "" {
		c.PrivateKeyPath = DefaultPrivateKeyPath
	}
	if c.Exchanger == nil {
		c.Exchanger = CommandExchanger{}
	}
	return c
}

func (c Config) cacheKey() string {
	return fmt.Sprintf("%s@%s:%d", c.User, c.Host, c.Port)
}

// Exchanger runs the Lagoon ssh command and returns its standard output.
type Exchanger interface {
	Exchange(ctx context.Context, cfg Config) ([]byte, error)
}

// Fetch returns a valid token, from the cache if possible, otherwise by
// running the ssh command. The returned message is the one of the ssh
// command, or a notice that a cached token was used.
func Fetch(ctx context.Context, cfg Config) (*sdk.Token, string, error) {
	cfg = cfg.withDefaults()
	if cfg.Host == "" {
		return nil, "", sdk.NewErrorFrom(sdk.ErrWrongRequest, "missing ssh host")
	}
	now := time.Now()

	if !cfg.NoCache {
		if tok, ok := cached(ctx, cfg, now); ok {
			return tok, cachedMessage, nil
		}
	}

	if cfg.PrivateKey != "" {
		if err := writePrivateKey(cfg.PrivateKey, cfg.PrivateKeyPath); err != nil {
			return nil, "", err
		}
	}

	log.Debug(ctx, "fetching token from %s", cfg.cacheKey())
	out, err := cfg.Exchanger.Exchange(ctx, cfg)
	if err != nil {
		return nil, "", err
	}

	tok, err := parse(out, cfg.Command, now)
	if err != nil {
		return nil, "", err
	}
	if !cfg.NoCache {
		store(ctx, cfg, *tok, now)
	}
	return tok, "", nil
}

func parse(out []byte, command string, now time.Time) (*sdk.Token, error) {
	out = []byte(strings.TrimSpace(string(out)))
	if command == CommandToken {
		if len(out) == 0 {
			return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "empty token")
		}
		return &sdk.Token{AccessToken: string(out)}, nil
	}
	var tok sdk.Token
	if err := json.Unmarshal(out, &tok); err != nil {
		return nil, sdk.NewError(sdk.ErrInvalidData, fmt.Errorf("unable to decode token: %v", err))
	}
	if tok.AccessToken == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "no access_token in %s output", command)
	}
	tok = tok.WithExpiry(now)
	return &tok, nil
}

// Expiry returns the exp claim of a JWT. The signature is not verified.
func Expiry(accessToken string) (time.Time, error) {
	var claims jwt.StandardClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, sdk.NewError(sdk.ErrInvalidData, err)
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, sdk.NewErrorFrom(sdk.ErrInvalidData, "token has no exp claim")
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

// Valid returns true when the token expires after now.
func Valid(tok sdk.Token, now time.Time) bool {
	if tok.AccessToken == "" {
		return false
	}
	exp, err := Expiry(tok.AccessToken)
	if err != nil {
		return false
	}
	return exp.After(now)
}

func cached(ctx context.Context, cfg Config, now time.Time) (*sdk.Token, bool) {
	if v, ok := memCache.Get(cfg.cacheKey()); ok {
		tok := v.(sdk.Token)
		if Valid(tok, now) {
			return &tok, true
		}
	}
	btes, err := os.ReadFile(cfg.CachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(ctx, "unable to read token cache %s: %v", cfg.CachePath, err)
		}
		return nil, false
	}
	var tok sdk.Token
	if err := json.Unmarshal(btes, &tok); err != nil || !Valid(tok, now) {
		return nil, false
	}
	memCache.Set(cfg.cacheKey(), tok, ttl(tok, now))
	return &tok, true
}

func store(ctx context.Context, cfg Config, tok sdk.Token, now time.Time) {
	if !Valid(tok, now) {
		return
	}
	memCache.Set(cfg.cacheKey(), tok, ttl(tok, now))
	btes, err := json.Marshal(tok)
	if err != nil {
		return
	}
	if err := writeFileAtomic(cfg.CachePath, btes, 0600); err != nil {
		log.Warn(ctx, "unable to write token cache %s: %v", cfg.CachePath, err)
	}
}

func ttl(tok sdk.Token, now time.Time) time.Duration {
	exp, err := Expiry(tok.AccessToken)
	if err != nil {
		return time.Second
	}
	return exp.Sub(now)
}

func writePrivateKey(key, path string) error {
	if !strings.HasSuffix(key, "\n") {
		key += "\n"
	}
	return writeFileAtomic(path, []byte(key), 0600)
}

// writeFileAtomic writes to a temporary file of the same directory then
// renames it, so that readers never see a partial file.
func writeFileAtomic(path string, btes []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return sdk.WithStack(err)
	}
	defer os.Remove(tmp.Name()) // nolint
	if _, err := tmp.Write(btes); err != nil {
		tmp.Close() // nolint
		return sdk.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return sdk.WithStack(err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return sdk.WithStack(err)
	}
	return sdk.WithStack(os.Rename(tmp.Name(), path))
}
