package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type JWTConfig struct {
	Secret              string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	VerificationCodeTTL time.Duration
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	TextModel   string
	Timeout     time.Duration
}

// MatcherConfig tunes the fuzzy product matcher.
type MatcherConfig struct {
	MinSimilarity      float64
	SimilarityWeight   float64
	LevenshteinWeight  float64
	ShortQueryMaxRunes int
}

// Identity is one person the extraction oracle may attribute items to.
// Tag is the marker used in handwritten rows and free text ("М", "А").
type Identity struct {
	Tag  string
	Name string
}

type AWSConfig struct {
	Region         string
	AvatarBucket   string
	PublicBaseURL  string
	SESSender      string
	SNSPlatformARN string
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
}

type Config struct {
	LogMode       string
	DB            DBConfig
	JWT           JWTConfig
	OpenAI        OpenAIConfig
	Matcher       MatcherConfig
	Identities    []Identity
	IngestTimeout time.Duration
	AWS           AWSConfig
	HTTP          HTTPConfig
}

// Load reads .env (if present) and the process environment. It is called
// once in main and the result is passed down explicitly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	identities, err := ParseIdentities(getenv("EXTRACTION_USERS", "М=Mykhailo,А=Anastasiia"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogMode: getenv("LOG_MODE", "dev"),
		DB: DBConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			Name:     getenv("DB_NAME", "postgres"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:              os.Getenv("JWT_SECRET"),
			AccessTokenTTL:      time.Duration(getint("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
			RefreshTokenTTL:     time.Duration(getint("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
			VerificationCodeTTL: 10 * time.Minute,
		},
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			BaseURL:     strings.TrimRight(getenv("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
			VisionModel: getenv("OPENAI_MODEL_VISION", "gpt-4.1"),
			TextModel:   getenv("OPENAI_MODEL_TEXT", "gpt-4.1-mini"),
			Timeout:     time.Duration(getint("OPENAI_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Matcher: MatcherConfig{
			MinSimilarity:      getfloat("MATCHER_MIN_SIMILARITY", 0.20),
			SimilarityWeight:   getfloat("MATCHER_SIMILARITY_WEIGHT", 0.85),
			LevenshteinWeight:  getfloat("MATCHER_LEVENSHTEIN_WEIGHT", 0.15),
			ShortQueryMaxRunes: getint("MATCHER_SHORT_QUERY_MAX_LEN", 4),
		},
		Identities:    identities,
		IngestTimeout: time.Duration(getint("INGEST_TIMEOUT_SECONDS", 180)) * time.Second,
		AWS: AWSConfig{
			Region:         getenv("AWS_REGION", "eu-central-1"),
			AvatarBucket:   os.Getenv("S3_AVATAR_BUCKET"),
			PublicBaseURL:  strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
			SESSender:      os.Getenv("SES_EMAIL"),
			SNSPlatformARN: os.Getenv("SNS_PLATFORM_ARN"),
		},
		HTTP: HTTPConfig{
			Addr:        getenv("HTTP_ADDR", ":8080"),
			CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
		},
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return cfg, nil
}

// ParseIdentities parses "TAG=Name,TAG=Name".
func ParseIdentities(raw string) ([]Identity, error) {
	var out []Identity
	seen := map[string]bool{}
	for _, part := range splitList(raw) {
		tag, name, ok := strings.Cut(part, "=")
		tag, name = strings.TrimSpace(tag), strings.TrimSpace(name)
		if !ok || tag == "" || name == "" {
			return nil, fmt.Errorf("invalid EXTRACTION_USERS entry %q", part)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate identity %q", name)
		}
		seen[name] = true
		out = append(out, Identity{Tag: tag, Name: name})
	}
	if len(out) == 0 {
		return nil, errors.New("EXTRACTION_USERS is empty")
	}
	return out, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
