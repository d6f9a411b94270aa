package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"browser-mcp/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads configuration from the process environment after
// loading .env and .env.<APP_ENV>. Missing files are not an error; the
// outcome of each load is kept in Notes so it can be logged once a logger
// exists.
type EnvService struct {
	AppEnv string
	Notes  []string
}

func NewEnvService() *EnvService {
	return NewEnvServiceFrom(".")
}

func NewEnvServiceFrom(dir string) *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	s := &EnvService{AppEnv: appEnv}

	base := dir + string(os.PathSeparator) + ".env"
	if err := godotenv.Load(base); err != nil {
		s.Notes = append(s.Notes, "no .env file found")
	} else {
		s.Notes = append(s.Notes, "loaded "+base)
	}

	envFile := fmt.Sprintf("%s.%s", base, appEnv)
	if err := godotenv.Overload(envFile); err != nil {
		s.Notes = append(s.Notes, fmt.Sprintf("could not load %s: %v", envFile, err))
	} else {
		s.Notes = append(s.Notes, "loaded "+envFile)
	}

	return s
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// MustGet panics instead of exiting so callers can recover in tests.
func (e *EnvService) MustGet(key string) string {
	val := e.Get(key)
	if val == "" {
		panic(fmt.Sprintf("ENV %s is missing", key))
	}
	return val
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := e.Get(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration accepts Go durations ("250ms") and bare integers, which are
// read as milliseconds.
func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
