package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sjsage522/patentworker/pkg/errors"
)

var customerNumberPattern = regexp.MustCompile(`^\d{12}$`)

// Config represents the application configuration
type Config struct {
	// Portals
	KiprisURL   string
	PatentGoURL string

	// Browser configuration
	BrowserHeadless       bool
	BrowserExecutablePath string
	BrowserProxy          string
	BrowserUserAgent      string

	// Extraction pacing
	RetryTries  int
	RetryDelay  time.Duration
	DetailDelay time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStreamPrefix    string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr   string
	DetailCacheTTL time.Duration

	// Worker configuration
	CrawlInterval     time.Duration
	CustomerNumbers   []string
	WorkerConcurrency int
	ErrorLogFile      string

	// KIPRIS Plus open API
	KiprisAPIKey string
	KiprisAPIURL string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		KiprisURL:             getEnv("KIPRIS_URL", "https://www.kipris.or.kr/khome/main.do"),
		PatentGoURL:           getEnv("PATENTGO_URL", "https://www.patent.go.kr/smart/jsp/kiponet/ma/mamarkapply/infomodifypatent/ReadMyPatApplInfo.do"),
		BrowserHeadless:       getEnvBool("BROWSER_HEADLESS", true),
		BrowserExecutablePath: getEnv("BROWSER_EXECUTABLE_PATH", ""),
		BrowserProxy:          getEnv("BROWSER_PROXY", ""),
		BrowserUserAgent:      getEnv("BROWSER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		RetryTries:            getEnvInt("RETRY_TRIES", 3),
		RetryDelay:            time.Duration(getEnvInt("RETRY_DELAY_MS", 1500)) * time.Millisecond,
		DetailDelay:           time.Duration(getEnvInt("DETAIL_DELAY_MS", 1000)) * time.Millisecond,
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		RedisStreamPrefix:     getEnv("REDIS_STREAM", "patents"),
		RedisStreamCount:      getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength:  getEnvInt("REDIS_STREAM_MAX_LENGTH", 500),
		MemcacheAddr:          getEnv("MEMCACHE_ADDR", ""),
		DetailCacheTTL:        time.Duration(getEnvInt("DETAIL_CACHE_TTL_SECONDS", 21600)) * time.Second,
		CrawlInterval:         time.Duration(getEnvInt("CRAWL_INTERVAL_SECONDS", 3600)) * time.Second,
		CustomerNumbers:       splitList(getEnv("CUSTOMER_NUMBERS", "")),
		WorkerConcurrency:     getEnvInt("WORKER_CONCURRENCY", 1),
		ErrorLogFile:          getEnv("ERROR_LOG_FILE", "error.log"),
		KiprisAPIKey:          getEnv("KIPRIS_API_KEY", ""),
		KiprisAPIURL:          getEnv("KIPRIS_API_URL", "http://plus.kipris.or.kr/kipo-api/kipi/patUtiModInfoSearchSevice/getBibliographyDetailInfoSearch"),
		Environment:           getEnv("PATENT_ENVIRONMENT", "development"),
	}
}

// Validate checks values that would make the pipeline misbehave rather than fail fast
func (c *Config) Validate() error {
	if c.RetryTries < 1 {
		return errors.NewConfiguration(fmt.Sprintf("RETRY_TRIES must be at least 1, got %d", c.RetryTries), nil)
	}
	if c.RetryDelay < 0 || c.DetailDelay < 0 {
		return errors.NewConfiguration("delays must not be negative", nil)
	}
	if c.CrawlInterval <= 0 {
		return errors.NewConfiguration("CRAWL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.WorkerConcurrency < 1 {
		return errors.NewConfiguration("WORKER_CONCURRENCY must be at least 1", nil)
	}
	if c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	for _, n := range c.CustomerNumbers {
		if !ValidCustomerNumber(n) {
			return errors.NewConfiguration(fmt.Sprintf("invalid customer number %q in CUSTOMER_NUMBERS", n), nil)
		}
	}
	return nil
}

// ValidCustomerNumber reports whether s is a 12-digit applicant customer number
func ValidCustomerNumber(s string) bool {
	return customerNumberPattern.MatchString(s)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
