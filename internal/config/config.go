package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Site    SiteConfig
	Crawl   CrawlConfig
	Browser BrowserConfig
	Store   StoreConfig
	Server  ServerConfig
	Logging LoggingConfig
}

type SiteConfig struct {
	BaseURL    string
	ListingURL string
}

type CrawlConfig struct {
	WaitMin              time.Duration
	WaitMax              time.Duration
	SettleTime           time.Duration
	ScrollStep           int
	ScrollPause          time.Duration
	ScrollMaxAttempts    int
	ScrollStableAttempts int
	ElementWait          time.Duration
	SplashWait           time.Duration
	CardWait             time.Duration
	ReviewItemsWait      time.Duration
	ReviewMaxPages       int
}

type BrowserConfig struct {
	Headless        bool
	PageLoadTimeout time.Duration
	NavRetries      int
	UserAgent       string
	ViewportWidth   int
	ViewportHeight  int
}

type StoreConfig struct {
	DataDir string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// defaultListingURL is the pre-filtered laptops search: price 500-1500,
// brands Lenovo/HP/Dell, customer rating 4 and up, splash suppressed.
const defaultListingURL = "https://www.bestbuy.com/site/searchpage.jsp?" +
	"id=pcat17071&qp=currentprice_facet%3DPrice%7E500+to+1500" +
	"%5Ebrand_facet%3DBrand%7ELenovo%5Ebrand_facet%3DBrand%7EHP" +
	"%5Ebrand_facet%3DBrand%7EDell%5Ecustomerreviews_facet%3D" +
	"Customer+Rating%7E4+%26+Up&st=laptops&intl=nosplash"

func Load() (*Config, error) {
	cfg := &Config{
		Site: SiteConfig{
			BaseURL:    getEnvOrDefault("BASE_URL", "https://www.bestbuy.com/"),
			ListingURL: getEnvOrDefault("LISTING_URL", defaultListingURL),
		},
		Crawl: CrawlConfig{
			WaitMin:              getDurationOrDefault("WAIT_MIN", 2*time.Second),
			WaitMax:              getDurationOrDefault("WAIT_MAX", 5*time.Second),
			SettleTime:           getDurationOrDefault("SETTLE_TIME", 3*time.Second),
			ScrollStep:           getIntOrDefault("SCROLL_STEP", 1000),
			ScrollPause:          getDurationOrDefault("SCROLL_PAUSE", 2*time.Second),
			ScrollMaxAttempts:    getIntOrDefault("SCROLL_MAX_ATTEMPTS", 20),
			ScrollStableAttempts: getIntOrDefault("SCROLL_STABLE_ATTEMPTS", 3),
			ElementWait:          getDurationOrDefault("ELEMENT_WAIT", 10*time.Second),
			SplashWait:           getDurationOrDefault("SPLASH_WAIT", 5*time.Second),
			CardWait:             getDurationOrDefault("CARD_WAIT", 15*time.Second),
			ReviewItemsWait:      getDurationOrDefault("REVIEW_ITEMS_WAIT", 20*time.Second),
			ReviewMaxPages:       getIntOrDefault("REVIEW_MAX_PAGES", 50),
		},
		Browser: BrowserConfig{
			Headless:        getBoolOrDefault("BROWSER_HEADLESS", true),
			PageLoadTimeout: getDurationOrDefault("PAGE_LOAD_TIMEOUT", 30*time.Second),
			NavRetries:      getIntOrDefault("BROWSER_NAV_RETRIES", 3),
			UserAgent:       getEnvOrDefault("USER_AGENT", ""),
			ViewportWidth:   getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight:  getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
		},
		Store: StoreConfig{
			DataDir: getEnvOrDefault("DATA_DIR", "data/raw"),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawl.WaitMin > c.Crawl.WaitMax {
		return fmt.Errorf("WAIT_MIN cannot be greater than WAIT_MAX")
	}

	if c.Crawl.ScrollMaxAttempts < 1 {
		return fmt.Errorf("SCROLL_MAX_ATTEMPTS must be at least 1")
	}

	if c.Crawl.ScrollStableAttempts < 1 {
		return fmt.Errorf("SCROLL_STABLE_ATTEMPTS must be at least 1")
	}

	if c.Crawl.ReviewMaxPages < 1 {
		return fmt.Errorf("REVIEW_MAX_PAGES must be at least 1")
	}

	if c.Store.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationOrDefault accepts either a Go duration string ("2s") or a bare
// number of seconds, matching the upstream .env convention.
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
