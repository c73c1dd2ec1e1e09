package publish

import "os"

// Config holds object store settings for publishing.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string

	Bucket string
	Prefix string

	// LocalDir backs the filesystem fallback when no endpoint is set.
	LocalDir string
}

// FromEnv loads publish settings from RAL_PUBLISH_* variables.
func FromEnv() *Config {
	return &Config{
		Endpoint:  os.Getenv("RAL_PUBLISH_ENDPOINT"),
		AccessKey: os.Getenv("RAL_PUBLISH_ACCESS_KEY"),
		SecretKey: os.Getenv("RAL_PUBLISH_SECRET_KEY"),
		UseSSL:    os.Getenv("RAL_PUBLISH_USE_SSL") == "true",
		Region:    os.Getenv("RAL_PUBLISH_REGION"),
		Bucket:    getEnv("RAL_PUBLISH_BUCKET", "ral-docs"),
		Prefix:    getEnv("RAL_PUBLISH_PREFIX", "docs"),
		LocalDir:  os.Getenv("RAL_PUBLISH_DIR"),
	}
}

// OpenStore builds the store the config describes: S3 when an endpoint
// and credentials are set, the local filesystem otherwise.
func (c *Config) OpenStore() (Store, error) {
	if c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" {
		return NewS3Store(c)
	}
	return NewLocalStore(c.LocalDir), nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
