package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrMissingConfig = errors.New("missing required configuration")

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"

	SentimentHuggingFace = "huggingface"
	SentimentVader       = "vader"
	SentimentHugot       = "hugot"

	TrackingCSV      = "csv"
	TrackingSQLite   = "sqlite"
	TrackingDynamoDB = "dynamodb"

	ScrapedPostsFile    = "scraped_posts.json"
	PostsWithReplies    = "posts_with_replies.json"
	TrackedCommentsFile = "tracked_comments.csv"
	TrackingDBFile      = "tracked_comments.db"

	DefaultPersona = "You are a passionate One Piece fan who's witty, respectful, and knowledgeable. " +
		"You respond with dignity and humor while staying authentic to your personality."
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

type LLMConfig struct {
	Provider     string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string
	Persona      string
}

type SentimentConfig struct {
	Backend       string
	HFToken       string
	HFModel       string
	HugotModel    string
	HugotModelDir string
}

type StorageConfig struct {
	Backend       string
	DataDir       string
	HeatmapDir    string
	DynamoDBTable string
	AWSEndpoint   string
	AWSRegion     string
}

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type KafkaConfig struct {
	Broker      string
	ReportTopic string
}

type Config struct {
	Env           string
	LogLevel      string
	Reddit        RedditConfig
	LLM           LLMConfig
	Sentiment     SentimentConfig
	Storage       StorageConfig
	Valkey        ValkeyConfig
	Kafka         KafkaConfig
	DashboardAddr string
	PollSchedule  string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Load builds a Config from the process environment. It never fails; the
// Require* methods decide what a given workflow cannot run without.
func Load() Config {
	return Config{
		Env:      AppEnv(),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Reddit: RedditConfig{
			ClientID:     firstEnv("REDDIT_CLIENT_ID", "CLIENT_ID"),
			ClientSecret: firstEnv("REDDIT_CLIENT_SECRET", "CLIENT_SECRET"),
			Username:     os.Getenv("REDDIT_USERNAME"),
			Password:     os.Getenv("REDDIT_PASSWORD"),
			UserAgent:    getEnv("REDDIT_USER_AGENT", getEnv("USER_AGENT", "replybot/0.1")),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", LLMProviderOpenAI)),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Persona:      getEnv("REPLY_PERSONA", DefaultPersona),
		},
		Sentiment: SentimentConfig{
			Backend:       strings.ToLower(getEnv("SENTIMENT_BACKEND", SentimentHuggingFace)),
			HFToken:       os.Getenv("HF_API_TOKEN"),
			HFModel:       getEnv("HF_SENTIMENT_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
			HugotModel:    getEnv("HUGOT_MODEL", "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"),
			HugotModelDir: getEnv("HUGOT_MODEL_DIR", "./models"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("TRACKING_BACKEND", TrackingCSV)),
			DataDir:       getEnv("DATA_DIR", "."),
			HeatmapDir:    getEnv("HEATMAP_DIR", "heatmaps"),
			DynamoDBTable: getEnv("DYNAMODB_TABLE", "TrackedComments"),
			AWSEndpoint:   os.Getenv("AWS_ENDPOINT"),
			AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		},
		Valkey: ValkeyConfig{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			TLS:      os.Getenv("VALKEY_TLS") == "true",
		},
		Kafka: KafkaConfig{
			Broker:      os.Getenv("KAFKA_BROKER"),
			ReportTopic: getEnv("KAFKA_REPORT_TOPIC", "comment-performance"),
		},
		DashboardAddr: getEnv("DASHBOARD_ADDR", ":8080"),
		PollSchedule:  getEnv("POLL_SCHEDULE", "@every 6h"),
	}
}

func (c Config) DataPath(name string) string {
	return filepath.Join(c.Storage.DataDir, name)
}

func missing(vars ...string) error {
	return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(vars, ", "))
}

// RequireReddit checks app credentials, and account credentials when posting
// or reading our own comments.
func (c Config) RequireReddit(account bool) error {
	var vars []string
	if c.Reddit.ClientID == "" {
		vars = append(vars, "REDDIT_CLIENT_ID")
	}
	if c.Reddit.ClientSecret == "" {
		vars = append(vars, "REDDIT_CLIENT_SECRET")
	}
	if account {
		if c.Reddit.Username == "" {
			vars = append(vars, "REDDIT_USERNAME")
		}
		if c.Reddit.Password == "" {
			vars = append(vars, "REDDIT_PASSWORD")
		}
	}
	if len(vars) > 0 {
		return missing(vars...)
	}
	return nil
}

func (c Config) RequireLLM() error {
	switch c.LLM.Provider {
	case LLMProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return missing("OPENAI_API_KEY")
		}
	case LLMProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return missing("GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	return nil
}

func (c Config) RequireSentiment() error {
	switch c.Sentiment.Backend {
	case SentimentHuggingFace:
		if c.Sentiment.HFToken == "" {
			return missing("HF_API_TOKEN")
		}
	case SentimentVader, SentimentHugot:
	default:
		return fmt.Errorf("unknown SENTIMENT_BACKEND %q", c.Sentiment.Backend)
	}
	return nil
}

func (c Config) RequireTracking() error {
	switch c.Storage.Backend {
	case TrackingCSV, TrackingSQLite, TrackingDynamoDB:
		return nil
	default:
		return fmt.Errorf("unknown TRACKING_BACKEND %q", c.Storage.Backend)
	}
}
