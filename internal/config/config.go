package config

import (
	"fmt"

	"github.com/alecthomas/kong"
)

const (
	StoreSQLite   = "sqlite"
	StoreChroma   = "chroma"
	StorePinecone = "pinecone"
	StorePostgres = "postgres"

	EmbedderDefault = "default"
	EmbedderHash    = "hash"
	EmbedderOpenAI  = "openai"
	EmbedderGoogle  = "google"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	// Server config
	Transport string `help:"Protocol transport" env:"TRANSPORT" default:"stdio" enum:"stdio,http"`
	Port      string `help:"Listen port for the http transport" env:"PORT" default:"8081"`
	LogLevel  string `help:"Log level" env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`

	// Collection config
	CollectionName string `name:"collection" help:"Name of the document collection" env:"COLLECTION_NAME" default:"documents"`
	MaxResults     int    `help:"Upper bound applied to num_results, 0 disables it" env:"MAX_RESULTS" default:"100"`

	// Store config
	StoreBackend   string `name:"store" help:"Vector store backend" env:"STORE_BACKEND" default:"sqlite" enum:"sqlite,chroma,pinecone,postgres"`
	SQLitePath     string `name:"sqlite-path" help:"SQLite database path" env:"SQLITE_PATH" default:":memory:"`
	ChromaURL      string `name:"chroma-url" help:"Chroma server URL" env:"CHROMA_URL" default:"http://localhost:8000"`
	PineconeAPIKey string `name:"pinecone-api-key" help:"Pinecone API key" env:"PINECONE_API_KEY"`
	PineconeHost   string `name:"pinecone-host" help:"Pinecone index host" env:"PINECONE_HOST"`
	PostgresDSN    string `name:"postgres-dsn" help:"Postgres connection string" env:"POSTGRES_DSN"`

	// Embedder config
	Embedder            string `help:"Embedding function, hash works offline" env:"EMBEDDER" default:"default" enum:"default,hash,openai,google"`
	EmbeddingModel      string `help:"Embedding model, empty for the embedder default" env:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `help:"Vector size of the hash embedder" env:"EMBEDDING_DIMENSIONS" default:"384"`
	OpenAIAPIKey        string `name:"openai-api-key" help:"OpenAI API key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL       string `name:"openai-base-url" help:"OpenAI compatible base URL" env:"OPENAI_BASE_URL"`
	GoogleAPIKey        string `name:"google-api-key" help:"Google AI API key" env:"GOOGLE_API_KEY"`
}

// Load reads flags from args, falling back to the environment and then the
// defaults, and validates the result.
func Load(args []string) (*Config, error) {
	cfg := &Config{}

	parser, err := kong.New(cfg,
		kong.Name("chroma-mcp"),
		kong.Description("MCP server exposing a document collection with similarity search."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build config parser: %w", err)
	}

	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.CollectionName == "" {
		return fmt.Errorf("collection name is required")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max results must not be negative, got %d", c.MaxResults)
	}

	switch c.StoreBackend {
	case StorePinecone:
		if c.PineconeAPIKey == "" || c.PineconeHost == "" {
			return fmt.Errorf("pinecone store requires PINECONE_API_KEY and PINECONE_HOST")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres store requires POSTGRES_DSN")
		}
	}

	switch c.Embedder {
	case EmbedderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai embedder requires OPENAI_API_KEY")
		}
	case EmbedderGoogle:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("google embedder requires GOOGLE_API_KEY")
		}
	}

	return nil
}
