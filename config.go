package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Schema declares the upload vocabulary: which columns matter, which
// service categories are accepted, how categories map to products, how
// timestamps are written, and the ordered story section names. Everything
// here is data, not logic, and can be overridden from config.yaml.
type Schema struct {
	Columns      []string          `yaml:"columns"`
	Categories   []string          `yaml:"categories"`
	ProductMap   map[string]string `yaml:"product_map"`
	DateLayout   string            `yaml:"date_layout"`
	SectionNames []string          `yaml:"section_names"`
}

// Date and free-text columns within the vocabulary. Timestamp parsing and
// sentinel fill apply only to these, and only when present in an upload.
var dateColumns = []string{ColAcceptanceTime, ColCompletionTime, ColCustomerCompletionTime}
var textColumns = []string{ColOrderDescription1, ColOrderDescription2, ColCompletionResultKB, ColNoteMaximum}

// DefaultSchema returns the stock ticket vocabulary. The date layout
// accepts both zero-padded and unpadded month/day (01/15/2024 10:30 and
// 1/15/2024 10:30 both parse).
func DefaultSchema() Schema {
	return Schema{
		Columns: []string{
			ColOrderNumber, ColAcceptanceTime, ColCompletionTime, ColCustomerCompletionTime,
			ColCustomerNumber, ColOrderType, ColProcessingStatus, ColServiceCategory,
			ColOrderDescription1, ColOrderDescription2, ColCompletionResultKB, ColNoteMaximum,
		},
		Categories: []string{"HDW", "NET", "KAI", "KAV", "GIGA", "VOD", "KAD"},
		ProductMap: map[string]string{
			"KAI":  "Broadband",
			"NET":  "Broadband",
			"KAV":  "Voice",
			"KAD":  "TV",
			"GIGA": "GIGA",
			"VOD":  "VOD",
			"HDW":  "Hardware",
		},
		DateLayout:   "1/2/2006 15:04",
		SectionNames: []string{"Initial Issue", "Follow-ups", "Developments", "Later Incidents", "Recent Events"},
	}
}

// Validate checks that the schema is internally consistent. The product
// map must be total over the category whitelist so that normalization can
// derive a product for every retained row.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("schema has no categories")
	}
	if s.DateLayout == "" {
		return fmt.Errorf("schema has no date_layout")
	}
	if len(s.SectionNames) == 0 {
		return fmt.Errorf("schema has no section_names")
	}
	for _, cat := range s.Categories {
		if s.ProductMap[cat] == "" {
			return fmt.Errorf("product_map has no product for category '%s'", cat)
		}
	}
	return nil
}

type Config struct {
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	DBPath          string `yaml:"db_path"`
	InputDir        string `yaml:"input_dir"`
	ReportOutputDir string `yaml:"report_output_dir"`
	WatchSchedule   string `yaml:"watch_schedule"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	TeamName string `yaml:"team_name"`
	Timezone string `yaml:"timezone"`

	Schema Schema `yaml:"schema"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.InputDir, "INPUT_DIR")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.WatchSchedule, "WATCH_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.TeamName, "TEAM_NAME")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "none"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./ticketbot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.TeamName == "" {
		cfg.TeamName = "Support Team"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	cfg.Schema = mergeSchemaDefaults(cfg.Schema)

	// Validate
	switch cfg.LLMProvider {
	case "none":
		// Narrative generation disabled; reports use fallback text.
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'none', 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if err := cfg.Schema.Validate(); err != nil {
		log.Fatalf("Invalid schema config: %v", err)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

// mergeSchemaDefaults fills any schema field left empty in the config file
// with the stock vocabulary, so a partial override does not wipe the rest.
func mergeSchemaDefaults(s Schema) Schema {
	def := DefaultSchema()
	if len(s.Columns) == 0 {
		s.Columns = def.Columns
	}
	if len(s.Categories) == 0 {
		s.Categories = def.Categories
	}
	if len(s.ProductMap) == 0 {
		s.ProductMap = def.ProductMap
	}
	if s.DateLayout == "" {
		s.DateLayout = def.DateLayout
	}
	if len(s.SectionNames) == 0 {
		s.SectionNames = def.SectionNames
	}
	return s
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
