package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/revu/internal/analysis"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "revu"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage revu configuration.

Running bare 'revu config' is the same as 'revu config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# revu configuration
# See: revu config show (for effective values and sources)

# Base URL of the review backend used by 'revu serve', 'revu reviews' and 'revu mcp'
api_url: "{{ .APIURL }}"

# SQLite database path used by 'revu api' (default: ~/.config/revu/revu.db)
# db_path: {{ .DBPath }}

# Web UI
ui:
  port: {{ .UIPort }}
  # Idle time before a browser session is discarded
  session_ttl: "{{ .SessionTTL }}"

# Analysis backend
api:
  port: {{ .APIPort }}
  # Sustained analyze requests per second, and burst size (0 disables limiting)
  rate_limit: {{ .RateLimit }}
  burst: {{ .Burst }}

# Sentiment classification
huggingface:
  # API token (or set HF_API_TOKEN)
  token: ""
  # url: {{ .HFURL }}

# Key point extraction: gemini, anthropic or none
keypoints:
  provider: "{{ .Provider }}"

gemini:
  # API key (or set GEMINI_API_KEY)
  api_key: ""
  model: "{{ .GeminiModel }}"

anthropic:
  # API key (or set ANTHROPIC_API_KEY)
  api_key: ""
  model: "{{ .AnthropicModel }}"
`

type configTemplateData struct {
	APIURL         string
	DBPath         string
	UIPort         int
	SessionTTL     string
	APIPort        int
	RateLimit      float64
	Burst          int
	HFURL          string
	Provider       string
	GeminiModel    string
	AnthropicModel string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	hfURL := viper.GetString("huggingface.url")
	if hfURL == "" {
		hfURL = analysis.DefaultHFURL
	}
	data := configTemplateData{
		APIURL:         viper.GetString("api_url"),
		DBPath:         viper.GetString("db_path"),
		UIPort:         viper.GetInt("ui.port"),
		SessionTTL:     viper.GetString("ui.session_ttl"),
		APIPort:        viper.GetInt("api.port"),
		RateLimit:      viper.GetFloat64("api.rate_limit"),
		Burst:          viper.GetInt("api.burst"),
		HFURL:          hfURL,
		Provider:       viper.GetString("keypoints.provider"),
		GeminiModel:    viper.GetString("gemini.model"),
		AnthropicModel: viper.GetString("anthropic.model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
	Secret bool
}

var configKeys = []configKeyInfo{
	{Key: "api_url", EnvVar: "REVU_API_URL"},
	{Key: "db_path", EnvVar: "REVU_DB_PATH"},
	{Key: "ui.port", EnvVar: "REVU_UI_PORT"},
	{Key: "ui.session_ttl", EnvVar: "REVU_UI_SESSION_TTL"},
	{Key: "api.port", EnvVar: "REVU_API_PORT"},
	{Key: "api.rate_limit", EnvVar: "REVU_API_RATE_LIMIT"},
	{Key: "api.burst", EnvVar: "REVU_API_BURST"},
	{Key: "huggingface.token", EnvVar: "REVU_HUGGINGFACE_TOKEN", Secret: true},
	{Key: "huggingface.url", EnvVar: "REVU_HUGGINGFACE_URL"},
	{Key: "keypoints.provider", EnvVar: "REVU_KEYPOINTS_PROVIDER"},
	{Key: "gemini.api_key", EnvVar: "REVU_GEMINI_API_KEY", Secret: true},
	{Key: "gemini.model", EnvVar: "REVU_GEMINI_MODEL"},
	{Key: "anthropic.api_key", EnvVar: "REVU_ANTHROPIC_API_KEY", Secret: true},
	{Key: "anthropic.model", EnvVar: "REVU_ANTHROPIC_MODEL"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Secret {
			val = maskSecret(viper.GetString(k.Key))
		}
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-22s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// maskSecret hides all but the last four characters of a credential.
func maskSecret(v string) string {
	if v == "" {
		return "(unset)"
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'revu config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
