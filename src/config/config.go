package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the analysis pipeline.
type Config struct {
	DataDir   string `json:"data_dir"`   // directory holding dataset workbooks
	OutputDir string `json:"output_dir"` // directory the rendered report is written to

	LogName    string `json:"log_name"`
	LogMaxSize string `json:"log_max_size"` // e.g. "10 * 1024 * 1024"

	FlightsSheet string `json:"flights_sheet"` // workbook sheet holding flight records
	WeatherSheet string `json:"weather_sheet"` // workbook sheet holding weather observations

	DelayThresholdMin float64  `json:"delay_threshold_min"` // minutes; label=1 iff dep_delay >= threshold
	JoinVariant       string   `json:"join_variant"`        // "origin_hour" or "calendar_hour"
	ScheduleInterval  Duration `json:"schedule_interval"`   // 0 disables the cron re-run

	Email struct {
		Server        string   `json:"server"` // IMAP server, host:port
		Username      string   `json:"username"`
		Password      string   `json:"password"`
		TargetSubject string   `json:"target_subject"` // subject keyword of dataset mails
		CheckInterval Duration `json:"check_interval"`
	} `json:"email"`

	SendEmail struct {
		Server     string   `json:"server"` // SMTP server, host:port
		Username   string   `json:"username"`
		Password   string   `json:"password"`
		Subject    string   `json:"subject"`
		Recipients []string `json:"recipients"`
	} `json:"send_email"`
}

// DataConfig maps dataset column names onto pipeline roles so the
// analysis can follow renamed workbook columns without a rebuild.
type DataConfig struct {
	Predictors     []string          `json:"predictors"`      // weather columns fed to the models
	SummaryColumns []string          `json:"summary_columns"` // numeric flight columns summarised
	ColumnAliases  map[string]string `json:"column_aliases"`  // workbook header -> canonical name
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
)

// LoadConfig loads both configuration files exactly once per process.
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read config file: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read data config file: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	applyEnvSecrets(cfg)

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("parse Config: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("parse DataConfig: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("some configuration was not loaded")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "configuration loading hit multiple errors:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// applyEnvSecrets overlays mail credentials from the environment so
// passwords stay out of the checked-in JSON. A .env file in the working
// directory is honoured when present.
func applyEnvSecrets(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("IMAP_USERNAME"); v != "" {
		cfg.Email.Username = v
	}
	if v := os.Getenv("IMAP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SendEmail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SendEmail.Password = v
	}
}

// Duration wraps time.Duration so intervals can be written as "5m" in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
