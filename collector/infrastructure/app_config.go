package infrastructure

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	collectorDomain "github.com/samoilenko/sensorlog/collector/domain"
)

// AppConfig holds all validated configuration parameters for the collector application.
type AppConfig struct {
	BindAddress   collectorDomain.BindAddress
	StorageRoot   collectorDomain.StorageRoot
	QueueCapacity collectorDomain.QueueCapacity
	// Sensors are the kinds the simulated host reports as available.
	Sensors   []collectorDomain.SensorKind
	Autostart bool
	Fsync     bool
	LogLevel  slog.Level
	LogFormat LogFormat
}

// rawConfig is the unvalidated form shared by the YAML file and the flags.
type rawConfig struct {
	BindAddress   string   `yaml:"bind_address"`
	StorageRoot   string   `yaml:"storage_root"`
	QueueCapacity int      `yaml:"queue_capacity"`
	Sensors       []string `yaml:"sensors"`
	Autostart     bool     `yaml:"autostart"`
	Fsync         bool     `yaml:"fsync"`
	LogLevel      string   `yaml:"log_level"`
	LogFormat     string   `yaml:"log_format"`
}

func defaultRawConfig() rawConfig {
	sensors := make([]string, 0, len(collectorDomain.Catalog()))
	for _, kind := range collectorDomain.Catalog() {
		sensors = append(sensors, kind.Alias())
	}

	return rawConfig{
		BindAddress:   string(collectorDomain.DefaultBindAddress),
		StorageRoot:   "./data",
		QueueCapacity: int(collectorDomain.DefaultQueueCapacity),
		Sensors:       sensors,
		LogLevel:      "info",
		LogFormat:     string(LogFormatText),
	}
}

// loadFile merges a YAML file into c. Keys missing from the file keep
// their current value; unknown keys are rejected.
func (c *rawConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *rawConfig) validate() (*AppConfig, error) {
	bindAddress, err := collectorDomain.NewBindAddress(c.BindAddress)
	if err != nil {
		return nil, err
	}

	storageRoot, err := collectorDomain.NewStorageRoot(c.StorageRoot)
	if err != nil {
		return nil, err
	}

	queueCapacity, err := collectorDomain.NewQueueCapacity(c.QueueCapacity)
	if err != nil {
		return nil, err
	}

	sensors := make([]collectorDomain.SensorKind, 0, len(c.Sensors))
	for _, name := range c.Sensors {
		kind, err := collectorDomain.ParseSensorKind(name)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, kind)
	}

	logLevel, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	logFormat, err := ParseLogFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		BindAddress:   bindAddress,
		StorageRoot:   storageRoot,
		QueueCapacity: queueCapacity,
		Sensors:       sensors,
		Autostart:     c.Autostart,
		Fsync:         c.Fsync,
		LogLevel:      logLevel,
		LogFormat:     logFormat,
	}, nil
}

// NewFlagSet declares the collector flags. Defaults shown in the usage
// text are the built-in defaults; a config file may replace them.
func NewFlagSet(name string) *pflag.FlagSet {
	defaults := defaultRawConfig()

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.String("config", "", "path to a YAML config file")
	flagSet.String("bind-address", defaults.BindAddress, "control API bind address (e.g. 127.0.0.1:8081)")
	flagSet.String("storage-root", defaults.StorageRoot, "directory under which sensorLog/ is created")
	flagSet.Int("queue-capacity", defaults.QueueCapacity, "readings the sampling worker holds before deliveries block")
	flagSet.StringSlice("sensors", defaults.Sensors, "sensor kinds the simulated host provides")
	flagSet.Bool("autostart", defaults.Autostart, "start logging as soon as the collector is up")
	flagSet.Bool("fsync", defaults.Fsync, "sync the log file to disk after every sample")
	flagSet.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flagSet.String("log-format", defaults.LogFormat, "log format: text or json")

	return flagSet
}

// GetConfig parses args and returns validated collector configuration.
// Values come from the built-in defaults, then the file named by --config,
// then every flag that was set explicitly.
func GetConfig(flagSet *pflag.FlagSet, args []string) (*AppConfig, error) {
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	raw := defaultRawConfig()

	configPath, _ := flagSet.GetString("config")
	if configPath != "" {
		if err := raw.loadFile(configPath); err != nil {
			return nil, fmt.Errorf("error on loading config %s: %w", configPath, err)
		}
	}

	if err := raw.applyFlags(flagSet); err != nil {
		return nil, err
	}

	return raw.validate()
}

func (c *rawConfig) applyFlags(flagSet *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flagSet.Changed(name) {
			err = apply()
		}
	}

	set("bind-address", func() (e error) { c.BindAddress, e = flagSet.GetString("bind-address"); return })
	set("storage-root", func() (e error) { c.StorageRoot, e = flagSet.GetString("storage-root"); return })
	set("queue-capacity", func() (e error) { c.QueueCapacity, e = flagSet.GetInt("queue-capacity"); return })
	set("sensors", func() (e error) { c.Sensors, e = flagSet.GetStringSlice("sensors"); return })
	set("autostart", func() (e error) { c.Autostart, e = flagSet.GetBool("autostart"); return })
	set("fsync", func() (e error) { c.Fsync, e = flagSet.GetBool("fsync"); return })
	set("log-level", func() (e error) { c.LogLevel, e = flagSet.GetString("log-level"); return })
	set("log-format", func() (e error) { c.LogFormat, e = flagSet.GetString("log-format"); return })

	return err
}
