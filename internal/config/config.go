package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how a peripheral backend is chosen at startup.
type Mode string

const (
	// ModeAuto probes the hardware once and falls back to simulation on failure.
	ModeAuto Mode = "auto"
	// ModeHardware requires the hardware; failing to open it is fatal.
	ModeHardware Mode = "hardware"
	// ModeSimulated never touches the hardware.
	ModeSimulated Mode = "simulated"
)

// Config holds the settings shared by the hive binaries.
type Config struct {
	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// StationID names this hive in telemetry topics; defaults to the hostname.
	StationID string `yaml:"station_id"`
	// GPS configures the position monitor.
	GPS GPSConfig `yaml:"gps"`
	// Modem configures the SMS alert dispatcher.
	Modem ModemConfig `yaml:"modem"`
	// Weather configures the weather logger.
	Weather WeatherConfig `yaml:"weather"`
	// MQTT configures optional telemetry publishing.
	MQTT MQTTConfig `yaml:"mqtt"`
}

// SerialConfig describes a byte-oriented serial channel.
type SerialConfig struct {
	// Port is the device path, e.g. /dev/serial0.
	Port string `yaml:"port"`
	// BaudRate is the line speed.
	BaudRate int `yaml:"baud_rate"`
	// ReadTimeout bounds a single read call.
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// GPSConfig configures the position monitor.
type GPSConfig struct {
	Mode   Mode         `yaml:"mode"`
	Serial SerialConfig `yaml:"serial"`
	// LogFile is the append-only position log.
	LogFile string `yaml:"log_file"`
	// Interval is the polling period.
	Interval time.Duration `yaml:"interval"`
	// FixTimeout bounds how long a hardware read waits for a valid NMEA fix.
	FixTimeout time.Duration `yaml:"fix_timeout"`
	// OriginLatitude and OriginLongitude locate the hive; the simulator
	// perturbs around this point and the geofence is centred on it.
	OriginLatitude  float64 `yaml:"origin_latitude"`
	OriginLongitude float64 `yaml:"origin_longitude"`
	// GeofenceThreshold is the allowed absolute latitude displacement in degrees.
	GeofenceThreshold float64 `yaml:"geofence_threshold"`
	// LatitudeJitter and LongitudeJitter bound the simulated noise in degrees.
	LatitudeJitter  float64 `yaml:"latitude_jitter"`
	LongitudeJitter float64 `yaml:"longitude_jitter"`
}

// ModemConfig configures the SMS alert dispatcher.
type ModemConfig struct {
	Mode   Mode         `yaml:"mode"`
	Serial SerialConfig `yaml:"serial"`
	// Recipient is the beekeeper phone number used when none is given on the command line.
	Recipient string `yaml:"recipient"`
	// SimulatedDelay is the fake network delay of the simulated modem.
	SimulatedDelay time.Duration `yaml:"simulated_delay"`
}

// WeatherConfig configures the weather logger.
type WeatherConfig struct {
	Mode Mode `yaml:"mode"`
	// I2CBus is the periph.io bus name; empty selects the default bus.
	I2CBus string `yaml:"i2c_bus"`
	// I2CAddress is the BME280 address, 0x76 or 0x77.
	I2CAddress uint16 `yaml:"i2c_address"`
	// LogFile is the append-only CSV log.
	LogFile string `yaml:"log_file"`
	// Interval is the polling period.
	Interval time.Duration `yaml:"interval"`
	// MaxTemperature is the heat alert threshold in °C.
	MaxTemperature float64 `yaml:"max_temperature"`
	// MinHumidity is the dryness alert threshold in %.
	MinHumidity float64 `yaml:"min_humidity"`
	// MaxHumidity is the mold-risk alert threshold in %.
	MaxHumidity float64 `yaml:"max_humidity"`
}

// MQTTConfig configures optional telemetry publishing. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string        `yaml:"broker"`
	Port     int           `yaml:"port"`
	ClientID string        `yaml:"client_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for hive settings.
	DefaultConfigFilename = "hive-monitor-settings.yaml"

	// DefaultSerialPort is the UART exposed on the Raspberry Pi header.
	DefaultSerialPort = "/dev/serial0"

	// DefaultPositionLog is the default position log filename.
	DefaultPositionLog = "capteur_gps.log"

	// DefaultWeatherLog is the default weather CSV filename.
	DefaultWeatherLog = "donnees_meteo.log"

	// DefaultRecipient is the placeholder beekeeper number; set modem.recipient in production.
	DefaultRecipient = "+596 696 00 00 00"

	// DefaultInterval is the polling period of both monitors.
	DefaultInterval = 5 * time.Second

	// DefaultReadTimeout is the serial read timeout.
	DefaultReadTimeout = 1 * time.Second

	// DefaultBME280Address is the usual Grove BME280 I2C address.
	DefaultBME280Address uint16 = 0x76

	// DefaultFilePermissions is the permission used for the settings file.
	DefaultFilePermissions = 0o600

	// DefaultLogPermissions is the permission used for data log files.
	DefaultLogPermissions = 0o644

	gpsBaudRate   = 9600
	modemBaudRate = 115200
	mqttPort      = 1883
	maxPort       = 65535
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSerialPortRequired is returned when a hardware-capable section has no port.
	errSerialPortRequired = errors.New("serial port must be provided")
	// errHumidityRange is returned when the dryness threshold is not below the mold threshold.
	errHumidityRange = errors.New("min_humidity must be lower than max_humidity")
	// ErrUnknownMode is returned for a mode other than auto, hardware or simulated.
	ErrUnknownMode = errors.New("unknown mode")
)

// Default returns the settings of the Raspberry Pi field deployment.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		GPS: GPSConfig{
			Mode: ModeAuto,
			Serial: SerialConfig{
				Port:        DefaultSerialPort,
				BaudRate:    gpsBaudRate,
				ReadTimeout: DefaultReadTimeout,
			},
			LogFile:           DefaultPositionLog,
			Interval:          DefaultInterval,
			FixTimeout:        2 * time.Second,
			OriginLatitude:    14.605,
			OriginLongitude:   -61.065,
			GeofenceThreshold: 0.008,
			LatitudeJitter:    0.010,
			LongitudeJitter:   0.002,
		},
		Modem: ModemConfig{
			Mode: ModeAuto,
			Serial: SerialConfig{
				Port:        DefaultSerialPort,
				BaudRate:    modemBaudRate,
				ReadTimeout: DefaultReadTimeout,
			},
			Recipient:      DefaultRecipient,
			SimulatedDelay: 2 * time.Second,
		},
		Weather: WeatherConfig{
			Mode:           ModeHardware,
			I2CAddress:     DefaultBME280Address,
			LogFile:        DefaultWeatherLog,
			Interval:       DefaultInterval,
			MaxTemperature: 35,
			MinHumidity:    30,
			MaxHumidity:    85,
		},
		MQTT: MQTTConfig{
			Port:     mqttPort,
			ClientID: "hive-monitor",
			Timeout:  5 * time.Second,
		},
	}
}

// Load reads configuration from the provided path on top of Default and validates it.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case errors.Is(err, os.ErrNotExist):
		// Keep defaults.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ParseMode converts a command line value into a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if err := mode.validate(); err != nil {
		return "", err
	}

	return mode, nil
}

// Validate checks the provided settings and fills zero values with defaults.
//
//nolint:cyclop // A flat list of field checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := validateSerial("gps", cfg.GPS.Mode, &cfg.GPS.Serial, gpsBaudRate); err != nil {
		return err
	}

	if err := validateSerial("modem", cfg.Modem.Mode, &cfg.Modem.Serial, modemBaudRate); err != nil {
		return err
	}

	if cfg.GPS.LogFile == "" {
		cfg.GPS.LogFile = DefaultPositionLog
	}

	if cfg.GPS.Interval <= 0 {
		cfg.GPS.Interval = DefaultInterval
	}

	if cfg.GPS.FixTimeout <= 0 {
		cfg.GPS.FixTimeout = cfg.GPS.Serial.ReadTimeout
	}

	if cfg.GPS.GeofenceThreshold <= 0 {
		return fmt.Errorf("gps: geofence_threshold must be positive, got %v", cfg.GPS.GeofenceThreshold)
	}

	if cfg.GPS.LatitudeJitter < 0 || cfg.GPS.LongitudeJitter < 0 {
		return errors.New("gps: jitter must not be negative")
	}

	if cfg.Modem.SimulatedDelay < 0 {
		return fmt.Errorf("modem: simulated_delay must not be negative, got %v", cfg.Modem.SimulatedDelay)
	}

	if err := cfg.Weather.Mode.validate(); err != nil {
		return fmt.Errorf("weather: %w", err)
	}

	if cfg.Weather.I2CAddress == 0 {
		cfg.Weather.I2CAddress = DefaultBME280Address
	}

	if cfg.Weather.LogFile == "" {
		cfg.Weather.LogFile = DefaultWeatherLog
	}

	if cfg.Weather.Interval <= 0 {
		cfg.Weather.Interval = DefaultInterval
	}

	if cfg.Weather.MinHumidity >= cfg.Weather.MaxHumidity {
		return fmt.Errorf("weather: %w", errHumidityRange)
	}

	return validateMQTT(&cfg.MQTT)
}

// validate reports whether the mode is one of the known values.
func (m Mode) validate() error {
	switch m {
	case ModeAuto, ModeHardware, ModeSimulated:
		return nil
	default:
		return fmt.Errorf("%w %q (allowed: auto, hardware, simulated)", ErrUnknownMode, string(m))
	}
}

// validateSerial checks a serial section and fills its defaults.
func validateSerial(section string, mode Mode, serial *SerialConfig, baudRate int) error {
	if err := mode.validate(); err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}

	if serial.Port == "" && mode != ModeSimulated {
		return fmt.Errorf("%s: %w", section, errSerialPortRequired)
	}

	if serial.BaudRate <= 0 {
		serial.BaudRate = baudRate
	}

	if serial.ReadTimeout <= 0 {
		serial.ReadTimeout = DefaultReadTimeout
	}

	return nil
}

// validateMQTT checks the telemetry section; it is skipped when no broker is set.
func validateMQTT(cfg *MQTTConfig) error {
	if cfg.Broker == "" {
		return nil
	}

	if cfg.Port <= 0 || cfg.Port > maxPort {
		return fmt.Errorf("mqtt: invalid port %d", cfg.Port)
	}

	if cfg.ClientID == "" {
		cfg.ClientID = "hive-monitor"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return nil
}
