package profile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	spaziale "github.com/AmmarAlsmany/La-Spaziale-S50"
)

// Duration unmarshals YAML scalars like "500ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Profile is a machine connection profile shared by the commands.
// Omitted fields keep the board's factory settings.
type Profile struct {
	Port      string   `yaml:"port"`
	BaudRate  int      `yaml:"baud_rate"`
	DataBits  int      `yaml:"data_bits"`
	Parity    string   `yaml:"parity"`
	StopBits  int      `yaml:"stop_bits"`
	SlaveID   uint8    `yaml:"slave_id"`
	Timeout   Duration `yaml:"timeout"`
	MaxGroups uint16   `yaml:"max_groups"`

	MQTT MQTT `yaml:"mqtt"`
}

// MQTT configures the status bridge; only s50mqtt reads it.
type MQTT struct {
	Broker       string   `yaml:"broker"`
	ClientID     string   `yaml:"client_id"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	StateTopic   string   `yaml:"state_topic"`
	CommandTopic string   `yaml:"command_topic"`
	PollInterval Duration `yaml:"poll_interval"`
}

// Default returns a profile with the S50 factory serial settings.
func Default() *Profile {
	return &Profile{
		Port:      "/dev/ttyUSB0",
		BaudRate:  9600,
		DataBits:  8,
		Parity:    "N",
		StopBits:  1,
		SlaveID:   1,
		Timeout:   Duration(1 * time.Second),
		MaxGroups: 8,
		MQTT: MQTT{
			ClientID:     "s50mqtt",
			StateTopic:   "s50/state",
			CommandTopic: "s50/cmd",
			PollInterval: Duration(2 * time.Second),
		},
	}
}

// Load reads a YAML profile on top of the defaults and validates it.
func Load(path string) (*Profile, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return p, nil
}

func (p *Profile) Validate() error {
	if p.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if p.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", p.BaudRate)
	}
	switch p.Parity {
	case "N", "E", "O":
	default:
		return fmt.Errorf("parity must be N, E or O, got %q", p.Parity)
	}
	if p.DataBits != 7 && p.DataBits != 8 {
		return fmt.Errorf("data_bits must be 7 or 8, got %d", p.DataBits)
	}
	if p.StopBits != 1 && p.StopBits != 2 {
		return fmt.Errorf("stop_bits must be 1 or 2, got %d", p.StopBits)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if p.MaxGroups == 0 {
		return fmt.Errorf("max_groups must be positive")
	}
	return nil
}

// Options translates the profile into Machine options.
func (p *Profile) Options() []spaziale.Option {
	return []spaziale.Option{
		spaziale.WithBaudRate(p.BaudRate),
		spaziale.WithDataBits(p.DataBits),
		spaziale.WithParity(p.Parity),
		spaziale.WithStopBits(p.StopBits),
		spaziale.WithSlaveID(p.SlaveID),
		spaziale.WithTimeout(time.Duration(p.Timeout)),
		spaziale.WithMaxGroups(p.MaxGroups),
	}
}
