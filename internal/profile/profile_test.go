package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "machine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
port: /dev/ttyAMA0
slave_id: 2
timeout: 500ms
mqtt:
  broker: tcp://broker.local:1883
  poll_interval: 5s
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Port != "/dev/ttyAMA0" {
		t.Fatalf("port = %q", p.Port)
	}
	if p.SlaveID != 2 {
		t.Fatalf("slave_id = %d", p.SlaveID)
	}
	if time.Duration(p.Timeout) != 500*time.Millisecond {
		t.Fatalf("timeout = %v", time.Duration(p.Timeout))
	}
	// untouched fields keep the factory defaults
	if p.BaudRate != 9600 || p.Parity != "N" || p.DataBits != 8 || p.StopBits != 1 {
		t.Fatalf("serial defaults lost: %+v", p)
	}
	if p.MQTT.Broker != "tcp://broker.local:1883" {
		t.Fatalf("mqtt broker = %q", p.MQTT.Broker)
	}
	if time.Duration(p.MQTT.PollInterval) != 5*time.Second {
		t.Fatalf("poll_interval = %v", time.Duration(p.MQTT.PollInterval))
	}
	if p.MQTT.StateTopic != "s50/state" {
		t.Fatalf("state_topic default lost: %q", p.MQTT.StateTopic)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad parity", "parity: X\n", "parity"},
		{"bad duration", "timeout: soon\n", "parse duration"},
		{"empty port", "port: \"\"\n", "port"},
		{"bad stop bits", "stop_bits: 3\n", "stop_bits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeProfile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOptionsCoverProfile(t *testing.T) {
	p := Default()
	if got := len(p.Options()); got != 7 {
		t.Fatalf("Options() returned %d options, want 7", got)
	}
}
