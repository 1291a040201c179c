// s50mqtt bridges a machine to an MQTT broker: it polls the status
// registers on an interval and publishes a JSON snapshot, and it turns
// messages on the command topic into delivery commands. All Modbus
// traffic runs on one loop, the machine handle is not shared.
package main

import (
	"encoding/json"
	"flag"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	spaziale "github.com/AmmarAlsmany/La-Spaziale-S50"
	"github.com/AmmarAlsmany/La-Spaziale-S50/internal/profile"
)

type groupState struct {
	Group     int    `json:"group"`
	Selection string `json:"selection"`
	Busy      bool   `json:"busy"`
	Fault     bool   `json:"fault"`
	PurgeIn   int    `json:"purge_in_s"`
}

type snapshot struct {
	TS       string       `json:"ts"`
	Serial   string       `json:"serial"`
	Firmware string       `json:"firmware"`
	Blocked  bool         `json:"blocked"`
	Groups   []groupState `json:"groups"`
}

type cmdPayload struct {
	Group   int    `json:"group"`
	Command string `json:"command"`
	Water   *int   `json:"water,omitempty"`
	MAT     *int   `json:"mat,omitempty"`
}

var commands = map[string]spaziale.Command{
	"single_short":  spaziale.CommandSingleShort,
	"single_medium": spaziale.CommandSingleMedium,
	"single_long":   spaziale.CommandSingleLong,
	"double_short":  spaziale.CommandDoubleShort,
	"double_medium": spaziale.CommandDoubleMedium,
	"double_long":   spaziale.CommandDoubleLong,
	"stop":          spaziale.CommandStop,
	"purge":         spaziale.CommandStartPurge,
}

func main() {
	profilePath := flag.String("profile", "machine.yaml", "YAML machine profile with an mqtt section")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	p, err := profile.Load(*profilePath)
	if err != nil {
		log.Fatalf("load profile: %s", err)
	}
	if p.MQTT.Broker == "" {
		log.Fatal("profile has no mqtt.broker")
	}

	machine := spaziale.New(p.Port, p.Options()...)
	if err := machine.Connect(); err != nil {
		log.Fatalf("connect machine: %s", err)
	}
	defer machine.Close()

	serial, err := machine.SerialNumber()
	if err != nil {
		log.Fatalf("read serial number: %s", err)
	}
	firmware, err := machine.FirmwareVersion()
	if err != nil {
		log.Fatalf("read firmware version: %s", err)
	}
	groups, err := machine.GroupCount()
	if err != nil {
		log.Fatalf("read group count: %s", err)
	}
	log.Infof("machine %s, firmware %s, %d groups", serial, firmware, groups)

	opts := mqtt.NewClientOptions().
		AddBroker(p.MQTT.Broker).
		SetClientID(p.MQTT.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)
	if p.MQTT.Username != "" {
		opts.SetUsername(p.MQTT.Username)
		opts.SetPassword(p.MQTT.Password)
	}
	mc := mqtt.NewClient(opts)
	if tok := mc.Connect(); !tok.WaitTimeout(10*time.Second) || tok.Error() != nil {
		log.Fatalf("mqtt connect: %s", tok.Error())
	}
	defer mc.Disconnect(250)

	// commands are queued here and executed on the poll loop, so exactly
	// one goroutine touches the machine
	cmdCh := make(chan cmdPayload, 16)
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var c cmdPayload
		if err := json.Unmarshal(msg.Payload(), &c); err != nil {
			log.Warnf("cmd: bad json: %s (payload %q)", err, msg.Payload())
			return
		}
		select {
		case cmdCh <- c:
		default:
			log.Warn("cmd: queue full, dropping")
		}
	}
	if tok := mc.Subscribe(p.MQTT.CommandTopic, 1, handler); !tok.WaitTimeout(5*time.Second) || tok.Error() != nil {
		log.Fatalf("mqtt subscribe %s: %s", p.MQTT.CommandTopic, tok.Error())
	}
	log.Infof("subscribed to %s", p.MQTT.CommandTopic)

	ticker := time.NewTicker(time.Duration(p.MQTT.PollInterval))
	defer ticker.Stop()
	for {
		select {
		case c := <-cmdCh:
			apply(machine, c)
		case <-ticker.C:
			snap, err := poll(machine, serial, firmware, groups)
			if err != nil {
				log.Errorf("poll: %s", err)
				continue
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				log.Errorf("marshal snapshot: %s", err)
				continue
			}
			mc.Publish(p.MQTT.StateTopic, 0, true, payload)
		}
	}
}

func poll(machine *spaziale.Machine, serial, firmware string, groups int) (*snapshot, error) {
	blocked, err := machine.Blocked()
	if err != nil {
		return nil, err
	}
	snap := &snapshot{
		TS:       time.Now().UTC().Format(time.RFC3339),
		Serial:   serial,
		Firmware: firmware,
		Blocked:  blocked,
	}
	for group := 1; group <= groups; group++ {
		selection, err := machine.GroupSelection(group)
		if err != nil {
			return nil, err
		}
		fault, err := machine.SensorFault(group)
		if err != nil {
			return nil, err
		}
		countdown, err := machine.PurgeCountdown(group)
		if err != nil {
			return nil, err
		}
		snap.Groups = append(snap.Groups, groupState{
			Group:     group,
			Selection: selection.String(),
			Busy:      selection.Active(),
			Fault:     fault,
			PurgeIn:   int(countdown.Seconds()),
		})
	}
	return snap, nil
}

func apply(machine *spaziale.Machine, c cmdPayload) {
	if c.Water != nil {
		if err := machine.SendWaterCommand(spaziale.DoseSet(*c.Water)); err != nil {
			log.Errorf("cmd: water set %d: %s", *c.Water, err)
		} else {
			log.Infof("cmd: water set %d", *c.Water)
		}
	}
	if c.MAT != nil {
		if err := machine.SendMATCommand(spaziale.DoseSet(*c.MAT)); err != nil {
			log.Errorf("cmd: MAT set %d: %s", *c.MAT, err)
		} else {
			log.Infof("cmd: MAT set %d", *c.MAT)
		}
	}
	if c.Command == "" {
		return
	}
	cmd, ok := commands[c.Command]
	if !ok {
		log.Warnf("cmd: unknown command %q", c.Command)
		return
	}
	if err := machine.SendGroupCommand(c.Group, cmd); err != nil {
		log.Errorf("cmd: group %d %s: %s", c.Group, cmd, err)
		return
	}
	log.Infof("cmd: group %d %s", c.Group, cmd)
}
