// s50sim simulates the S50 controller board's register map for bench
// work: TCP for development, RTU over a null-modem pair for testing the
// real serial path. Command writes drive the paired status registers the
// way the firmware does, so clients can exercise their polling logic.
package main

import (
	"encoding/binary"
	"flag"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
	log "github.com/sirupsen/logrus"
	"github.com/tbrandon/mbserver"

	spaziale "github.com/AmmarAlsmany/La-Spaziale-S50"
)

const (
	regSelectionBase = 256
	regFaultBase     = 260
	regCountdownBase = 264
	regBlocked       = 269
	regGroupCount    = 270
	regCommandBase   = 512
	regWater         = 516
	regMAT           = 517
)

type simulator struct {
	mu   sync.Mutex
	serv *mbserver.Server

	groups        int
	brewTime      int // seconds a delivery stays active
	purgeTime     int // seconds a purge stays active
	purgeInterval int // countdown restart value

	// seconds left per group, 0 when idle
	activeLeft []int
}

func main() {
	var (
		listenTCP  = flag.String("listen", "0.0.0.0:1502", "TCP listen address, empty to disable")
		serialPort = flag.String("serial", "", "serial port for RTU, empty to disable")
		groups     = flag.Int("groups", 3, "number of brewing groups")
		serialNum  = flag.String("serial-number", "S50QSS-SIM-001", "board serial number")
		brewTime   = flag.Duration("brew-time", 25*time.Second, "how long a delivery runs")
		purgeTime  = flag.Duration("purge-time", 10*time.Second, "how long a purge runs")
	)
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if *listenTCP == "" && *serialPort == "" {
		log.Fatal("nothing to listen on, set -listen or -serial")
	}

	sim := &simulator{
		serv:          mbserver.NewServer(),
		groups:        *groups,
		brewTime:      int(brewTime.Seconds()),
		purgeTime:     int(purgeTime.Seconds()),
		purgeInterval: 600,
		activeLeft:    make([]int, *groups),
	}
	sim.seed(*serialNum)
	sim.serv.RegisterFunctionHandler(modbus.FuncCodeWriteSingleRegister, sim.writeSingleRegister)

	go sim.tick()

	if *listenTCP != "" {
		if err := sim.serv.ListenTCP(*listenTCP); err != nil {
			log.Fatalf("listen tcp: %s", err)
		}
		log.Infof("listening on tcp %s", *listenTCP)
	}
	if *serialPort != "" {
		err := sim.serv.ListenRTU(&serial.Config{
			Address:  *serialPort,
			BaudRate: 9600,
			DataBits: 8,
			Parity:   "N",
			StopBits: 1,
		})
		if err != nil {
			log.Fatalf("listen rtu: %s", err)
		}
		log.Infof("listening on serial %s", *serialPort)
	}
	defer sim.serv.Close()

	select {}
}

func (s *simulator) seed(serialNum string) {
	word := []byte(serialNum)
	if len(word)%2 != 0 {
		word = append(word, 0x00)
	}
	for i := 0; i < len(word) && i/2 < 10; i += 2 {
		s.serv.HoldingRegisters[i/2] = binary.BigEndian.Uint16(word[i : i+2])
	}
	s.serv.HoldingRegisters[11] = 0x0107 // firmware 1.7
	s.serv.HoldingRegisters[regGroupCount] = uint16(s.groups)
	for g := 0; g < s.groups; g++ {
		s.serv.HoldingRegisters[regCountdownBase+g] = uint16(s.purgeInterval)
	}
}

// writeSingleRegister applies command writes to the paired status
// registers and echoes the request, which is the 0x06 success response.
func (s *simulator) writeSingleRegister(serv *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
	data := frame.GetData()
	addr := int(binary.BigEndian.Uint16(data[0:2]))
	value := binary.BigEndian.Uint16(data[2:4])

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case addr >= regCommandBase && addr < regCommandBase+s.groups:
		s.applyGroupCommand(addr-regCommandBase, spaziale.Command(value))
	case addr == regWater || addr == regMAT:
		log.Infof("dose command register %d <- %d", addr, value)
	case addr >= len(serv.HoldingRegisters):
		return []byte{}, &mbserver.IllegalDataAddress
	}
	serv.HoldingRegisters[addr] = value
	return data[0:4], &mbserver.Success
}

func (s *simulator) applyGroupCommand(group int, cmd spaziale.Command) {
	status := &s.serv.HoldingRegisters[regSelectionBase+group]
	switch cmd {
	case spaziale.CommandNoAction:
	case spaziale.CommandStop:
		log.Infof("group %d: stop", group+1)
		*status = 0
		s.activeLeft[group] = 0
	case spaziale.CommandStartPurge:
		log.Infof("group %d: purge", group+1)
		*status = uint16(spaziale.SelectionPurge)
		s.activeLeft[group] = s.purgeTime
	default:
		if *status != 0 {
			// firmware ignores delivery commands while the group is busy
			log.Infof("group %d: busy, ignoring %s", group+1, cmd)
			return
		}
		log.Infof("group %d: %s", group+1, cmd)
		*status = uint16(cmd)
		s.activeLeft[group] = s.brewTime
	}
}

// tick advances deliveries and purge countdowns once per second.
func (s *simulator) tick() {
	ticker := time.NewTicker(1 * time.Second)
	for range ticker.C {
		s.mu.Lock()
		for g := 0; g < s.groups; g++ {
			if s.activeLeft[g] > 0 {
				s.activeLeft[g]--
				if s.activeLeft[g] == 0 {
					purged := s.serv.HoldingRegisters[regSelectionBase+g]&uint16(spaziale.SelectionPurge) != 0
					s.serv.HoldingRegisters[regSelectionBase+g] = 0
					if purged {
						s.serv.HoldingRegisters[regCountdownBase+g] = uint16(s.purgeInterval)
					}
					log.Infof("group %d: free", g+1)
				}
				continue
			}
			if countdown := s.serv.HoldingRegisters[regCountdownBase+g]; countdown > 0 {
				s.serv.HoldingRegisters[regCountdownBase+g] = countdown - 1
			}
		}
		s.mu.Unlock()
	}
}
