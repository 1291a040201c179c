// s50ctl is an operator CLI for a La Spaziale S50 QSS machine.
//
//	s50ctl [flags] info
//	s50ctl [flags] status [group]
//	s50ctl [flags] deliver <group> <size>
//	s50ctl [flags] stop <group>
//	s50ctl [flags] purge <group>
//	s50ctl [flags] wait <group>
//	s50ctl [flags] water <stop|1|2>
//	s50ctl [flags] mat <stop|1|2>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	spaziale "github.com/AmmarAlsmany/La-Spaziale-S50"
	"github.com/AmmarAlsmany/La-Spaziale-S50/internal/profile"
)

var sizes = map[string]spaziale.Command{
	"single-short":  spaziale.CommandSingleShort,
	"single-medium": spaziale.CommandSingleMedium,
	"single-long":   spaziale.CommandSingleLong,
	"double-short":  spaziale.CommandDoubleShort,
	"double-medium": spaziale.CommandDoubleMedium,
	"double-long":   spaziale.CommandDoubleLong,
}

func main() {
	var (
		profilePath = flag.String("profile", "", "YAML machine profile")
		port        = flag.String("port", "", "serial port, overrides the profile")
		slaveID     = flag.Uint("slave", 0, "Modbus node address, overrides the profile")
		waitTimeout = flag.Duration("wait-timeout", 60*time.Second, "timeout for the wait command")
		debug       = flag.Bool("debug", false, "log every step")
	)
	flag.Usage = usage
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	p := profile.Default()
	if *profilePath != "" {
		var err error
		p, err = profile.Load(*profilePath)
		if err != nil {
			log.Fatalf("load profile: %s", err)
		}
	}
	if *port != "" {
		p.Port = *port
	}
	if *slaveID != 0 {
		p.SlaveID = uint8(*slaveID)
	}

	machine := spaziale.New(p.Port, p.Options()...)
	log.Debugf("connecting to %s (slave %d)", p.Port, p.SlaveID)
	if err := machine.Connect(); err != nil {
		log.Fatalf("connect: %s", err)
	}
	defer machine.Close()

	if err := run(machine, *waitTimeout, flag.Args()); err != nil {
		log.Fatalf("%s: %s", flag.Arg(0), err)
	}
}

func run(machine *spaziale.Machine, waitTimeout time.Duration, args []string) error {
	switch args[0] {
	case "info":
		return info(machine)
	case "status":
		if len(args) > 1 {
			group, err := parseGroup(args[1])
			if err != nil {
				return err
			}
			return status(machine, group)
		}
		return statusAll(machine)
	case "deliver":
		if len(args) != 3 {
			return fmt.Errorf("usage: deliver <group> <size>")
		}
		group, err := parseGroup(args[1])
		if err != nil {
			return err
		}
		cmd, ok := sizes[args[2]]
		if !ok {
			return fmt.Errorf("unknown size %q", args[2])
		}
		log.Infof("group %d: %s", group, cmd)
		return machine.SendGroupCommand(group, cmd)
	case "stop":
		if len(args) != 2 {
			return fmt.Errorf("usage: stop <group>")
		}
		group, err := parseGroup(args[1])
		if err != nil {
			return err
		}
		return machine.StopDelivery(group)
	case "purge":
		if len(args) != 2 {
			return fmt.Errorf("usage: purge <group>")
		}
		group, err := parseGroup(args[1])
		if err != nil {
			return err
		}
		return machine.StartPurge(group)
	case "wait":
		if len(args) != 2 {
			return fmt.Errorf("usage: wait <group>")
		}
		group, err := parseGroup(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		if err := machine.WaitUntilGroupFree(ctx, group, time.Second); err != nil {
			return err
		}
		log.Infof("group %d is free", group)
		return nil
	case "water":
		if len(args) != 2 {
			return fmt.Errorf("usage: water <stop|1|2>")
		}
		set, err := parseDoseSet(args[1])
		if err != nil {
			return err
		}
		return machine.SendWaterCommand(set)
	case "mat":
		if len(args) != 2 {
			return fmt.Errorf("usage: mat <stop|1|2>")
		}
		set, err := parseDoseSet(args[1])
		if err != nil {
			return err
		}
		return machine.SendMATCommand(set)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func info(machine *spaziale.Machine) error {
	serial, err := machine.SerialNumber()
	if err != nil {
		return err
	}
	firmware, err := machine.FirmwareVersion()
	if err != nil {
		return err
	}
	groups, err := machine.GroupCount()
	if err != nil {
		return err
	}
	blocked, err := machine.Blocked()
	if err != nil {
		return err
	}
	fmt.Printf("serial:   %s\n", serial)
	fmt.Printf("firmware: %s\n", firmware)
	fmt.Printf("groups:   %d\n", groups)
	fmt.Printf("blocked:  %t\n", blocked)
	return nil
}

func statusAll(machine *spaziale.Machine) error {
	groups, err := machine.GroupCount()
	if err != nil {
		return err
	}
	for group := 1; group <= groups; group++ {
		if err := status(machine, group); err != nil {
			return err
		}
	}
	return nil
}

func status(machine *spaziale.Machine, group int) error {
	selection, err := machine.GroupSelection(group)
	if err != nil {
		return err
	}
	fault, err := machine.SensorFault(group)
	if err != nil {
		return err
	}
	countdown, err := machine.PurgeCountdown(group)
	if err != nil {
		return err
	}
	fmt.Printf("group %d: %s, sensor fault %t, purge in %s\n", group, selection, fault, countdown)
	return nil
}

func parseGroup(arg string) (int, error) {
	group, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("group must be a number, got %q", arg)
	}
	return group, nil
}

func parseDoseSet(arg string) (spaziale.DoseSet, error) {
	switch arg {
	case "stop", "0":
		return spaziale.DoseStop, nil
	case "1":
		return spaziale.DoseSet1, nil
	case "2":
		return spaziale.DoseSet2, nil
	}
	return 0, fmt.Errorf("dose set must be stop, 1 or 2, got %q", arg)
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: s50ctl [flags] <command>

commands:
  info                     machine identity and block state
  status [group]           selection, sensor fault and purge countdown
  deliver <group> <size>   size: single-short|single-medium|single-long|
                                 double-short|double-medium|double-long
  stop <group>             stop the ongoing delivery
  purge <group>            start a purge cycle
  wait <group>             block until the group is free
  water <stop|1|2>         hot water dose set
  mat <stop|1|2>           MAT dose set

flags:
`)
	flag.PrintDefaults()
}
