package main

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/digineo/go-ping"
	mon "github.com/digineo/go-ping/monitor"
	log "github.com/sirupsen/logrus"

	"github.com/czerwonk/hostaddr_exporter/config"
)

type ipVersion uint8

const (
	ipv4 ipVersion = 4
	ipv6 ipVersion = 6
)

func (ipv ipVersion) String() string {
	return strconv.Itoa(int(ipv))
}

func getIPVersion(addr net.IPAddr) ipVersion {
	if addr.IP.To4() == nil {
		return ipv6
	}
	return ipv4
}

// selfCheck pings the resolved publish address to verify it is reachable.
type selfCheck struct {
	monitor *mon.Monitor
	target  *target
}

func startSelfCheck(cfg *config.Config, publishAddr net.IP) (*selfCheck, error) {
	var bind4, bind6 string
	if ln, err := net.Listen("tcp4", "127.0.0.1:0"); err == nil {
		// ipv4 enabled
		ln.Close()
		bind4 = "0.0.0.0"
	}
	if ln, err := net.Listen("tcp6", "[::1]:0"); err == nil {
		// ipv6 enabled
		ln.Close()
		bind6 = "::"
	}

	pinger, err := ping.New(bind4, bind6)
	if err != nil {
		return nil, fmt.Errorf("cannot start monitoring: %w", err)
	}

	if pinger.PayloadSize() != cfg.Ping.Size {
		pinger.SetPayloadSize(cfg.Ping.Size)
	}

	monitor := mon.New(pinger, cfg.Ping.Interval.Duration(), cfg.Ping.Timeout.Duration())
	monitor.HistorySize = cfg.Ping.History
	log.Infof("Created self-check monitor (interval=%s, timeout=%s, history=%d)",
		cfg.Ping.Interval.Duration(),
		cfg.Ping.Timeout.Duration(),
		cfg.Ping.History)

	t := &target{role: rolePublish}
	err = t.update(publishAddr, monitor)
	if err != nil {
		monitor.Stop()
		return nil, err
	}

	return &selfCheck{monitor: monitor, target: t}, nil
}

// target is the monitored address of one role.
type target struct {
	role    string
	address *net.IPAddr
	delay   time.Duration
	mutex   sync.Mutex
}

// update replaces the monitored address. A nil ip stops monitoring.
func (t *target) update(ip net.IP, monitor *mon.Monitor) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.address != nil {
		if t.address.IP.Equal(ip) {
			return nil
		}

		log.Infof("removing %s target %v", t.role, t.address.IP)
		monitor.RemoveTarget(t.nameForIP(*t.address))
		t.address = nil
	}

	if ip == nil {
		return nil
	}

	addr := net.IPAddr{IP: ip}
	log.Infof("adding %s target %v", t.role, ip)
	err := monitor.AddTargetDelayed(t.nameForIP(addr), addr, t.delay)
	if err != nil {
		return fmt.Errorf("could not monitor %s address %v: %w", t.role, ip, err)
	}
	t.address = &addr

	return nil
}

func (t *target) nameForIP(addr net.IPAddr) string {
	return fmt.Sprintf("%s %s %s", t.role, addr.IP, getIPVersion(addr))
}
