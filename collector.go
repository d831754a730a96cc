package main

import (
	"net"
	"sort"
	"strings"
	"sync"

	mon "github.com/digineo/go-ping/monitor"
	"github.com/prometheus/client_golang/prometheus"
)

const prefix = "hostaddr_"

const (
	roleBind    = "bind"
	rolePublish = "publish"
)

var (
	labelNames  = []string{"role", "ip", "ip_version"}
	lossDesc    = newDesc("loss_ratio", "Packet loss of the self-check from 0.0 to 1.0", labelNames, nil)
	addressDesc = newDesc("address_info", "Resolved address per role, the value is always 1", []string{"role", "host", "address"}, nil)
	mutex       = &sync.Mutex{}

	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prefix + "resolutions_total",
		Help: "Number of host resolutions by role and outcome",
	}, []string{"role", "outcome"})
)

func newDesc(name, help string, variableLabels []string, constLabels prometheus.Labels) *prometheus.Desc {
	return prometheus.NewDesc(prefix+name, help, variableLabels, constLabels)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

type pingCollector struct {
	monitor *mon.Monitor
	metrics map[string]*mon.Metrics
	rttDesc scaledMetrics
}

func (p *pingCollector) Describe(ch chan<- *prometheus.Desc) {
	p.rttDesc.Describe(ch)
	ch <- lossDesc
}

func (p *pingCollector) Collect(ch chan<- prometheus.Metric) {
	mutex.Lock()
	defer mutex.Unlock()

	metrics := p.monitor.ExportAndClear()

	if len(metrics) > 0 {
		p.metrics = metrics
	}

	for target, metrics := range p.metrics {
		l := strings.SplitN(target, " ", 3)
		if len(l) != 3 {
			continue
		}

		p.rttDesc.Collect(ch, metrics.Best, append(l, "best")...)
		p.rttDesc.Collect(ch, metrics.Worst, append(l, "worst")...)
		p.rttDesc.Collect(ch, metrics.Mean, append(l, "mean")...)
		p.rttDesc.Collect(ch, metrics.StdDev, append(l, "std_dev")...)

		loss := float64(metrics.PacketsLost) / float64(metrics.PacketsSent)
		ch <- prometheus.MustNewConstMetric(lossDesc, prometheus.GaugeValue, loss, l...)
	}
}

type resolvedAddress struct {
	host    string
	address net.IP
}

// addressCollector exports the last resolved address per role.
type addressCollector struct {
	mu        sync.RWMutex
	addresses map[string]resolvedAddress
}

func newAddressCollector() *addressCollector {
	return &addressCollector{addresses: make(map[string]resolvedAddress)}
}

func (c *addressCollector) set(role, host string, ip net.IP) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.addresses[role] = resolvedAddress{host: host, address: ip}
}

func (c *addressCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- addressDesc
}

func (c *addressCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	roles := make([]string, 0, len(c.addresses))
	for role := range c.addresses {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		a := c.addresses[role]
		addr := ""
		if a.address != nil {
			addr = a.address.String()
		}
		ch <- prometheus.MustNewConstMetric(addressDesc, prometheus.GaugeValue, 1, role, a.host, addr)
	}
}
