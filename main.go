package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/czerwonk/hostaddr_exporter/cloud"
	"github.com/czerwonk/hostaddr_exporter/config"
	"github.com/czerwonk/hostaddr_exporter/netutils"
	"github.com/czerwonk/hostaddr_exporter/network"
)

const version string = "0.1.0"

var (
	showVersion   = kingpin.Flag("version", "Print version information").Default().Bool()
	listenPort    = kingpin.Flag("web.listen-port", "Port on which to expose metrics and web interface, the address is the resolved bind address").Default("9428").Uint16()
	metricsPath   = kingpin.Flag("web.telemetry-path", "Path under which to expose metrics").Default("/metrics").String()
	configFile    = kingpin.Flag("config.path", "Path to config file").Default("").String()
	envFile       = kingpin.Flag("config.env-file", "Path to a dotenv file overriding settings (e.g. NETWORK_BIND_HOST)").Default("").String()
	watchConfig   = kingpin.Flag("config.watch", "Reload settings and re-resolve the publish address when the config file changes").Default("false").Bool()
	networkHost   = kingpin.Flag("network.host", "Host used for binding and publishing unless more specific settings exist (address, name, #local# or #interface#)").Default("").String()
	bindHost      = kingpin.Flag("network.bind-host", "Host to bind to, overrides all settings").Default("").String()
	publishHost   = kingpin.Flag("network.publish-host", "Host to advertise to peers, overrides all settings").Default("").String()
	ipStack       = kingpin.Flag("network.ip-stack", "Preferred IP stack when picking interface addresses. Valid choices: [ipv4, ipv6, any]").Default("").String()
	pingDisabled  = kingpin.Flag("ping.disabled", "Disable the ICMP self-check of the publish address").Default("false").Bool()
	pingInterval  = kingpin.Flag("ping.interval", "Interval for ICMP echo requests").Default("5s").Duration()
	pingTimeout   = kingpin.Flag("ping.timeout", "Timeout for ICMP echo request").Default("4s").Duration()
	pingSize      = kingpin.Flag("ping.size", "Payload size for ICMP echo requests").Default("56").Uint16()
	historySize   = kingpin.Flag("ping.history-size", "Number of results to remember per target").Default("10").Int()
	dnsNameServer = kingpin.Flag("dns.nameserver", "DNS server used to resolve host names").Default("").String()
	cloudEC2      = kingpin.Flag("cloud.ec2", "Enable #ec2:privateIp#, #ec2:publicIp#, #ec2:privateDns# and #ec2:publicDns#").Default("false").Bool()
	cloudGCE      = kingpin.Flag("cloud.gce", "Enable #gce:privateIp# and #gce:publicIp#").Default("false").Bool()
	cloudTS       = kingpin.Flag("cloud.tailscale", "Enable #tailscale#, #tailscale:ipv4# and #tailscale:ipv6#").Default("false").Bool()
	cloudK8s      = kingpin.Flag("cloud.kubernetes", "Enable #k8s:pod#").Default("false").Bool()
	logLevel      = kingpin.Flag("log.level", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error, fatal]").Default("info").String()
	rttMode       = kingpin.Flag("metrics.rttunit", "Export ping results as either millis (default), or seconds (best practice), or both (for migrations). Valid choices: [ms, s, both]").Default("ms").String()
)

var rttMetricsScale = rttInMills

func main() {
	kingpin.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	setLogLevel(*logLevel)

	if rttMetricsScale = rttUnitFromString(*rttMode); rttMetricsScale == rttInvalid {
		kingpin.FatalUsage("metrics.rttunit must be `ms` for millis, or `s` for seconds, or `both`")
	}

	cfg, err := loadConfig()
	if err != nil {
		kingpin.FatalUsage("could not load config.path: %v", err)
	}

	if cfg.Ping.History < 1 {
		kingpin.FatalUsage("ping.history-size must be greater than 0")
	}

	if cfg.Ping.Size > 65500 {
		kingpin.FatalUsage("ping.size must be between 0 and 65500")
	}

	if mpath := cfg.Web.TelemetryPath; mpath == "" {
		log.Warnln("web.telemetry-path is empty, correcting to `/metrics`")
		cfg.Web.TelemetryPath = "/metrics"
	} else if mpath[0] != '/' {
		cfg.Web.TelemetryPath = "/" + mpath
	}

	e, err := newExporter(cfg)
	if err != nil {
		log.Errorln(err)
		os.Exit(2)
	}

	if *watchConfig && *configFile != "" {
		err := watchConfigFile(*configFile, e.reload)
		if err != nil {
			log.Errorf("could not watch config file: %v", err)
		}
	}

	e.startServer(cfg)
}

func printVersion() {
	fmt.Println("hostaddr-exporter")
	fmt.Printf("Version: %s\n", version)
	fmt.Println("Resolves bind and publish addresses and exports them as metrics")
}

type exporter struct {
	store     *config.Store
	svc       *network.Service
	tcp       network.TCPSettings
	bindAddr  net.IP
	addresses *addressCollector
	self      *selfCheck
}

func newExporter(cfg *config.Config) (*exporter, error) {
	store := config.NewStore(cfg.Settings)

	stack, err := network.ParseStackType(store.Get(network.IPStackSetting))
	if err != nil {
		return nil, err
	}

	tcp, err := network.TCPSettingsFrom(store)
	if err != nil {
		return nil, err
	}

	resolver := setupResolver(cfg)
	utils := netutils.New(stack, resolver)
	utils.LogInterfaces()

	svc := network.NewService(store, utils, resolver)
	err = cloud.Register(svc, cfg.Cloud, resolver)
	if err != nil {
		return nil, fmt.Errorf("could not register custom name resolvers: %w", err)
	}

	e := &exporter{
		store:     store,
		svc:       svc,
		tcp:       tcp,
		addresses: newAddressCollector(),
	}

	ctx := context.Background()
	e.bindAddr, err = e.resolve(ctx, roleBind, *bindHost)
	if err != nil {
		return nil, fmt.Errorf("could not resolve bind address: %w", err)
	}

	publishAddr, err := e.resolve(ctx, rolePublish, *publishHost)
	if err != nil {
		return nil, fmt.Errorf("could not resolve publish address: %w", err)
	}

	if !cfg.Ping.Disabled {
		e.self, err = startSelfCheck(cfg, publishAddr)
		if err != nil {
			log.Warnf("ICMP self-check disabled: %v", err)
		}
	}

	return e, nil
}

// reload re-reads the settings and re-resolves the publish address. The
// listener keeps its bind address.
func (e *exporter) reload() {
	cfg, err := loadConfig()
	if err != nil {
		log.Errorf("could not reload config: %v", err)
		return
	}

	e.store.Update(cfg.Settings)
	log.Infof("Reloaded settings from %s", *configFile)

	publishAddr, err := e.resolve(context.Background(), rolePublish, *publishHost)
	if err != nil {
		log.Errorf("could not resolve publish address: %v", err)
		return
	}

	if e.self != nil {
		err := e.self.target.update(publishAddr, e.self.monitor)
		if err != nil {
			log.Errorln(err)
		}
	}
}

func (e *exporter) startServer(cfg *config.Config) {
	log.Infof("Starting hostaddr exporter (Version: %s)", version)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, indexHTML, cfg.Web.TelemetryPath)
	})
	mux.Handle("/resolve", &resolveHandler{svc: e.svc, resolutions: resolutions})

	reg := prometheus.NewRegistry()
	reg.MustRegister(e.addresses)
	reg.MustRegister(resolutions)
	if e.self != nil {
		reg.MustRegister(&pingCollector{monitor: e.self.monitor, rttDesc: newScaledDesc("rtt", "Round trip time", rttMetricsScale, append(labelNames, "type"))})
	}

	l := log.New()
	l.Level = log.ErrorLevel

	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      l,
		ErrorHandling: promhttp.ContinueOnError,
	})
	mux.Handle(cfg.Web.TelemetryPath, h)

	addr := listenAddress(e.bindAddr, cfg.Web.ListenPort)
	ln, err := e.tcp.Listen(context.Background(), "tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("Listening for %s on %s", cfg.Web.TelemetryPath, addr)
	log.Fatal(http.Serve(ln, mux))
}

func listenAddress(ip net.IP, port uint16) string {
	host := ""
	if ip != nil {
		host = ip.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

func (e *exporter) resolve(ctx context.Context, role, override string) (net.IP, error) {
	var (
		ip  net.IP
		err error
	)
	switch role {
	case roleBind:
		ip, err = e.svc.ResolveBindHostAddress(ctx, override, "")
	case rolePublish:
		ip, err = e.svc.ResolvePublishHostAddress(ctx, override, "")
	}
	resolutions.WithLabelValues(role, outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	host := override
	if host == "" {
		key := network.GlobalNetworkBindHostSetting
		if role == rolePublish {
			key = network.GlobalNetworkPublishHostSetting
		}
		host = e.store.GetDefault(key, network.GlobalNetworkHostSetting)
	}
	e.addresses.set(role, host, ip)

	if ip == nil {
		log.Infof("No %s address configured, using all interfaces", role)
	} else {
		log.Infof("Resolved %s address %q to %s", role, host, ip)
	}

	return ip, nil
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			return nil, fmt.Errorf("cannot load config file: %w", err)
		}
		defer f.Close()

		cfg, err = config.FromYAML(f)
		if err != nil {
			return nil, err
		}
	}

	addFlagToConfig(cfg)

	if *envFile != "" {
		err := config.ApplyEnvFile(*envFile, cfg.Settings)
		if err != nil {
			return nil, fmt.Errorf("cannot load env file: %w", err)
		}
	}

	return cfg, nil
}

func setupResolver(cfg *config.Config) *net.Resolver {
	if cfg.DNS.Nameserver == "" {
		return net.DefaultResolver
	}

	nameserver := cfg.DNS.Nameserver
	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(strings.Trim(nameserver, "[]"), "53")
	}
	dialer := func(ctx context.Context, _, _ string) (net.Conn, error) {
		d := net.Dialer{}

		return d.DialContext(ctx, "udp", nameserver)
	}

	return &net.Resolver{PreferGo: true, Dial: dialer}
}

// addFlagToConfig updates cfg with command line flag values, unless the
// config has non-zero values.
func addFlagToConfig(cfg *config.Config) {
	if cfg.Settings == nil {
		cfg.Settings = make(map[string]string)
	}
	if cfg.Settings[network.GlobalNetworkHostSetting] == "" && *networkHost != "" {
		cfg.Settings[network.GlobalNetworkHostSetting] = *networkHost
	}
	if cfg.Settings[network.IPStackSetting] == "" && *ipStack != "" {
		cfg.Settings[network.IPStackSetting] = *ipStack
	}
	if cfg.Web.ListenPort == 0 {
		cfg.Web.ListenPort = *listenPort
	}
	if cfg.Web.TelemetryPath == "" {
		cfg.Web.TelemetryPath = *metricsPath
	}
	if !cfg.Ping.Disabled {
		cfg.Ping.Disabled = *pingDisabled
	}
	if cfg.Ping.History == 0 {
		cfg.Ping.History = *historySize
	}
	if cfg.Ping.Interval == 0 {
		cfg.Ping.Interval.Set(*pingInterval)
	}
	if cfg.Ping.Timeout == 0 {
		cfg.Ping.Timeout.Set(*pingTimeout)
	}
	if cfg.Ping.Size == 0 {
		cfg.Ping.Size = *pingSize
	}
	if cfg.DNS.Nameserver == "" {
		cfg.DNS.Nameserver = *dnsNameServer
	}
	cfg.Cloud.EC2 = cfg.Cloud.EC2 || *cloudEC2
	cfg.Cloud.GCE = cfg.Cloud.GCE || *cloudGCE
	cfg.Cloud.Tailscale = cfg.Cloud.Tailscale || *cloudTS
	cfg.Cloud.Kubernetes = cfg.Cloud.Kubernetes || *cloudK8s
}

const indexHTML = `<!doctype html>
<html>
<head>
	<meta charset="UTF-8">
	<title>hostaddr Exporter (Version ` + version + `)</title>
</head>
<body>
	<h1>hostaddr Exporter</h1>
	<p><a href="%s">Metrics</a></p>
	<p><a href="/resolve?host=%%23local%%23">Resolve #local#</a></p>
</body>
</html>
`
