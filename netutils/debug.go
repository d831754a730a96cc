package netutils

import (
	"fmt"
	"net"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LogInterfaces writes a net_info dump of all interfaces at debug level.
func (u *Utils) LogInterfaces() {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}

	log.Debug(u.netInfo())
}

func (u *Utils) netInfo() string {
	b := &strings.Builder{}
	b.WriteString("net_info")

	hostName, err := u.hostname()
	if err != nil {
		hostName = "unknown"
	}
	fmt.Fprintf(b, "\nhost [%s]\n", hostName)

	ifaces, err := u.interfaces()
	if err != nil {
		fmt.Fprintf(b, "Failed to get Network Interface Info [%v]", err)
		return b.String()
	}

	for _, ni := range ifaces {
		fmt.Fprintf(b, "%s\tdisplay_name [%s]\n", ni.Name, ni.Name)

		b.WriteString("\t\taddress ")
		addrs, err := u.addrs(ni)
		if err != nil {
			fmt.Fprintf(b, "<%v> ", err)
		}
		for _, addr := range addrs {
			fmt.Fprintf(b, "[%s] ", addr)
		}
		b.WriteString("\n")

		fmt.Fprintf(b, "\t\tmtu [%d] multicast [%t] ptp [%t] loopback [%t] up [%t]\n",
			ni.MTU,
			ni.Flags&net.FlagMulticast != 0,
			ni.Flags&net.FlagPointToPoint != 0,
			ni.Flags&net.FlagLoopback != 0,
			ni.Flags&net.FlagUp != 0)
	}

	return b.String()
}
