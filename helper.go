package main

import log "github.com/sirupsen/logrus"

// setLogLevel falls back to info for unknown levels.
func setLogLevel(l string) {
	lvl, err := log.ParseLevel(l)
	if err != nil {
		log.Warnf("unknown log level %q, using info", l)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
