package main

import "github.com/prometheus/client_golang/prometheus"

// rttUnit selects in which unit self-check round trip times are exported.
type rttUnit int

const (
	rttInvalid rttUnit = iota
	rttInMills
	rttInSeconds
	rttBoth
)

func rttUnitFromString(s string) rttUnit {
	switch s {
	case "s":
		return rttInSeconds
	case "ms":
		return rttInMills
	case "both":
		return rttBoth
	default:
		return rttInvalid
	}
}

func (u rttUnit) millis() bool {
	return u == rttInMills || u == rttBoth
}

func (u rttUnit) seconds() bool {
	return u == rttInSeconds || u == rttBoth
}

// scaledMetrics exports a value measured in millis as _ms and/or _seconds.
type scaledMetrics struct {
	Millis  *prometheus.Desc
	Seconds *prometheus.Desc
	scale   rttUnit
}

func newScaledDesc(name, help string, scale rttUnit, variableLabels []string) scaledMetrics {
	return scaledMetrics{
		scale:   scale,
		Millis:  newDesc(name+"_ms", help+" in millis", variableLabels, nil),
		Seconds: newDesc(name+"_seconds", help+" in seconds", variableLabels, nil),
	}
}

func (s *scaledMetrics) Describe(ch chan<- *prometheus.Desc) {
	if s.scale.millis() {
		ch <- s.Millis
	}
	if s.scale.seconds() {
		ch <- s.Seconds
	}
}

func (s *scaledMetrics) Collect(ch chan<- prometheus.Metric, millis float32, labelValues ...string) {
	if s.scale.millis() {
		ch <- prometheus.MustNewConstMetric(s.Millis, prometheus.GaugeValue, float64(millis), labelValues...)
	}
	if s.scale.seconds() {
		ch <- prometheus.MustNewConstMetric(s.Seconds, prometheus.GaugeValue, float64(millis)/1000, labelValues...)
	}
}
