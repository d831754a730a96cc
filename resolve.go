package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/czerwonk/hostaddr_exporter/network"
)

// resolveHandler answers /resolve?host=...&role=bind|publish with the
// resolved address as plain text.
type resolveHandler struct {
	svc         *network.Service
	resolutions *prometheus.CounterVec
}

func (h *resolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	role := r.URL.Query().Get("role")

	var (
		ip  net.IP
		err error
	)
	switch role {
	case roleBind:
		ip, err = h.svc.ResolveBindHostAddress(r.Context(), host, "")
	case rolePublish:
		ip, err = h.svc.ResolvePublishHostAddress(r.Context(), host, "")
	case "", "any":
		role = "any"
		ip, err = h.svc.ResolveInetAddress(r.Context(), host, "", "")
	default:
		http.Error(w, fmt.Sprintf("invalid role %q, expected one of [bind, publish, any]", role), http.StatusBadRequest)
		return
	}
	h.resolutions.WithLabelValues(role, outcome(err)).Inc()

	if err != nil {
		log.WithFields(log.Fields{"host": host, "role": role}).Debugf("resolution failed: %v", err)
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if ip == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fmt.Fprintln(w, ip)
}

func statusForError(err error) int {
	var (
		nerr *network.NameResolutionError
		ierr *network.InterfaceNotFoundError
	)
	if errors.As(err, &nerr) || errors.As(err, &ierr) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
