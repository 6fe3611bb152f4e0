// Command ctcpd is the reference wiring of the cTCP engine: a UDP substrate,
// a stdin/stdout application, and an epoll+timerfd-driven host event loop
// driving the three callback sources spec.md section 5 treats as external
// (application-readable, inbound-segment, tick).
//
// Grounded on sample/main.go's manual os.Args parsing (no flag library
// appears anywhere in the teacher or a full-repo peer in the retrieval
// pack) and runZeroInc-sockstats's low-level golang.org/x/sys/unix and
// syscall.RawConn.Control usage for fd-level socket work.
//
// Usage: ctcpd <local-port> <remote-host> <remote-port>
package main

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/wrights1/ctcp/conn"
	"github.com/wrights1/ctcp/ctcpcfg"
	"github.com/wrights1/ctcp/ctcpmetrics"
	"github.com/wrights1/ctcp/registry"
	"github.com/wrights1/ctcp/seqnum"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) != 4 {
		log.Fatalf("Usage: %s <local-port> <remote-host> <remote-port>", os.Args[0])
	}
	localPort, err := strconv.Atoi(os.Args[1])
	if err != nil {
		log.Fatalf("bad local port %q: %v", os.Args[1], err)
	}
	remoteHost := os.Args[2]
	remotePort, err := strconv.Atoi(os.Args[3])
	if err != nil {
		log.Fatalf("bad remote port %q: %v", os.Args[3], err)
	}

	pc, err := net.DialUDP("udp", &net.UDPAddr{Port: localPort}, &net.UDPAddr{IP: net.ParseIP(remoteHost), Port: remotePort})
	if err != nil {
		log.Fatalf("dial: %v", err)
	}

	// RecvWindow is capped at 65535: it is advertised on the wire in the
	// segment header's 16-bit Window field, and anything larger would
	// silently truncate once encoded. SendWindow only sizes the local
	// input buffer and is never wire-exposed, so it can be larger.
	cfg, err := ctcpcfg.New(1<<20, 65535, 3*time.Second, ctcpcfg.DefaultMaxRetransmits, ctcpcfg.MaxMSS)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	reg := registry.New()
	collector := ctcpmetrics.New(reg)
	prometheus.MustRegister(collector)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.WithError(http.ListenAndServe("127.0.0.1:9110", nil)).Debug("metrics server exited")
	}()

	sub := newUDPSubstrate(pc)
	app := newStdioApplication(os.Stdin, 1<<20)
	id := xid.New()
	cs := conn.New(id, sub, app, cfg, seqnum.Value(1), seqnum.Value(1), log.WithField("peer", pc.RemoteAddr().String()))
	reg.Add(cs)

	code := runEventLoop(pc, reg, id, app, log)
	os.Exit(code)
}
