// Command bbapid exposes the firmware bridge to local clients over a
// unix socket, speaking the length-prefixed request protocol. It is
// the userspace stand-in for the character device older deployments
// used.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/metalbridge/bbapi"
	"github.com/metalbridge/bbapi/internal/bridge"
	"github.com/metalbridge/bbapi/internal/fakefw"
	"github.com/metalbridge/bbapi/internal/proto"
)

func main() {
	listen := flag.String("listen", "/run/bbapid.sock", "unix socket path to serve on")
	sim := flag.Bool("sim", false, "serve a simulated board instead of real firmware")
	legacy := flag.Bool("legacy", false, "accept the legacy request layout and legacy error numbering")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := bbapi.ConfigFromEnv()
	cfg.LegacyErrors = cfg.LegacyErrors || *legacy

	var (
		dev *bbapi.Device
		err error
	)
	if *sim {
		dev = bbapi.OpenBackend(fakefw.New(fakefw.Config{}), cfg)
	} else {
		dev, err = bbapi.Open(cfg)
		if err != nil {
			log.Fatalf("bbapid: %v", err)
		}
	}
	defer dev.Close()

	dev.UpdateDisplay()

	_ = os.Remove(*listen)
	l, err := net.Listen("unix", *listen)
	if err != nil {
		log.Fatalf("bbapid: listen on %s: %v", *listen, err)
	}
	defer l.Close()
	slog.Info("serving firmware bridge", "socket", *listen, "legacy", *legacy, "sim", *sim)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("accept failed", "err", err)
			continue
		}
		go serve(conn, dev, *legacy)
	}
}

func serve(conn net.Conn, dev *bbapi.Device, legacy bool) {
	defer conn.Close()

	for {
		frame, err := proto.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("client read failed", "err", err)
			}
			return
		}

		resp := handle(frame, dev, legacy)
		if err := proto.WriteFrame(conn, proto.EncodeResponse(resp)); err != nil {
			slog.Debug("client write failed", "err", err)
			return
		}
	}
}

func handle(frame []byte, dev *bbapi.Device, legacy bool) proto.Response {
	req, err := proto.DecodeRequest(frame, legacy)
	if err != nil {
		return proto.Response{Status: proto.Errno(err)}
	}
	// The frame limit already bounds OutSize against runaway
	// allocations; the bridge enforces the staging capacity itself.
	if req.OutSize > proto.MaxFrameLen {
		return proto.Response{Status: proto.Errno(fmt.Errorf("%w: output %d bytes", bridge.ErrBufferTooLarge, req.OutSize))}
	}

	out := make([]byte, req.OutSize)
	var written uint32
	breq := bbapi.Request{
		Group:    req.Group,
		Offset:   req.Offset,
		In:       req.In,
		Out:      out,
		Reserved: uintptr(req.Reserved),
	}
	if req.WantWritten {
		breq.BytesWritten = &written
	}

	n, err := dev.Execute(breq)
	if err != nil {
		return proto.Response{Status: proto.Errno(err)}
	}
	return proto.Response{BytesWritten: written, Out: out[:n]}
}
