package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/danmuck/mcwire/internal/config"
	"github.com/danmuck/mcwire/internal/logs"
	"github.com/danmuck/mcwire/internal/protocol"
	"github.com/danmuck/mcwire/internal/protocol/packets"
	"github.com/danmuck/mcwire/internal/protocol/session"
)

var errPongMismatch = errors.New("probe: pong payload does not match ping")

type probeResult struct {
	Version  string
	Protocol int64
	Online   int64
	Max      int64
	MOTD     string
	Latency  time.Duration
	Raw      string
}

func probeCmd() *cobra.Command {
	var (
		cfgPath  string
		timeout  time.Duration
		attempts int
		protoVer int32
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "probe [ADDR]",
		Short: "Run a status ping against a server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProbeConfig(cfgPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Addr = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("timeout") {
				cfg.ConnectTimeoutMS = int(timeout / time.Millisecond)
				cfg.ReadTimeoutMS = cfg.ConnectTimeoutMS
			}
			if flags.Changed("attempts") {
				cfg.Attempts = attempts
			}
			if flags.Changed("protocol") {
				cfg.ProtocolVersion = protoVer
			}
			if err := config.ValidateProbeConfig(cfg); err != nil {
				return err
			}

			res, err := runProbe(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printProbe(cmd.OutOrStdout(), cfg.Addr, res, raw)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "probe config file")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "connect and read timeout")
	cmd.Flags().IntVar(&attempts, "attempts", 3, "connection attempts before giving up")
	cmd.Flags().Int32Var(&protoVer, "protocol", 763, "protocol version sent in the handshake")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw status JSON")
	return cmd
}

func printProbe(out io.Writer, addr string, res probeResult, raw bool) {
	if raw {
		fmt.Fprintln(out, res.Raw)
		return
	}
	fmt.Fprintf(out, "%s\n", addr)
	fmt.Fprintf(out, "  version:  %s (protocol %d)\n", res.Version, res.Protocol)
	fmt.Fprintf(out, "  players:  %d/%d\n", res.Online, res.Max)
	fmt.Fprintf(out, "  motd:     %s\n", res.MOTD)
	fmt.Fprintf(out, "  latency:  %s\n", res.Latency.Round(time.Microsecond))
}

// runProbe redials on transport failures with the configured backoff. A
// malformed or hostile response ends the probe at once.
func runProbe(ctx context.Context, cfg config.ProbeConfig) (probeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	scfg := cfg.Session()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if attempt > 1 {
			delay := session.NextBackoffDelay(scfg.Backoff, attempt-1, rng)
			logs.Warnf("probe %s attempt %d failed: %v (retry in %s)", cfg.Addr, attempt-1, lastErr, delay)
			select {
			case <-ctx.Done():
				return probeResult{}, ctx.Err()
			case <-time.After(delay):
			}
		}
		res, err := probeOnce(ctx, cfg.Addr, scfg, cfg.ProtocolVersion)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return probeResult{}, lastErr
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, protocol.ErrFormat),
		errors.Is(err, protocol.ErrViolation),
		errors.Is(err, protocol.ErrUnknownDiscriminant),
		errors.Is(err, errPongMismatch),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

func probeOnce(ctx context.Context, addr string, scfg session.Config, protoVer int32) (probeResult, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return probeResult{}, fmt.Errorf("probe: address %q: %w", addr, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return probeResult{}, fmt.Errorf("probe: port %q: %w", portStr, err)
	}

	c, err := session.Dial(ctx, addr, scfg)
	if err != nil {
		return probeResult{}, err
	}
	defer c.Shutdown()

	if err := c.SendPacket(&packets.Handshake{
		ProtocolVersion: protoVer,
		ServerAddress:   host,
		ServerPort:      uint16(port),
		NextState:       packets.StateStatus,
	}); err != nil {
		return probeResult{}, err
	}
	if err := c.SendPacket(&packets.StatusRequest{}); err != nil {
		return probeResult{}, err
	}
	p, err := c.ReadPacket(packets.StatusClientbound)
	if err != nil {
		return probeResult{}, err
	}
	resp, ok := p.(*packets.StatusResponse)
	if !ok {
		return probeResult{}, fmt.Errorf("probe: expected status response, got %T", p)
	}
	res, err := parseStatus(resp.JSON)
	if err != nil {
		return probeResult{}, err
	}

	start := time.Now()
	payload := start.UnixMilli()
	if err := c.SendPacket(&packets.PingRequest{Payload: payload}); err != nil {
		return probeResult{}, err
	}
	p, err = c.ReadPacket(packets.StatusClientbound)
	if err != nil {
		return probeResult{}, err
	}
	pong, ok := p.(*packets.PongResponse)
	if !ok {
		return probeResult{}, fmt.Errorf("probe: expected pong, got %T", p)
	}
	if pong.Payload != payload {
		return probeResult{}, fmt.Errorf("%w: got %d want %d", errPongMismatch, pong.Payload, payload)
	}
	res.Latency = time.Since(start)
	return res, nil
}

func parseStatus(doc string) (probeResult, error) {
	if !gjson.Valid(doc) {
		return probeResult{}, protocol.Format("probe.status_json", errors.New("invalid JSON document"))
	}
	parsed := gjson.Parse(doc)
	res := probeResult{
		Version:  parsed.Get("version.name").String(),
		Protocol: parsed.Get("version.protocol").Int(),
		Online:   parsed.Get("players.online").Int(),
		Max:      parsed.Get("players.max").Int(),
		Raw:      doc,
	}
	// description is either a bare string or a chat component
	desc := parsed.Get("description")
	if desc.Type == gjson.String {
		res.MOTD = desc.String()
	} else {
		res.MOTD = desc.Get("text").String()
	}
	return res, nil
}
