package config

import (
	"time"

	"github.com/danmuck/mcwire/internal/protocol/session"
	"github.com/danmuck/mcwire/internal/status"
)

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Session maps the server timeouts onto accepted connections.
func (c ServerConfig) Session() session.Config {
	cfg := session.DefaultConfig()
	cfg.ReadTimeout = millis(c.ReadTimeoutMS)
	cfg.WriteTimeout = millis(c.WriteTimeoutMS)
	return cfg
}

func (c ServerConfig) StatusConfig() status.Config {
	return status.Config{
		Node:    c.Node,
		Session: c.Session(),
		Document: status.Document{
			Version: status.Version{
				Name:     c.Status.VersionName,
				Protocol: c.Status.Protocol,
			},
			Players: status.Players{
				Max:    c.Status.MaxPlayers,
				Online: c.Status.OnlinePlayers,
			},
			Description: status.Description{Text: c.Status.MOTD},
		},
	}
}

func (c ProbeConfig) Session() session.Config {
	cfg := session.DefaultConfig()
	cfg.ConnectTimeout = millis(c.ConnectTimeoutMS)
	cfg.ReadTimeout = millis(c.ReadTimeoutMS)
	cfg.Backoff = session.BackoffConfig{
		InitialDelay: millis(c.Backoff.InitialDelayMS),
		Multiplier:   c.Backoff.Multiplier,
		MaxDelay:     millis(c.Backoff.MaxDelayMS),
		Jitter:       c.Backoff.Jitter,
	}
	return cfg
}
