package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "server":
		return serverTemplate, nil
	case "probe":
		return probeTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serverTemplate = `node = "mcwire"
addr = ":25565"
admin_addr = "127.0.0.1:9465"
cors_origins = ["http://localhost:3000"]
read_timeout_ms = 15000
write_timeout_ms = 15000
log_level = "info"

[status]
version_name = "mcwire"
# 0 echoes the client's protocol version
protocol = 0
max_players = 20
online_players = 0
motd = "A mcwire status responder"
`

const probeTemplate = `addr = "localhost:25565"
protocol_version = 763
connect_timeout_ms = 5000
read_timeout_ms = 5000
attempts = 3

[backoff]
initial_delay_ms = 250
multiplier = 2.0
max_delay_ms = 5000
jitter = true
`
