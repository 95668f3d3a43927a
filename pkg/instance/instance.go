package instance

import "os"

// ID identifies this process in logs. The Heroku dyno name wins, then
// KEEPSAKE_INSTANCE_ID, then the host name.
func ID() string {
	for _, key := range []string{"DYNO", "KEEPSAKE_INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
