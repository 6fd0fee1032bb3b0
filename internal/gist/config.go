package gist

import "time"

// Config describes the remote document backend.
type Config struct {
	APIURL   string
	Timeout  time.Duration
	Marker   string // description substring identifying the backup document
	FileName string // file inside the document holding the payload
}

// DefaultConfig targets the public GitHub API.
func DefaultConfig() Config {
	return Config{
		APIURL:   "https://api.github.com",
		Timeout:  15 * time.Second,
		Marker:   "island sync data",
		FileName: "island-data.json",
	}
}
