package store

import (
	"fmt"
	"strings"
)

const keyPrefix = "canvas"

// HostKey normalizes a Canvas host URL for use inside Redis keys:
// scheme and trailing slashes are dropped and the host is lowercased.
//
// Example:
//
//	HostKey("https://Canvas.Example.edu/") == "canvas.example.edu"
func HostKey(hostURL string) string {
	host := strings.TrimSpace(hostURL)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	host = strings.TrimRight(host, "/")
	return strings.ToLower(host)
}

// EnrollmentsKey is the key holding one course's exported enrollments.
// Format: canvas:<host>:course:<id>:enrollments
func EnrollmentsKey(hostURL string, courseID int64) string {
	return fmt.Sprintf("%s:%s:course:%d:enrollments", keyPrefix, HostKey(hostURL), courseID)
}

// RunKey is the key holding one export run record.
// Format: canvas:<host>:run:<run id>
func RunKey(hostURL, runID string) string {
	return fmt.Sprintf("%s:%s:run:%s", keyPrefix, HostKey(hostURL), runID)
}

// RunsKey is the list of run IDs for a host, newest first.
// Format: canvas:<host>:runs
func RunsKey(hostURL string) string {
	return fmt.Sprintf("%s:%s:runs", keyPrefix, HostKey(hostURL))
}
