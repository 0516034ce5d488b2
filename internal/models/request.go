package models

import (
	"strings"
	"time"
)

// RequestType is the kind of customer request raised against a project.
type RequestType string

const (
	RequestSupport RequestType = "support"
	RequestReopen  RequestType = "reopen"
)

// ParseRequestType converts a string to RequestType.
func ParseRequestType(s string) (RequestType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "support":
		return RequestSupport, true
	case "reopen":
		return RequestReopen, true
	}
	return "", false
}

// Request records a customer request. Project holds the project name at
// the time of the request.
type Request struct {
	ID        int64       `json:"id"`
	ProjectID int64       `json:"projectId"`
	Project   string      `json:"project"`
	Type      RequestType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
}
