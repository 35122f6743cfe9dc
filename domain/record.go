package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrLogDirNotFound     = errors.New("log directory not found")
	ErrMissingRequestTime = errors.New("request_time field is missing")
	ErrInvalidRequestTime = errors.New("request_time field is not a valid duration")
)

// LogRecord is one parsed line of the ui_short access log:
//
//	$remote_addr  $remote_user $http_x_real_ip [$time_local] "$request"
//	$status $body_bytes_sent "$http_referer" "$http_user_agent"
//	"$http_x_forwarded_for" "$http_X_REQUEST_ID" "$http_X_RB_USER"
//	$request_time
//
// Only RequestTime is mandatory; every other field is empty when the line
// did not carry it.
type LogRecord struct {
	RemoteAddr    string
	RemoteUser    string
	RealIP        string
	TimeLocal     string
	Request       string
	Status        string
	BodyBytesSent string
	Referer       string
	UserAgent     string
	ForwardedFor  string
	RequestID     string
	RBUser        string
	RequestTime   float64
}

// ParseError describes why a line did not produce a LogRecord.
type ParseError struct {
	Line   string
	Fields int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse line (%d fields): %v", e.Fields, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LogFileDescriptor identifies a discovered log file before it is opened.
type LogFileDescriptor struct {
	Path string
	Date time.Time
}

