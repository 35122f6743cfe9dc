package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Positions of the ui_short fields in a tokenized line.
const (
	fieldRemoteAddr = iota
	fieldRemoteUser
	fieldRealIP
	fieldTimeLocal
	fieldRequest
	fieldStatus
	fieldBodyBytesSent
	fieldReferer
	fieldUserAgent
	fieldForwardedFor
	fieldRequestID
	fieldRBUser
	fieldRequestTime

	FieldCount
)

var requestTimeNoise = strings.NewReplacer(`\n`, "", `\`, "")

// Parser turns raw access-log lines into LogRecords.
type Parser struct {
	// StripMethod is removed from the front of the request line. Only GET is
	// stripped by default; other methods stay part of the path key.
	StripMethod string
}

func NewParser() *Parser {
	return &Parser{StripMethod: "GET "}
}

// Parse returns the record for line, or a *ParseError when the line has no
// usable request_time. A failed parse never yields a partial record.
func (p *Parser) Parse(line string) (LogRecord, error) {
	line = strings.TrimRight(line, "\r\n")
	tokens := Tokenize(line)

	field := func(i int) string {
		if i >= len(tokens) {
			return ""
		}
		return unwrap(tokens[i])
	}

	if len(tokens) <= fieldRequestTime {
		return LogRecord{}, &ParseError{Line: line, Fields: len(tokens), Err: ErrMissingRequestTime}
	}

	raw := strings.TrimSpace(requestTimeNoise.Replace(field(fieldRequestTime)))
	requestTime, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return LogRecord{}, &ParseError{
			Line:   line,
			Fields: len(tokens),
			Err:    fmt.Errorf("%w: %q", ErrInvalidRequestTime, raw),
		}
	}
	if math.IsNaN(requestTime) || math.IsInf(requestTime, 0) || requestTime < 0 {
		return LogRecord{}, &ParseError{
			Line:   line,
			Fields: len(tokens),
			Err:    fmt.Errorf("%w: %q out of range", ErrInvalidRequestTime, raw),
		}
	}

	request := field(fieldRequest)
	if p.StripMethod != "" {
		request = strings.TrimPrefix(request, p.StripMethod)
	}

	return LogRecord{
		RemoteAddr:    field(fieldRemoteAddr),
		RemoteUser:    field(fieldRemoteUser),
		RealIP:        field(fieldRealIP),
		TimeLocal:     field(fieldTimeLocal),
		Request:       request,
		Status:        field(fieldStatus),
		BodyBytesSent: field(fieldBodyBytesSent),
		Referer:       field(fieldReferer),
		UserAgent:     field(fieldUserAgent),
		ForwardedFor:  field(fieldForwardedFor),
		RequestID:     field(fieldRequestID),
		RBUser:        field(fieldRBUser),
		RequestTime:   requestTime,
	}, nil
}

// unwrap drops one pair of surrounding quotes or brackets.
func unwrap(token string) string {
	if len(token) < 2 {
		return token
	}
	first, last := token[0], token[len(token)-1]
	if (first == '"' && last == '"') || (first == '[' && last == ']') {
		return token[1 : len(token)-1]
	}
	return token
}
