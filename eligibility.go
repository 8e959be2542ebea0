package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrRejected is returned by a Check when the object must stay where it is.
var ErrRejected = errors.New("object rejected by predicate")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required metadata: %s (%s)", e.Field, e.Reason)
}

// Check decides whether an object with the given metadata is relocated.
// A nil result means yes.
type Check func(Metadata) error

type Predicate func(Metadata) bool

// ValidateRequired requires content-type, a positive numeric file-size and
// upload-date to be present.
func ValidateRequired(md Metadata) error {

	if md["content-type"] == "" {
		return &ValidationError{Field: "content-type", Reason: "empty"}
	}

	raw, ok := md["file-size"]
	if !ok || raw == "" {
		raw = "0"
	}
	size, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return &ValidationError{Field: "file-size", Reason: fmt.Sprintf("not an integer: %q", raw)}
	}
	if size <= 0 {
		return &ValidationError{Field: "file-size", Reason: "not positive"}
	}

	if md["upload-date"] == "" {
		return &ValidationError{Field: "upload-date", Reason: "empty"}
	}
	return nil
}

func PredicateCheck(p Predicate) Check {
	return func(md Metadata) error {
		if p == nil || !p(md) {
			return ErrRejected
		}
		return nil
	}
}

// checkConditions is the placeholder predicate: no conditions have been
// defined yet, so nothing is moved.
func checkConditions(md Metadata) bool {
	return false
}

func MatchAll(want map[string]string) Predicate {
	return func(md Metadata) bool {
		for k, v := range want {
			if md[k] != v {
				return false
			}
		}
		return true
	}
}

func ParseMatch(s string) (map[string]string, error) {
	want := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return nil, fmt.Errorf("Bad match %q, want key=value", pair)
		}
		want[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
	}
	return want, nil
}
