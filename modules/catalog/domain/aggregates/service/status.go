package service

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPublished Status = "published"
	StatusEnabled   Status = "enabled"
	StatusDisabled  Status = "disabled"
)

var ValidStatuses = []Status{StatusPublished, StatusEnabled, StatusDisabled}

func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	quoted := make([]string, 0, len(ValidStatuses))
	for _, v := range ValidStatuses {
		quoted = append(quoted, fmt.Sprintf("'%s'", v))
	}
	return fmt.Sprintf("'%s' is not a valid status. Valid statuses are %s", e.Value, strings.Join(quoted, ", "))
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", &InvalidStatusError{Value: raw}
	}
	return s, nil
}
