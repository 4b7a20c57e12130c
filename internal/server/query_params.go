package server

import (
	"strconv"
	"strings"
)

func parseOptionalInt32(value string) (*int32, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil {
		return nil, err
	}
	v := int32(parsed)
	return &v, nil
}
