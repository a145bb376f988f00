package utils

import (
	"strconv"

	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// ParseInt parses a string to int with a fallback default value.
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
