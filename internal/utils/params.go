package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramUint(ctx *gin.Context, name, label string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(label + " not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label)
	}

	return uint(id), nil
}

func GetMonitorID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "monitor_id", "Monitor ID")
}

func GetEndpointID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "endpoint_id", "Endpoint ID")
}

func GetRuleID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "rule_id", "Rule ID")
}
