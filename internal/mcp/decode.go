package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/clarity/internal/errors"
)

// decodeArgs maps tool arguments onto T. Every failure is an INVALID_REQUEST
// error that can go straight to errorResult.
func decodeArgs[T any](req mcp.CallToolRequest) (T, error) {
	var args T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return args, errors.NewInvalidRequest(fmt.Sprintf("%s: arguments are not JSON", req.Params.Name))
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, errors.NewInvalidRequest(fmt.Sprintf("%s: %v", req.Params.Name, err))
	}
	return args, nil
}

// requireArg rejects a blank string argument.
func requireArg(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewInvalidRequest(name + " is required")
	}
	return nil
}
