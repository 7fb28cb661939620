// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	bridgeerrors "pxfbridge/cli/internal/errors"
)

var kindTitles = map[bridgeerrors.Kind]string{
	bridgeerrors.Configuration:         "invalid request",
	bridgeerrors.Connectivity:          "connection to the PXF service lost",
	bridgeerrors.UnsupportedExpression: "projection not available",
	bridgeerrors.Protocol:              "unexpected answer from the PXF service",
}

// PresentError formats an error for user display with masking. Bridge errors
// get a title for their kind in front of the context.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if title, ok := kindTitles[bridgeerrors.KindOf(err)]; ok {
		return fmt.Sprintf("%s (%s): %s", context, title, Mask(err.Error()))
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
