package api

import (
	"menuqr/config"
)

// SafeErrorMessage hides internal error details in release mode
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
