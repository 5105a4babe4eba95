package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/versatil/versatil-backend/internal/platform/envutil"
)

// ClientOptionsFromEnv reads service account credentials, inline JSON first,
// then a file path. Without either the SDK falls back to ADC.
func ClientOptionsFromEnv() []option.ClientOption {
	return credentialOptions(
		envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")),
	)
}

func credentialOptions(creds string) []option.ClientOption {
	switch creds = strings.TrimSpace(creds); {
	case creds == "":
		return nil
	case strings.HasPrefix(creds, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
}

// collapseWhitespace folds runs of whitespace, including NBSP, to one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
