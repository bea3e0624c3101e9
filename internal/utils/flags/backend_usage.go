package flags

import (
	"strings"
)

const (
	backendPlaceholderOpenConstant  = "`<"
	backendPlaceholderCloseConstant = ">`"
	backendSeparatorConstant        = "|"
	backendDescriptionSpacer        = " "
)

// FormatBackendUsage renders the --backend usage text, listing each backend once and upper-casing the default.
func FormatBackendUsage(defaultBackend string, backends []string, description string) string {
	var usage strings.Builder
	usage.WriteString(backendPlaceholderOpenConstant)
	usage.WriteString(strings.Join(listBackendNames(defaultBackend, backends), backendSeparatorConstant))
	usage.WriteString(backendPlaceholderCloseConstant)
	if trimmedDescription := strings.TrimSpace(description); len(trimmedDescription) > 0 {
		usage.WriteString(backendDescriptionSpacer)
		usage.WriteString(trimmedDescription)
	}
	return usage.String()
}

// listBackendNames drops blank and case-insensitive duplicate names while keeping the declared order.
func listBackendNames(defaultBackend string, backends []string) []string {
	defaultName := strings.TrimSpace(defaultBackend)
	names := make([]string, 0, len(backends))
	listed := make(map[string]bool, len(backends))
	for _, backend := range backends {
		name := strings.TrimSpace(backend)
		normalizedName := strings.ToLower(name)
		if len(name) == 0 || listed[normalizedName] {
			continue
		}
		listed[normalizedName] = true
		if len(defaultName) > 0 && strings.EqualFold(name, defaultName) {
			name = strings.ToUpper(name)
		}
		names = append(names, name)
	}
	return names
}
