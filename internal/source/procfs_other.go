//go:build !linux

package source

import apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"

// NewProcfs is only available on Linux.
func NewProcfs(string) (MetricsSource, error) {
	return nil, apperrors.NewConfigError("the %s source requires Linux; use %s", Procfs, Gopsutil)
}
