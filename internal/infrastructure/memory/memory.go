// Package memory provides single-process implementations of the cache, guard
// and session ports. They are used when Redis is not configured and in tests.
package memory

import "github.com/cabinet-comptable/backoffice/internal/core/domain"

func cloneClients(in []*domain.Client) []*domain.Client {
	out := make([]*domain.Client, len(in))
	for i, c := range in {
		cp := *c
		out[i] = &cp
	}
	return out
}
