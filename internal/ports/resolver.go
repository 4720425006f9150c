package ports

import "github.com/aikawam/vcwatch/internal/domain"

// NameResolver turns a member id into a display name at summary time. The
// second return is false when the member can no longer be resolved.
type NameResolver interface {
	DisplayName(member domain.MemberID) (string, bool)
}
