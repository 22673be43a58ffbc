package domain

import "strings"

// SchedulerOwner owns the surface used by scheduled exports.
const SchedulerOwner = "system/scheduler"

// OwnerKey identifies the principal an export surface belongs to.
func OwnerKey(orgID, userID string) string {
	return orgID + "/" + userID
}

// SplitOwnerKey is the inverse of OwnerKey.
func SplitOwnerKey(owner string) (orgID, userID string) {
	orgID, userID, _ = strings.Cut(owner, "/")
	return orgID, userID
}
