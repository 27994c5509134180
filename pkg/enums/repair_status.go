package enums

import "fmt"

// RepairStatus tracks a service order through the workshop.
type RepairStatus string

const (
	RepairStatusReceived   RepairStatus = "received"
	RepairStatusInProgress RepairStatus = "in_progress"
	RepairStatusReady      RepairStatus = "ready"
	RepairStatusDelivered  RepairStatus = "delivered"
	RepairStatusCancelled  RepairStatus = "cancelled"
)

var validRepairStatuses = []RepairStatus{
	RepairStatusReceived,
	RepairStatusInProgress,
	RepairStatusReady,
	RepairStatusDelivered,
	RepairStatusCancelled,
}

// String implements fmt.Stringer.
func (s RepairStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RepairStatus.
func (s RepairStatus) IsValid() bool {
	for _, candidate := range validRepairStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Collectable reports whether a balance may still be charged for the order.
func (s RepairStatus) Collectable() bool {
	return s.IsValid() && s != RepairStatusCancelled
}

// ParseRepairStatus converts raw input into a RepairStatus.
func ParseRepairStatus(value string) (RepairStatus, error) {
	for _, candidate := range validRepairStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid repair status %q", value)
}
