package models

// Capability names an action a page may offer to the current user.
type Capability string

const (
	CapViewDashboard   Capability = "dashboard:view"
	CapViewSchedule    Capability = "schedule:view"
	CapEditSchedule    Capability = "schedule:edit"
	CapRequestExchange Capability = "exchange:request"
	CapApproveExchange Capability = "exchange:approve"
	CapViewPayroll     Capability = "payroll:view"
	CapManagePayroll   Capability = "payroll:manage"
	CapManageSettings  Capability = "settings:manage"
)

var staffCapabilities = []Capability{
	CapViewDashboard,
	CapViewSchedule,
	CapRequestExchange,
	CapViewPayroll,
}

var supervisorCapabilities = []Capability{
	CapEditSchedule,
	CapApproveExchange,
	CapManagePayroll,
	CapManageSettings,
}

// Capabilities derives the capability set from the profile role.
// A nil profile (still loading) has no capabilities.
func (p *Profile) Capabilities() []Capability {
	if p == nil {
		return nil
	}
	caps := append([]Capability(nil), staffCapabilities...)
	if p.IsSupervisor() {
		caps = append(caps, supervisorCapabilities...)
	}
	return caps
}

// Can reports whether the profile grants c.
func (p *Profile) Can(c Capability) bool {
	for _, have := range p.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}
